package game

import "fmt"

// Mode is the kind of game a session is in.
type Mode int

const (
	ModeNone Mode = iota
	ModePlayerGuesses
	ModeComputerGuesses
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModePlayerGuesses:
		return "player"
	case ModeComputerGuesses:
		return "computer"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "none":
		return ModeNone, nil
	case "player":
		return ModePlayerGuesses, nil
	case "computer":
		return ModeComputerGuesses, nil
	default:
		return ModeNone, fmt.Errorf("unknown mode %q", s)
	}
}

// NoBestScore marks a player who never finished a PlayerGuesses game.
const NoBestScore = -1

// Session is one player's game record. The engine receives it by value and
// returns the updated value; keeping it between turns is the store's job.
type Session struct {
	Mode Mode
	Turn int

	// PlayerGuesses only.
	Secret Code

	// ComputerGuesses only.
	Candidates []Code
	Guess      Code

	// Fewest turns over won PlayerGuesses games; survives resets.
	BestScore int
}

// NewSession is an idle session for a player never seen before.
func NewSession() Session {
	return Session{BestScore: NoBestScore}
}

// Idle reports whether no mode is chosen.
func (s Session) Idle() bool { return s.Mode == ModeNone }

// reset drops everything except the best score.
func (s Session) reset() Session {
	return Session{BestScore: s.BestScore}
}

// recordBest applies a won PlayerGuesses game and reports whether it improved
// the best score.
func (s *Session) recordBest(turns int) bool {
	if s.BestScore == NoBestScore || turns < s.BestScore {
		s.BestScore = turns
		return true
	}
	return false
}
