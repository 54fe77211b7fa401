package game

import (
	"fmt"
	"strings"
)

// SessionSnapshot is the serializable form of a Session, the one stores keep.
// Candidates are packed back to back ("01230124...") to keep rows small.
type SessionSnapshot struct {
	Mode       string `json:"mode"`
	Turn       int    `json:"turn"`
	Secret     string `json:"secret,omitempty"`
	Candidates string `json:"candidates,omitempty"`
	Guess      string `json:"guess,omitempty"`
	BestScore  int    `json:"bestScore"`
}

// Snapshot converts the session for storage.
func (s Session) Snapshot() SessionSnapshot {
	var b strings.Builder
	b.Grow(len(s.Candidates) * CodeLen)
	for _, c := range s.Candidates {
		b.WriteString(string(c))
	}

	return SessionSnapshot{
		Mode:       s.Mode.String(),
		Turn:       s.Turn,
		Secret:     string(s.Secret),
		Candidates: b.String(),
		Guess:      string(s.Guess),
		BestScore:  s.BestScore,
	}
}

// RestoreSession rebuilds a session and rejects snapshots that could not have
// been produced by Snapshot.
func RestoreSession(snap SessionSnapshot) (Session, error) {
	mode, err := ParseMode(snap.Mode)
	if err != nil {
		return Session{}, err
	}
	if len(snap.Candidates)%CodeLen != 0 {
		return Session{}, fmt.Errorf("candidates: length %d is not a multiple of %d", len(snap.Candidates), CodeLen)
	}

	s := Session{
		Mode:      mode,
		Turn:      snap.Turn,
		Secret:    Code(snap.Secret),
		Guess:     Code(snap.Guess),
		BestScore: snap.BestScore,
	}

	if n := len(snap.Candidates) / CodeLen; n > 0 {
		s.Candidates = make([]Code, 0, n)
		for i := 0; i < len(snap.Candidates); i += CodeLen {
			c := Code(snap.Candidates[i : i+CodeLen])
			if !c.Valid() {
				return Session{}, fmt.Errorf("candidates: bad code %q", c)
			}
			s.Candidates = append(s.Candidates, c)
		}
	}

	switch mode {
	case ModePlayerGuesses:
		if !s.Secret.Valid() {
			return Session{}, fmt.Errorf("secret: bad code %q", s.Secret)
		}
	case ModeComputerGuesses:
		if !s.Guess.Valid() {
			return Session{}, fmt.Errorf("guess: bad code %q", s.Guess)
		}
	}
	if s.BestScore < NoBestScore {
		s.BestScore = NoBestScore
	}
	return s, nil
}
