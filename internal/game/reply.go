package game

import (
	"regexp"
	"strings"
)

const (
	phraseAllCorrect      = "答對了"
	phraseAllCorrectShort = "答對"
	phraseNoneMatched     = "都沒有"
)

var (
	reAB   = regexp.MustCompile(`^([0-9])a([0-9])b$`)
	reBA   = regexp.MustCompile(`^([0-9])b([0-9])a$`)
	reOnly = regexp.MustCompile(`^([0-9])([ab])$`)
)

// ParseReply reads the player's feedback on one of the engine's guesses.
// Accepted forms (case-insensitive): "1a2b", "2b1a", "1a", "2b", "都沒有",
// "答對了"/"答對". Anything else is ErrUnrecognized; a well-formed token
// with counts two distinct-digit codes cannot produce is ErrImpossibleScore.
func ParseReply(token string) (ScoreResult, error) {
	r, err := parseReplyShape(strings.ToLower(strings.TrimSpace(token)))
	if err != nil {
		return ScoreResult{}, err
	}
	if !r.Valid() {
		return ScoreResult{}, ErrImpossibleScore
	}
	return r, nil
}

func parseReplyShape(s string) (ScoreResult, error) {
	switch s {
	case phraseAllCorrect, phraseAllCorrectShort:
		return Win, nil
	case phraseNoneMatched:
		return ScoreResult{}, nil
	}

	if m := reAB.FindStringSubmatch(s); m != nil {
		return ScoreResult{A: digit(m[1]), B: digit(m[2])}, nil
	}
	if m := reBA.FindStringSubmatch(s); m != nil {
		return ScoreResult{A: digit(m[2]), B: digit(m[1])}, nil
	}
	if m := reOnly.FindStringSubmatch(s); m != nil {
		if m[2] == "a" {
			return ScoreResult{A: digit(m[1])}, nil
		}
		return ScoreResult{B: digit(m[1])}, nil
	}
	return ScoreResult{}, ErrUnrecognized
}

func digit(s string) int { return int(s[0] - '0') }
