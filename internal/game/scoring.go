package game

import "strconv"

// ScoreResult is the A/B count of a guess against a secret.
type ScoreResult struct {
	A int `json:"a"` // right digit, right position
	B int `json:"b"` // right digit, wrong position
}

// Win is the 4A0B result.
var Win = ScoreResult{A: CodeLen}

// Valid reports whether r can be produced by two codes with distinct digits:
// A+B <= 4 and never 3A1B.
func (r ScoreResult) Valid() bool {
	if r.A < 0 || r.B < 0 || r.A+r.B > CodeLen {
		return false
	}
	return !(r.A == CodeLen-1 && r.B == 1)
}

func (r ScoreResult) String() string {
	return strconv.Itoa(r.A) + "A" + strconv.Itoa(r.B) + "B"
}

// Score compares guess with secret. With distinct digits in both codes the
// result is symmetric: Score(x, y) == Score(y, x).
func Score(secret, guess Code) ScoreResult {
	var r ScoreResult

	// exact matches
	for i := 0; i < CodeLen; i++ {
		if secret[i] == guess[i] {
			r.A++
		}
	}

	// shared digits, minus those already counted as exact
	var inSecret, inGuess uint16
	for i := 0; i < CodeLen; i++ {
		inSecret |= 1 << (secret[i] - '0')
		inGuess |= 1 << (guess[i] - '0')
	}
	common := 0
	for both := inSecret & inGuess; both != 0; both &= both - 1 {
		common++
	}
	r.B = common - r.A

	return r
}
