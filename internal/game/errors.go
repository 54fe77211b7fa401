package game

import "errors"

var (
	// ErrUnrecognized: the input matches no accepted shape.
	ErrUnrecognized = errors.New("input not recognized")

	// ErrDuplicateDigits: a four-digit guess repeats a digit.
	ErrDuplicateDigits = errors.New("digits must be distinct")

	// ErrImpossibleScore: A/B counts above 4 in total, or 3A1B.
	ErrImpossibleScore = errors.New("impossible A/B counts")

	// ErrExhausted: no candidate is consistent with the feedback so far.
	ErrExhausted = errors.New("no consistent candidate left")
)

// IsSemantic reports whether err is a domain-rule violation on otherwise
// well-formed input. Such input does not consume a turn.
func IsSemantic(err error) bool {
	return errors.Is(err, ErrDuplicateDigits) || errors.Is(err, ErrImpossibleScore)
}
