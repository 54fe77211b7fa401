package game

import "sync"

// CodeLen is the number of digits in every code.
const CodeLen = 4

// PoolSize is the number of valid codes: 10*9*8*7.
const PoolSize = 5040

// Code is a 4-digit string with pairwise distinct digits; a leading zero is allowed.
type Code string

var (
	poolOnce sync.Once
	pool     []Code
)

// AllCodes returns every valid code. The pool is generated once per process;
// each call hands out an independent copy, so callers may filter it in place.
func AllCodes() []Code {
	poolOnce.Do(func() {
		pool = generatePool()
	})
	out := make([]Code, len(pool))
	copy(out, pool)
	return out
}

func generatePool() []Code {
	out := make([]Code, 0, PoolSize)
	var b [CodeLen]byte
	for d1 := byte(0); d1 <= 9; d1++ {
		for d2 := byte(0); d2 <= 9; d2++ {
			if d2 == d1 {
				continue
			}
			for d3 := byte(0); d3 <= 9; d3++ {
				if d3 == d1 || d3 == d2 {
					continue
				}
				for d4 := byte(0); d4 <= 9; d4++ {
					if d4 == d1 || d4 == d2 || d4 == d3 {
						continue
					}
					b = [CodeLen]byte{'0' + d1, '0' + d2, '0' + d3, '0' + d4}
					out = append(out, Code(b[:]))
				}
			}
		}
	}
	return out
}

// RandomCode draws a uniformly random code from the pool.
func RandomCode(rnd Rand) Code {
	return pick(rnd, AllCodes())
}

// ParseCode checks a player's guess. A string that is not exactly four ASCII
// digits is ErrUnrecognized; four digits with a repeat is ErrDuplicateDigits.
func ParseCode(s string) (Code, error) {
	if !valid4Digits(s) {
		return "", ErrUnrecognized
	}
	if !distinctDigits(s) {
		return "", ErrDuplicateDigits
	}
	return Code(s), nil
}

// Valid reports whether c is a well-formed code.
func (c Code) Valid() bool {
	return valid4Digits(string(c)) && distinctDigits(string(c))
}

func valid4Digits(s string) bool {
	if len(s) != CodeLen {
		return false
	}
	for i := 0; i < CodeLen; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// distinctDigits assumes valid4Digits(s).
func distinctDigits(s string) bool {
	var seen uint16
	for i := 0; i < len(s); i++ {
		bit := uint16(1) << (s[i] - '0')
		if seen&bit != 0 {
			return false
		}
		seen |= bit
	}
	return true
}

func pick[T any](rnd Rand, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[rnd.Intn(len(items))]
}
