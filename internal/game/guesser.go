package game

// Guesser plays the guessing side: it keeps the codes still consistent with
// the player's feedback and picks the next guess uniformly among them.
type Guesser struct {
	rnd   Rand
	pool  []Code
	guess Code
}

// NewGuesser starts from the full pool.
func NewGuesser(rnd Rand) *Guesser {
	return &Guesser{rnd: rnd, pool: AllCodes()}
}

// ResumeGuesser continues a game from a stored pool and last guess.
// The pool slice is not modified.
func ResumeGuesser(rnd Rand, pool []Code, guess Code) *Guesser {
	return &Guesser{rnd: rnd, pool: pool, guess: guess}
}

// Initial picks the opening guess from the whole pool.
func (g *Guesser) Initial() Code {
	g.guess = pick(g.rnd, g.pool)
	return g.guess
}

// Advance narrows the pool with the feedback on the current guess and picks
// the next one. The current guess itself is always dropped: had it been the
// secret, the player would have said so.
//
// On ErrExhausted the pool is left empty and the guess unchanged; the caller
// owns ending the session.
func (g *Guesser) Advance(fb ScoreResult) (Code, error) {
	if !fb.Valid() {
		return "", ErrImpossibleScore
	}

	next := make([]Code, 0, len(g.pool))
	for _, c := range g.pool {
		if c == g.guess {
			continue
		}
		if Score(g.guess, c) == fb {
			next = append(next, c)
		}
	}
	g.pool = next

	if len(next) == 0 {
		return "", ErrExhausted
	}
	g.guess = pick(g.rnd, next)
	return g.guess, nil
}

// Pool returns the remaining candidates.
func (g *Guesser) Pool() []Code { return g.pool }

// Guess returns the live guess.
func (g *Guesser) Guess() Code { return g.guess }
