package game

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness the engine draws from: secrets, guesses and commentary.
// *math/rand.Rand satisfies it, but is not safe for concurrent use; NewRand is.
type Rand interface {
	Intn(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine-safe source seeded with seed.
// A zero seed means "seed from the clock".
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
