package game

import (
	"math/rand"
	"time"
)

// Clock abstracts wall-clock time so ticks can be driven in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Rand is the uniform [0,1) source behind box rolls and referral codes.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

func DefaultRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
