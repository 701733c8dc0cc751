package tick

import "math/rand"

// RNG is the random source for chance rolls (crits, flee checks, wander).
// *math/rand.Rand satisfies it.
type RNG interface {
	Intn(n int) int
}

// NewRNG returns a seeded math/rand source.
func NewRNG(seed int64) RNG {
	return rand.New(rand.NewSource(seed))
}

// Sequence replays a scripted list of rolls, then returns zeros. Rolls are
// taken modulo n so scripted values stay in range.
type Sequence struct {
	vals []int
	pos  int
}

func NewSequence(vals ...int) *Sequence {
	return &Sequence{vals: vals}
}

func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("tick: Intn argument must be positive")
	}
	if s.pos >= len(s.vals) {
		return 0
	}
	v := s.vals[s.pos] % n
	s.pos++
	if v < 0 {
		v += n
	}
	return v
}
