// Package dice rolls backgammon dice and tracks the values left to play in a
// turn.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
)

// Faces is the number of faces on a die.
const Faces = 6

var (
	// ErrDieNotAvailable is returned when consuming values the pool does not hold.
	ErrDieNotAvailable = errors.New("die value not available")
	// ErrInvalidDie is returned for values outside 1-6.
	ErrInvalidDie = errors.New("die value must be between 1 and 6")
)

// Roll throws two dice.
func Roll(rng *rand.Rand) (int, int) {
	return rng.Intn(Faces) + 1, rng.Intn(Faces) + 1
}

// NewSeed returns a seed read from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, errors.Wrap(err, "read random seed")
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Pool holds the die values still to be played this turn.
type Pool struct {
	rolled [2]int
	values []int
}

// NewPool returns the pool for a roll of a and b. Doubles are played four
// times.
func NewPool(a, b int) (*Pool, error) {
	if !valid(a) || !valid(b) {
		return nil, errors.Wrapf(ErrInvalidDie, "roll %d-%d", a, b)
	}
	p := &Pool{rolled: [2]int{a, b}}
	if a == b {
		p.values = []int{a, a, a, a}
	} else {
		p.values = []int{a, b}
	}
	return p, nil
}

// Rolled returns the two dice as thrown.
func (p *Pool) Rolled() [2]int {
	return p.rolled
}

// IsDouble reports whether both dice show the same value.
func (p *Pool) IsDouble() bool {
	return p.rolled[0] == p.rolled[1]
}

// Values returns a copy of the remaining values, sorted ascending.
func (p *Pool) Values() []int {
	out := make([]int, len(p.values))
	copy(out, p.values)
	sort.Ints(out)
	return out
}

// Len returns the number of dice left.
func (p *Pool) Len() int {
	return len(p.values)
}

// Empty reports whether every die has been played.
func (p *Pool) Empty() bool {
	return len(p.values) == 0
}

// Consume removes used from the pool. Either every value is removed or, on
// error, the pool is left unchanged.
func (p *Pool) Consume(used []int) error {
	remaining := make([]int, len(p.values))
	copy(remaining, p.values)

	for _, v := range used {
		i := indexOf(remaining, v)
		if i < 0 {
			return errors.Wrapf(ErrDieNotAvailable, "consume %v from %v", used, p.Values())
		}
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	p.values = remaining
	return nil
}

func indexOf(values []int, v int) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return -1
}

func valid(v int) bool {
	return v >= 1 && v <= Faces
}
