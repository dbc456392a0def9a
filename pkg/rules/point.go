// Package rules implements the backgammon rules engine: board state, point
// legality, dice combination and checker movement.
//
// All legality and combination logic works in rail-index space. A rail index
// runs from 1 (the side's entry point) to 24 (the last point before bearing
// off) and is always relative to the side being asked about. Rail 0 is that
// side's bar and rail 25 is its off-tray.
package rules

import "fmt"

// Side identifies one of the two players.
type Side int

const (
	SideA Side = 0
	SideB Side = 1
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	return 1 - s
}

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Occupant reports which side's checkers sit on a point.
type Occupant uint8

const (
	Empty Occupant = iota
	OccupiedByA
	OccupiedByB
)

// occupant returns the Occupant value for checkers of s.
func (s Side) occupant() Occupant {
	if s == SideA {
		return OccupiedByA
	}
	return OccupiedByB
}

// Side returns the side holding the point. ok is false for an empty point.
func (o Occupant) Side() (side Side, ok bool) {
	switch o {
	case OccupiedByA:
		return SideA, true
	case OccupiedByB:
		return SideB, true
	}
	return SideA, false
}

func (o Occupant) String() string {
	switch o {
	case Empty:
		return "empty"
	case OccupiedByA:
		return "A"
	case OccupiedByB:
		return "B"
	default:
		return "unknown"
	}
}

// MarkState is selection metadata for renderers. Legality never reads it.
type MarkState uint8

const (
	MarkNone MarkState = iota
	// MarkSelected is the point armed for the current move.
	MarkSelected
	// MarkReachable is a destination reached with a single die.
	MarkReachable
	// MarkReachableDouble is a destination that needs two or more dice.
	MarkReachableDouble
)

func (m MarkState) String() string {
	switch m {
	case MarkNone:
		return "none"
	case MarkSelected:
		return "selected"
	case MarkReachable:
		return "reachable"
	case MarkReachableDouble:
		return "reachable_double"
	default:
		return "unknown"
	}
}

// Point is one of the 24 triangles on the board.
type Point struct {
	Count    int
	Mark     MarkState
	Occupant Occupant
}

// Checkers returns a point holding n checkers of side.
func Checkers(side Side, n int) Point {
	if n <= 0 {
		return Point{}
	}
	return Point{Count: n, Occupant: side.occupant()}
}

// IsEmpty reports whether no checker sits on the point.
func (p Point) IsEmpty() bool {
	return p.Count == 0
}

// Holds reports whether the point holds at least one checker of side.
func (p Point) Holds(side Side) bool {
	return p.Count > 0 && p.Occupant == side.occupant()
}

// IsBlotOf reports whether the point holds exactly one checker of side.
func (p Point) IsBlotOf(side Side) bool {
	return p.Count == 1 && p.Occupant == side.occupant()
}
