package rules

import "fmt"

// Move carries one checker of side from origin to destination, both in
// [1,24]. If destination holds a single opposing checker it is sent to the
// opponent's bar and Move returns true.
//
// Move does not check legality; callers validate with Destinations or Arm
// first. Moving from a point that holds no checker of side panics.
func (b *Board) Move(origin, destination int, side Side) (captured bool) {
	b.lift(origin, side)
	return b.land(destination, side)
}

// TakeOut bears one checker of side off from rail.
func (b *Board) TakeOut(rail int, side Side) {
	b.lift(rail, side)
	b.off[side]++
}

// AddToBar puts one checker of side on its bar.
func (b *Board) AddToBar(side Side) {
	b.bar[side]++
}

// RemoveFromBar takes one checker of side off its bar. It does nothing when
// the bar is already empty.
func (b *Board) RemoveFromBar(side Side) {
	if b.bar[side] > 0 {
		b.bar[side]--
	}
}

// IsBarEmpty reports whether side has no checker waiting to re-enter.
func (b *Board) IsBarEmpty(side Side) bool {
	return b.bar[side] == 0
}

// Enter brings a checker of side in from the bar onto rail.
func (b *Board) Enter(rail int, side Side) (captured bool) {
	if b.bar[side] == 0 {
		panic(fmt.Sprintf("rules: side %s has no checker on the bar", side))
	}
	b.bar[side]--
	return b.land(rail, side)
}

// Commit applies a single step from origin to destination, dispatching bar
// entry (origin 0) and bearing off (destination 25).
func (b *Board) Commit(origin, destination int, side Side) (captured bool) {
	switch {
	case origin == BarIndex:
		return b.Enter(destination, side)
	case destination >= OffIndex:
		b.TakeOut(origin, side)
		return false
	default:
		return b.Move(origin, destination, side)
	}
}

// IsMatchWon reports whether either side has borne off all its checkers.
// Side A is checked first, so sideAWon is true when both qualify.
func (b *Board) IsMatchWon() (won bool, sideAWon bool) {
	if b.off[SideA] >= TotalCheckers {
		return true, true
	}
	if b.off[SideB] >= TotalCheckers {
		return true, false
	}
	return false, false
}

func (b *Board) lift(rail int, side Side) {
	s := slot(rail, side)
	p := b.points[s]
	if !p.Holds(side) {
		panic(fmt.Sprintf("rules: no checker of side %s on rail %d", side, rail))
	}
	p.Count--
	if p.Count == 0 {
		p.Occupant = Empty
	}
	b.points[s] = p
}

func (b *Board) land(rail int, side Side) bool {
	s := slot(rail, side)
	p := b.points[s]
	if p.IsBlotOf(side.Opponent()) {
		b.bar[side.Opponent()]++
		b.points[s] = Point{Count: 1, Mark: p.Mark, Occupant: side.occupant()}
		return true
	}
	p.Count++
	p.Occupant = side.occupant()
	b.points[s] = p
	return false
}
