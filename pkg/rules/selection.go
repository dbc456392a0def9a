package rules

// Arm selects the checker of side on rail for the current roll.
//
// Any previous selection is cleared first. When side has checkers on the bar
// only the bar (rail 0) can be armed. If the checker cannot be picked up or
// has nowhere to go, Arm leaves the board unselected and returns ok == false.
// Otherwise the point is marked selected, every destination is marked
// reachable (bearing off sets OffReachable instead) and the destinations are
// returned.
func (b *Board) Arm(rail int, side Side, dice []int) (dests Destinations, ok bool) {
	b.clearSelection()

	if b.bar[side] > 0 && rail != BarIndex {
		return nil, false
	}
	if !b.CanPickUp(rail, side) {
		return nil, false
	}
	dests = b.Destinations(rail, side, dice)
	if len(dests) == 0 {
		return nil, false
	}

	if rail != BarIndex {
		b.points[slot(rail, side)].Mark = MarkSelected
	}
	for dest, used := range dests {
		if dest == OffIndex {
			b.offReachable[side] = true
			continue
		}
		mark := MarkReachable
		if len(used) > 1 {
			mark = MarkReachableDouble
		}
		b.points[slot(dest, side)].Mark = mark
	}
	b.selected = rail
	b.selectedSide = side
	return dests, true
}

// Disarm clears the selection, every reachable mark and side's off-tray
// flag. Calling it when nothing is armed is a no-op.
func (b *Board) Disarm(side Side) {
	for i := range b.points {
		b.points[i].Mark = MarkNone
	}
	b.offReachable[side] = false
	b.selected = NoSelection
}

// IsArmed reports whether a point is currently selected for side.
func (b *Board) IsArmed(side Side) bool {
	return b.selected != NoSelection && b.selectedSide == side
}

func (b *Board) clearSelection() {
	b.Disarm(SideA)
	b.Disarm(SideB)
}
