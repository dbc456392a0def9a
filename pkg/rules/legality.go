package rules

// NoChecker is returned by MostAdvancedCheckerIndex when side has no checker
// in its home quadrant.
const NoChecker = -1

// CanPlace reports whether a checker of side may land on rail: the point is
// empty, already side's, or an opposing blot.
func (b *Board) CanPlace(rail int, side Side) bool {
	p := b.Point(rail, side)
	if p.IsEmpty() || p.Holds(side) {
		return true
	}
	return p.Count == 1
}

// CanPickUp reports whether side has a checker to move from rail. Rail 0
// asks about side's bar.
func (b *Board) CanPickUp(rail int, side Side) bool {
	if rail == BarIndex {
		return b.bar[side] > 0
	}
	return b.Point(rail, side).Holds(side)
}

// CanBearOff reports whether every checker of side still in play is inside
// its home quadrant (rails 19-24) and none waits on the bar.
func (b *Board) CanBearOff(side Side) bool {
	ok, _ := b.homeStatus(side)
	return ok
}

// MostAdvancedCheckerIndex returns side's rearmost home checker: the lowest
// occupied rail in [19,24], or NoChecker.
func (b *Board) MostAdvancedCheckerIndex(side Side) int {
	_, rearmost := b.homeStatus(side)
	return rearmost
}

// homeStatus evaluates bear-off eligibility and the rearmost home checker in
// one pass over side's rails.
func (b *Board) homeStatus(side Side) (canBearOff bool, rearmost int) {
	canBearOff = b.bar[side] == 0
	rearmost = NoChecker
	for rail := 1; rail <= NumPoints; rail++ {
		if !b.Point(rail, side).Holds(side) {
			continue
		}
		if rail < HomeStart {
			canBearOff = false
		} else if rearmost == NoChecker {
			rearmost = rail
		}
	}
	return canBearOff, rearmost
}
