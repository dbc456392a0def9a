package rules

import "sort"

// Destinations maps each reachable final rail index to the dice values
// consumed, in the order they are played, to get there. Rail 25 is bearing
// off.
type Destinations map[int][]int

// Rails returns the reachable rail indices in ascending order.
func (d Destinations) Rails() []int {
	rails := make([]int, 0, len(d))
	for rail := range d {
		rails = append(rails, rail)
	}
	sort.Ints(rails)
	return rails
}

// Sequences lists every ordering of every non-empty sub-multiset of dice.
//
// Sequences are ordered by length and then lexically by die value, with
// duplicates removed, so a double of D yields [D], [D D], [D D D] ... and a
// roll of 3-4 yields [3], [4], [3 4], [4 3].
func Sequences(dice []int) [][]int {
	counts := make(map[int]int, len(dice))
	values := make([]int, 0, len(dice))
	for _, d := range dice {
		if counts[d] == 0 {
			values = append(values, d)
		}
		counts[d]++
	}
	sort.Ints(values)

	var out [][]int
	prefix := make([]int, 0, len(dice))
	var permute func(size int)
	permute = func(size int) {
		if len(prefix) == size {
			seq := make([]int, size)
			copy(seq, prefix)
			out = append(out, seq)
			return
		}
		for _, v := range values {
			if counts[v] == 0 {
				continue
			}
			counts[v]--
			prefix = append(prefix, v)
			permute(size)
			prefix = prefix[:len(prefix)-1]
			counts[v]++
		}
	}
	for size := 1; size <= len(dice); size++ {
		permute(size)
	}
	return out
}

// Destinations enumerates where the checker of side on origin can finish
// using some ordered subset of dice. Origin 0 enters from the bar.
//
// Each candidate sequence is walked one die at a time and discarded as soon as
// a step is illegal. When several sequences finish on the same rail the first
// one in Sequences order is kept. The board is not modified.
func (b *Board) Destinations(origin int, side Side, dice []int) Destinations {
	dests := make(Destinations)
	if !b.CanPickUp(origin, side) {
		return dests
	}
	for _, seq := range Sequences(dice) {
		if origin == BarIndex && b.bar[side] > 1 && len(seq) > 1 {
			// Every checker on the bar has to enter before one moves on.
			continue
		}
		final, ok := b.walk(origin, side, seq)
		if !ok {
			continue
		}
		if _, seen := dests[final]; !seen {
			dests[final] = seq
		}
	}
	return dests
}

// walk plays seq from origin and returns the final rail.
func (b *Board) walk(origin int, side Side, seq []int) (int, bool) {
	cur := origin
	for i, die := range seq {
		next := cur + die
		if next <= NumPoints {
			if !b.CanPlace(next, side) {
				return 0, false
			}
			cur = next
			continue
		}

		// Bearing off ends the checker's journey, so it must be the last step.
		if i != len(seq)-1 {
			return 0, false
		}
		// Eligibility reads the board as it stands before the play.
		canBearOff, rearmost := b.homeStatus(side)
		if !canBearOff {
			return 0, false
		}
		if next > OffIndex && cur != rearmost {
			return 0, false
		}
		return OffIndex, true
	}
	return cur, true
}

// HasLegalMove reports whether side can play at least one die from dice.
func (b *Board) HasLegalMove(side Side, dice []int) bool {
	if len(dice) == 0 {
		return false
	}
	if b.bar[side] > 0 {
		return len(b.Destinations(BarIndex, side, dice)) > 0
	}
	for rail := 1; rail <= NumPoints; rail++ {
		if b.CanPickUp(rail, side) && len(b.Destinations(rail, side, dice)) > 0 {
			return true
		}
	}
	return false
}

// Movable returns the rails side may arm with dice, in ascending order.
func (b *Board) Movable(side Side, dice []int) []int {
	if b.bar[side] > 0 {
		if len(b.Destinations(BarIndex, side, dice)) > 0 {
			return []int{BarIndex}
		}
		return nil
	}
	var rails []int
	for rail := 1; rail <= NumPoints; rail++ {
		if b.CanPickUp(rail, side) && len(b.Destinations(rail, side, dice)) > 0 {
			rails = append(rails, rail)
		}
	}
	return rails
}
