package rules

import (
	"reflect"
	"testing"
)

// boardWith builds a board holding only the listed checkers. Positions are
// given in each side's own rail indices; unplaced checkers go to the off-tray.
func boardWith(a, b map[int]int) *Board {
	board := NewEmptyBoard()
	for rail, n := range a {
		board.SetPoint(rail, SideA, Checkers(SideA, n))
	}
	for rail, n := range b {
		board.SetPoint(rail, SideB, Checkers(SideB, n))
	}
	board.Rebalance()
	return board
}

func assertDestinations(t *testing.T, got Destinations, want Destinations) {
	t.Helper()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("destinations = %v, want %v", got, want)
	}
}

func assertValid(t *testing.T, b *Board) {
	t.Helper()
	if err := b.Validate(); err != nil {
		t.Fatalf("board invalid: %v", err)
	}
}
