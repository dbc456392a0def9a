package rules

import "fmt"

// Half names one physical half of the board.
type Half int

const (
	// FarHalf holds side A's rails 1-12 (side B's 13-24).
	FarHalf Half = iota
	// NearHalf holds side A's rails 13-24 (side B's 1-12).
	NearHalf
)

// HalfSize is the number of points in one half.
const HalfSize = 12

func (h Half) String() string {
	if h == FarHalf {
		return "far"
	}
	return "near"
}

// Location is a physical position on the board, used only by renderers.
type Location struct {
	Half Half
	Slot int
}

// Resolve maps a rail index for side to its physical half and slot.
//
// Side A enters on the far half and runs toward the near half; side B runs the
// opposite way. Slot 0 of each half is the point next to the middle of the
// board: the far half lists side A's rails 12 down to 1, the near half lists
// rails 13 up to 24. Resolve panics for rail outside [1,24].
func Resolve(rail int, side Side) Location {
	s := slot(rail, side)
	if s < HalfSize {
		return Location{Half: FarHalf, Slot: HalfSize - 1 - s}
	}
	return Location{Half: NearHalf, Slot: s - HalfSize}
}

// slot returns the storage index for rail seen from side.
func slot(rail int, side Side) int {
	if rail < 1 || rail > NumPoints {
		panic(fmt.Sprintf("rules: rail index %d out of range [1,%d]", rail, NumPoints))
	}
	if side == SideA {
		return rail - 1
	}
	return NumPoints - rail
}

func physicalSlot(h Half, i int) int {
	if i < 0 || i >= HalfSize {
		panic(fmt.Sprintf("rules: slot %d out of range [0,%d)", i, HalfSize))
	}
	if h == FarHalf {
		return HalfSize - 1 - i
	}
	return HalfSize + i
}
