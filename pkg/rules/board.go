package rules

const (
	// NumPoints is the number of playable points.
	NumPoints = 24
	// TotalCheckers is the number of checkers each side owns.
	TotalCheckers = 15
	// BarIndex is the rail index of a side's bar.
	BarIndex = 0
	// OffIndex is the rail index of a side's off-tray.
	OffIndex = 25
	// HomeStart is the first rail index of a side's home quadrant.
	HomeStart = 19
	// NoSelection is returned by Selected when no point is armed.
	NoSelection = -1
)

// Placement pairs a rail index with the point to store there.
type Placement struct {
	Rail  int
	Point Point
}

// Board holds the 24 points plus bar and off-tray counters for both sides.
//
// Points are stored once, in side A's rail orientation, and reached through
// the IndexMapper for either side. A Board is created once per game and
// mutated in place; it carries no lock and must be serialized by its owner.
type Board struct {
	points       [NumPoints]Point
	bar          [2]int
	off          [2]int
	selected     int
	selectedSide Side
	offReachable [2]bool
}

// openingLayout lists the starting checkers in each side's own rail indices.
var openingLayout = []Placement{
	{Rail: 1, Point: Point{Count: 2}},
	{Rail: 12, Point: Point{Count: 5}},
	{Rail: 17, Point: Point{Count: 3}},
	{Rail: 19, Point: Point{Count: 5}},
}

// NewBoard returns a board in the standard opening position.
func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// NewEmptyBoard returns a board with no checkers on points or bars and every
// checker of both sides in its off-tray. Tests and position decoding fill it
// in with SetPoint, SetBar and SetOff.
func NewEmptyBoard() *Board {
	return &Board{
		off:      [2]int{TotalCheckers, TotalCheckers},
		selected: NoSelection,
	}
}

// Reset restores the canonical 15-checker opening layout.
func (b *Board) Reset() {
	b.points = [NumPoints]Point{}
	b.bar = [2]int{}
	b.off = [2]int{}
	b.selected = NoSelection
	b.selectedSide = SideA
	b.offReachable = [2]bool{}

	for _, side := range []Side{SideA, SideB} {
		for _, pl := range openingLayout {
			b.SetPoint(pl.Rail, side, Checkers(side, pl.Point.Count))
		}
	}
}

// Point returns the point at rail for side.
func (b *Board) Point(rail int, side Side) Point {
	return b.points[slot(rail, side)]
}

// SetPoint replaces the point at rail for side. No validation is performed.
func (b *Board) SetPoint(rail int, side Side, p Point) {
	b.points[slot(rail, side)] = p
}

// SetPoints replaces several points, all addressed from side's viewpoint.
func (b *Board) SetPoints(placements []Placement, side Side) {
	for _, pl := range placements {
		b.SetPoint(pl.Rail, side, pl.Point)
	}
}

// Bar returns the number of side's checkers waiting to re-enter.
func (b *Board) Bar(side Side) int {
	return b.bar[side]
}

// SetBar overwrites side's bar counter.
func (b *Board) SetBar(side Side, n int) {
	b.bar[side] = n
}

// Off returns the number of side's checkers already borne off.
func (b *Board) Off(side Side) int {
	return b.off[side]
}

// SetOff overwrites side's off-tray counter.
func (b *Board) SetOff(side Side, n int) {
	b.off[side] = n
}

// OffReachable reports whether bearing off is a destination of the current
// selection for side.
func (b *Board) OffReachable(side Side) bool {
	return b.offReachable[side]
}

// Selected returns the armed rail index and the side it was armed for.
// rail is NoSelection when nothing is armed.
func (b *Board) Selected() (rail int, side Side) {
	return b.selected, b.selectedSide
}

// Half returns a copy of one physical half of the board in display order.
func (b *Board) Half(h Half) [HalfSize]Point {
	var out [HalfSize]Point
	for i := 0; i < HalfSize; i++ {
		out[i] = b.points[physicalSlot(h, i)]
	}
	return out
}

// Points returns all points in side's rail order; index i holds rail i+1.
func (b *Board) Points(side Side) [NumPoints]Point {
	var out [NumPoints]Point
	for rail := 1; rail <= NumPoints; rail++ {
		out[rail-1] = b.Point(rail, side)
	}
	return out
}

// OnBoard counts side's checkers sitting on the 24 points.
func (b *Board) OnBoard(side Side) int {
	n := 0
	for _, p := range b.points {
		if p.Holds(side) {
			n += p.Count
		}
	}
	return n
}

// Total counts every checker of side: points, bar and off-tray.
func (b *Board) Total(side Side) int {
	return b.OnBoard(side) + b.bar[side] + b.off[side]
}

// PipCount returns the number of pips side needs to bear everything off.
func (b *Board) PipCount(side Side) int {
	pips := b.bar[side] * OffIndex
	for rail := 1; rail <= NumPoints; rail++ {
		if p := b.Point(rail, side); p.Holds(side) {
			pips += p.Count * (OffIndex - rail)
		}
	}
	return pips
}

// Rebalance sets each side's off-tray to the checkers not on points or bar.
func (b *Board) Rebalance() {
	for _, side := range []Side{SideA, SideB} {
		b.off[side] = TotalCheckers - b.OnBoard(side) - b.bar[side]
	}
}
