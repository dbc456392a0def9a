package game

import (
	"github.com/yourusername/bgrules/internal/positionid"
	"github.com/yourusername/bgrules/pkg/rules"
)

// PointView is one point as seen from side A.
type PointView struct {
	Rail  int    `json:"rail"`
	Count int    `json:"count"`
	Owner string `json:"owner"`
	Mark  string `json:"mark,omitempty"`
}

// Snapshot is a read-only copy of a game for renderers and storage.
type Snapshot struct {
	ID           string      `json:"id"`
	Players      [2]Player   `json:"players"`
	Turn         rules.Side  `json:"turn"`
	Phase        string      `json:"phase"`
	Dice         [2]int      `json:"dice"`
	Remaining    []int       `json:"remaining"`
	Points       []PointView `json:"points"`
	Bar          [2]int      `json:"bar"`
	Off          [2]int      `json:"off"`
	Selected     *int        `json:"selected,omitempty"`
	OffReachable bool        `json:"off_reachable"`
	Movable      []int       `json:"movable,omitempty"`
	Winner       *rules.Side `json:"winner,omitempty"`
	PositionID   string      `json:"position_id"`
	Plies        int         `json:"plies"`
}

// Snapshot captures the current state of the game.
func (g *Game) Snapshot() Snapshot {
	rolled, remaining := g.Dice()
	s := Snapshot{
		ID:           g.ID.String(),
		Players:      g.Players,
		Turn:         g.Turn,
		Phase:        g.phase.String(),
		Dice:         rolled,
		Remaining:    remaining,
		Bar:          [2]int{g.Board.Bar(rules.SideA), g.Board.Bar(rules.SideB)},
		Off:          [2]int{g.Board.Off(rules.SideA), g.Board.Off(rules.SideB)},
		OffReachable: g.Board.OffReachable(g.Turn),
		Movable:      g.Movable(),
		PositionID:   positionid.Encode(g.Board, g.Turn),
		Plies:        g.plies,
	}

	points := g.Board.Points(rules.SideA)
	s.Points = make([]PointView, len(points))
	for i, p := range points {
		view := PointView{Rail: i + 1, Count: p.Count, Owner: p.Occupant.String()}
		if p.Mark != rules.MarkNone {
			view.Mark = p.Mark.String()
		}
		s.Points[i] = view
	}

	if rail, side := g.Board.Selected(); rail != rules.NoSelection && side == g.Turn {
		s.Selected = &rail
	}
	if winner, ok := g.Winner(); ok {
		s.Winner = &winner
	}
	return s
}
