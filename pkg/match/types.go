// Package match writes finished or running games as Jellyfish/gnubg MAT
// move lists.
package match

import "github.com/yourusername/bgrules/pkg/rules"

// Play is one checker moved from From to To with Dice, in the mover's rail
// indices.
type Play struct {
	From int
	To   int
	Dice []int
}

// Turn is everything one side played after a roll.
type Turn struct {
	Ply   int
	Side  rules.Side
	Dice  [2]int
	Plays []Play
}

// Game is a single game record.
type Game struct {
	Number  int
	Players [2]string
	Date    string // Optional, written as a tag
	Turns   []Turn
	Winner  *rules.Side
}

// NewGame creates an empty record for game 1.
func NewGame(playerA, playerB string) *Game {
	return &Game{
		Number:  1,
		Players: [2]string{playerA, playerB},
	}
}

// AddPlay appends p to the turn numbered ply, starting a new turn when ply
// changes.
func (g *Game) AddPlay(ply int, side rules.Side, dice [2]int, p Play) {
	if n := len(g.Turns); n > 0 && g.Turns[n-1].Ply == ply {
		g.Turns[n-1].Plays = append(g.Turns[n-1].Plays, p)
		return
	}
	g.Turns = append(g.Turns, Turn{Ply: ply, Side: side, Dice: dice, Plays: []Play{p}})
}

// SetWinner records the winning side.
func (g *Game) SetWinner(side rules.Side) {
	g.Winner = &side
}
