// Package game wraps a rules.Board into a playable session: two players, the
// side to move and the dice left in the turn.
package game

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/yourusername/bgrules/pkg/dice"
	"github.com/yourusername/bgrules/pkg/rules"
)

var (
	ErrGameOver       = errors.New("game is over")
	ErrAlreadyRolled  = errors.New("dice already rolled this turn")
	ErrNotRolled      = errors.New("dice not rolled yet")
	ErrCannotSelect   = errors.New("checker cannot be moved")
	ErrNoSelection    = errors.New("no checker selected")
	ErrUnreachable    = errors.New("destination not reachable")
	ErrMovesAvailable = errors.New("legal moves remain")
)

// Phase is where the current turn stands.
type Phase int

const (
	// AwaitingRoll means the side to move has not rolled yet.
	AwaitingRoll Phase = iota
	// Moving means dice are left to play.
	Moving
	// Finished means one side has borne off every checker.
	Finished
)

func (p Phase) String() string {
	switch p {
	case AwaitingRoll:
		return "awaiting_roll"
	case Moving:
		return "moving"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// RollResult describes a roll.
type RollResult struct {
	Dice [2]int
	// Passed is set when no die could be played and the turn went over.
	Passed bool
}

// PlayResult describes a committed move.
type PlayResult struct {
	Side      rules.Side
	From      int
	To        int
	DiceUsed  []int
	Captures  int
	Remaining []int
	TurnOver  bool
	Won       bool
}

// Game is a single backgammon game. It is not safe for concurrent use; see
// Registry.
type Game struct {
	ID        uuid.UUID
	Board     *rules.Board
	Players   [2]Player
	Turn      rules.Side
	CreatedAt time.Time

	phase  Phase
	pool   *dice.Pool
	dests  rules.Destinations
	origin int
	winner rules.Side
	plies  int
	rng    *rand.Rand
}

// New starts a game from the opening position. Side A moves first. Empty
// names fall back to defaults.
func New(nameA, nameB string, rng *rand.Rand) (*Game, error) {
	g := newGame(rules.NewBoard(), rules.SideA, rng)
	for i, name := range []string{nameA, nameB} {
		if name == "" {
			name = defaultNames[i]
		}
		if _, err := g.SetPlayerName(rules.Side(i), name); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// FromBoard starts a game on an arbitrary position with turn to move.
func FromBoard(board *rules.Board, turn rules.Side, rng *rand.Rand) (*Game, error) {
	if err := board.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid position")
	}
	g := newGame(board, turn, rng)
	g.Players[rules.SideA].Name = defaultNames[rules.SideA]
	g.Players[rules.SideB].Name = defaultNames[rules.SideB]
	g.checkWinner()
	return g, nil
}

// Resume rebuilds a stored game: its ID, player names, position, side to
// move and turn count. The dice of an unfinished turn are not kept, so the
// side to move rolls again.
func Resume(id uuid.UUID, names [2]string, board *rules.Board, turn rules.Side, plies int, rng *rand.Rand) (*Game, error) {
	g, err := FromBoard(board, turn, rng)
	if err != nil {
		return nil, err
	}
	g.ID = id
	g.Players[rules.SideA].Name = ""
	g.Players[rules.SideB].Name = ""
	for i, name := range names {
		if _, err := g.SetPlayerName(rules.Side(i), name); err != nil {
			return nil, err
		}
	}
	g.plies = plies
	return g, nil
}

func newGame(board *rules.Board, turn rules.Side, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Game{
		ID:        uuid.New(),
		Board:     board,
		Players:   [2]Player{{Side: rules.SideA}, {Side: rules.SideB}},
		Turn:      turn,
		CreatedAt: time.Now().UTC(),
		phase:     AwaitingRoll,
		origin:    rules.NoSelection,
		rng:       rng,
	}
}

// SetPlayerName validates and stores side's name, returning the stored form.
func (g *Game) SetPlayerName(side rules.Side, name string) (string, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	other := g.Players[side.Opponent()].Name
	if other != "" && strings.EqualFold(other, normalized) {
		return "", errors.Wrapf(ErrDuplicateName, "%q", name)
	}
	g.Players[side].Name = normalized
	return normalized, nil
}

// Phase returns the current turn phase.
func (g *Game) Phase() Phase {
	return g.phase
}

// Winner returns the winning side once the game is finished.
func (g *Game) Winner() (rules.Side, bool) {
	return g.winner, g.phase == Finished
}

// Plies returns the number of turns completed so far.
func (g *Game) Plies() int {
	return g.plies
}

// Dice returns the roll of the current turn and the values still to play.
func (g *Game) Dice() (rolled [2]int, remaining []int) {
	if g.pool == nil {
		return rolled, nil
	}
	return g.pool.Rolled(), g.pool.Values()
}

// Roll throws the dice for the side to move.
func (g *Game) Roll() (RollResult, error) {
	a, b := dice.Roll(g.rng)
	return g.SetRoll(a, b)
}

// SetRoll starts the turn with the given dice instead of throwing them. If
// none of them can be played the turn passes immediately.
func (g *Game) SetRoll(a, b int) (RollResult, error) {
	switch g.phase {
	case Finished:
		return RollResult{}, ErrGameOver
	case Moving:
		return RollResult{}, ErrAlreadyRolled
	}
	pool, err := dice.NewPool(a, b)
	if err != nil {
		return RollResult{}, err
	}
	g.pool = pool
	g.phase = Moving

	res := RollResult{Dice: [2]int{a, b}}
	if !g.Board.HasLegalMove(g.Turn, pool.Values()) {
		g.endTurn()
		res.Passed = true
	}
	return res, nil
}

// Movable lists the rails the side to move can select with the dice left.
func (g *Game) Movable() []int {
	if g.phase != Moving {
		return nil
	}
	return g.Board.Movable(g.Turn, g.pool.Values())
}

// Select arms the checker on rail and returns where it can go.
func (g *Game) Select(rail int) (rules.Destinations, error) {
	if err := g.requireMoving(); err != nil {
		return nil, err
	}
	if rail < rules.BarIndex || rail > rules.NumPoints {
		return nil, errors.Wrapf(ErrCannotSelect, "rail %d out of range", rail)
	}
	dests, ok := g.Board.Arm(rail, g.Turn, g.pool.Values())
	if !ok {
		g.dests = nil
		g.origin = rules.NoSelection
		return nil, errors.Wrapf(ErrCannotSelect, "rail %d for side %s", rail, g.Turn)
	}
	g.dests = dests
	g.origin = rail
	return dests, nil
}

// Deselect drops the current selection.
func (g *Game) Deselect() {
	g.Board.Disarm(g.Turn)
	g.dests = nil
	g.origin = rules.NoSelection
}

// Play moves the selected checker to destination, consuming the dice the
// engine reported for it. Opposing blots on intermediate points are hit too.
func (g *Game) Play(destination int) (PlayResult, error) {
	if err := g.requireMoving(); err != nil {
		return PlayResult{}, err
	}
	if g.dests == nil {
		return PlayResult{}, ErrNoSelection
	}
	used, ok := g.dests[destination]
	if !ok {
		return PlayResult{}, errors.Wrapf(ErrUnreachable, "rail %d from %d", destination, g.origin)
	}
	if err := g.pool.Consume(used); err != nil {
		return PlayResult{}, err
	}

	side := g.Turn
	res := PlayResult{
		Side:     side,
		From:     g.origin,
		To:       destination,
		DiceUsed: append([]int(nil), used...),
	}
	g.Board.Disarm(side)
	cur := g.origin
	for _, die := range used {
		next := cur + die
		if next > rules.NumPoints {
			next = rules.OffIndex
		}
		if g.Board.Commit(cur, next, side) {
			res.Captures++
		}
		cur = next
	}
	g.dests = nil
	g.origin = rules.NoSelection

	if g.checkWinner() {
		res.Won = true
		res.TurnOver = true
		return res, nil
	}
	res.Remaining = g.pool.Values()
	if g.pool.Empty() || !g.Board.HasLegalMove(side, res.Remaining) {
		g.endTurn()
		res.TurnOver = true
		res.Remaining = nil
	}
	return res, nil
}

// Pass gives up the rest of the turn. It is only allowed when no remaining
// die can be played.
func (g *Game) Pass() error {
	if err := g.requireMoving(); err != nil {
		return err
	}
	if g.Board.HasLegalMove(g.Turn, g.pool.Values()) {
		return ErrMovesAvailable
	}
	g.endTurn()
	return nil
}

func (g *Game) requireMoving() error {
	switch g.phase {
	case Finished:
		return ErrGameOver
	case AwaitingRoll:
		return ErrNotRolled
	}
	return nil
}

func (g *Game) endTurn() {
	g.Board.Disarm(g.Turn)
	g.dests = nil
	g.origin = rules.NoSelection
	g.pool = nil
	g.Turn = g.Turn.Opponent()
	g.phase = AwaitingRoll
	g.plies++
}

func (g *Game) checkWinner() bool {
	won, sideAWon := g.Board.IsMatchWon()
	if !won {
		return false
	}
	g.winner = rules.SideB
	if sideAWon {
		g.winner = rules.SideA
	}
	g.Board.Disarm(g.Turn)
	g.pool = nil
	g.dests = nil
	g.origin = rules.NoSelection
	g.phase = Finished
	return true
}
