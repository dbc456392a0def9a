// Package api provides the HTTP/JSON API for playing backgammon games.
package api

import (
	"github.com/yourusername/bgrules/internal/store"
	"github.com/yourusername/bgrules/pkg/game"
	"github.com/yourusername/bgrules/pkg/rules"
	"github.com/yourusername/bgrules/pkg/sim"
)

// ============================================================================
// Request Types
// ============================================================================

// CreateGameRequest is the request body for starting a game.
type CreateGameRequest struct {
	Players  [2]string `json:"players,omitempty"`  // Names for side A and B (default WHITE, BLACK)
	Position string    `json:"position,omitempty"` // Optional starting position ID (gnubg format)
	OnRoll   int       `json:"on_roll,omitempty"`  // Side to move when Position is set: 0=A, 1=B
}

// RollRequest is the request body for rolling the dice.
type RollRequest struct {
	Dice *[2]int `json:"dice,omitempty"` // Fixed dice instead of a throw
	Seed int64   `json:"seed,omitempty"` // Seed for this throw (0 = game RNG)
}

// RailRequest carries a rail index for select and play.
type RailRequest struct {
	Rail int `json:"rail"` // 0 = bar, 1-24 = points, 25 = off (play only)
}

// SimulateRequest is the request body for random self-play.
type SimulateRequest struct {
	Games    int   `json:"games,omitempty"`     // Number of games (default 100)
	Seed     int64 `json:"seed,omitempty"`      // Random seed (0 = random)
	Workers  int   `json:"workers,omitempty"`   // Parallel workers (0 = GOMAXPROCS)
	MaxTurns int   `json:"max_turns,omitempty"` // Turn cap per game
}

// ============================================================================
// Response Types
// ============================================================================

// HealthResponse is the response for health checks.
type HealthResponse struct {
	Status  string     `json:"status"`
	Version string     `json:"version"`
	Games   int        `json:"games"`
	Journal bool       `json:"journal"`
	Pool    *PoolStats `json:"pool,omitempty"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// RollResponse is the response for a roll.
type RollResponse struct {
	Dice   [2]int        `json:"dice"`
	Passed bool          `json:"passed"` // No die could be played and the turn went over
	Game   game.Snapshot `json:"game"`
}

// Destination is one reachable rail and the dice that reach it.
type Destination struct {
	Rail int   `json:"rail"`
	Dice []int `json:"dice"`
}

// SelectResponse is the response for arming a checker.
type SelectResponse struct {
	Rail         int           `json:"rail"`
	Destinations []Destination `json:"destinations"`
	Game         game.Snapshot `json:"game"`
}

// PlayResponse is the response for a committed move.
type PlayResponse struct {
	Side      rules.Side    `json:"side"`
	From      int           `json:"from"`
	To        int           `json:"to"`
	DiceUsed  []int         `json:"dice_used"`
	Captures  int           `json:"captures"`
	Remaining []int         `json:"remaining"`
	TurnOver  bool          `json:"turn_over"`
	Won       bool          `json:"won"`
	Game      game.Snapshot `json:"game"`
}

// MoveView is one journaled move.
type MoveView struct {
	Seq        int        `json:"seq"`
	Ply        int        `json:"ply"`
	Side       rules.Side `json:"side"`
	From       int        `json:"from"`
	To         int        `json:"to"`
	Dice       []int      `json:"dice"`
	Captures   int        `json:"captures"`
	PositionID string     `json:"position_id"`
}

// MovesResponse lists the journal of a game.
type MovesResponse struct {
	GameID string     `json:"game_id"`
	Moves  []MoveView `json:"moves"`
}

// SimulateResponse is the response for a simulation run.
type SimulateResponse = sim.Result

// ============================================================================
// Helper Functions
// ============================================================================

// destinationsToResponse orders destinations by rail.
func destinationsToResponse(dests rules.Destinations) []Destination {
	rails := dests.Rails()
	out := make([]Destination, len(rails))
	for i, rail := range rails {
		out[i] = Destination{Rail: rail, Dice: dests[rail]}
	}
	return out
}

// playToResponse converts a game PlayResult to an API response.
func playToResponse(res game.PlayResult, snap game.Snapshot) *PlayResponse {
	return &PlayResponse{
		Side:      res.Side,
		From:      res.From,
		To:        res.To,
		DiceUsed:  res.DiceUsed,
		Captures:  res.Captures,
		Remaining: res.Remaining,
		TurnOver:  res.TurnOver,
		Won:       res.Won,
		Game:      snap,
	}
}

func movesToResponse(id string, records []store.MoveRecord) *MovesResponse {
	resp := &MovesResponse{GameID: id, Moves: make([]MoveView, len(records))}
	for i, m := range records {
		resp.Moves[i] = MoveView{
			Seq:        m.Seq,
			Ply:        m.Ply,
			Side:       m.Side,
			From:       m.From,
			To:         m.To,
			Dice:       m.Dice,
			Captures:   m.Captures,
			PositionID: m.PositionID,
		}
	}
	return resp
}
