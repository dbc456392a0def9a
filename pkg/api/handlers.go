package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/yourusername/bgrules/internal/positionid"
	"github.com/yourusername/bgrules/internal/store"
	"github.com/yourusername/bgrules/pkg/dice"
	"github.com/yourusername/bgrules/pkg/game"
	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/rules"
	"github.com/yourusername/bgrules/pkg/sim"
)

// MaxSimulateGames caps a single simulation request.
const MaxSimulateGames = 10000

// journalTimeout bounds each journal write.
const journalTimeout = 5 * time.Second

// Handlers holds the HTTP handlers and the game registry.
type Handlers struct {
	games   *game.Registry
	journal *store.Store
	version string
	pool    *WorkerPool

	restoreMu sync.Mutex
}

// NewHandlers creates a new Handlers instance without a worker pool. journal
// may be nil to run without persistence.
func NewHandlers(games *game.Registry, journal *store.Store, version string) *Handlers {
	return &Handlers{
		games:   games,
		journal: journal,
		version: version,
	}
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
func NewHandlersWithPool(games *game.Registry, journal *store.Store, version string, pool *WorkerPool) *Handlers {
	h := NewHandlers(games, journal, version)
	h.pool = pool
	return h
}

// apiError is an error with its HTTP status and stable code.
type apiError struct {
	status int
	code   string
	msg    string
}

func (e *apiError) Error() string {
	return e.msg
}

// toAPIError maps domain errors to HTTP responses.
func toAPIError(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch errors.Cause(err) {
	case game.ErrNotFound, store.ErrNotFound:
		status, code = http.StatusNotFound, "GAME_NOT_FOUND"
	case game.ErrInvalidName:
		status, code = http.StatusBadRequest, "INVALID_NAME"
	case game.ErrDuplicateName:
		status, code = http.StatusBadRequest, "DUPLICATE_NAME"
	case dice.ErrInvalidDie:
		status, code = http.StatusBadRequest, "INVALID_DICE"
	case positionid.ErrInvalidPositionID:
		status, code = http.StatusBadRequest, "INVALID_POSITION"
	case game.ErrGameOver:
		status, code = http.StatusConflict, "GAME_OVER"
	case game.ErrAlreadyRolled:
		status, code = http.StatusConflict, "ALREADY_ROLLED"
	case game.ErrNotRolled:
		status, code = http.StatusConflict, "NOT_ROLLED"
	case game.ErrNoSelection:
		status, code = http.StatusConflict, "NO_SELECTION"
	case game.ErrMovesAvailable:
		status, code = http.StatusConflict, "MOVES_AVAILABLE"
	case game.ErrCannotSelect:
		status, code = http.StatusUnprocessableEntity, "CANNOT_SELECT"
	case game.ErrUnreachable:
		status, code = http.StatusUnprocessableEntity, "UNREACHABLE"
	}
	return &apiError{status: status, code: code, msg: err.Error()}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

func writeAPIError(w http.ResponseWriter, err error) {
	ae := toAPIError(err)
	if ae.status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	writeError(w, ae.status, ae.msg, ae.code)
}

// decodeBody reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return &apiError{status: http.StatusBadRequest, code: "INVALID_JSON", msg: "invalid JSON"}
	}
	return nil
}

// acquireFast takes a fast worker slot. It writes the busy response and
// returns false when none is available.
func (h *Handlers) acquireFast(w http.ResponseWriter, r *http.Request) bool {
	if h.pool == nil {
		return true
	}
	if err := h.pool.AcquireFast(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
		return false
	}
	return true
}

func (h *Handlers) releaseFast() {
	if h.pool != nil {
		h.pool.ReleaseFast()
	}
}

// ============================================================================
// Game operations shared by HTTP and WebSocket
// ============================================================================

func parseGameID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &apiError{status: http.StatusBadRequest, code: "INVALID_ID", msg: "invalid game id"}
	}
	return id, nil
}

func (h *Handlers) createGame(ctx context.Context, req CreateGameRequest) (game.Snapshot, error) {
	var (
		g   *game.Game
		err error
	)
	if req.Position == "" {
		g, err = game.New(req.Players[0], req.Players[1], nil)
		if err != nil {
			return game.Snapshot{}, err
		}
	} else {
		if req.OnRoll != int(rules.SideA) && req.OnRoll != int(rules.SideB) {
			return game.Snapshot{}, &apiError{status: http.StatusBadRequest, code: "INVALID_SIDE", msg: "on_roll must be 0 or 1"}
		}
		onRoll := rules.Side(req.OnRoll)
		board, err := positionid.Decode(req.Position, onRoll)
		if err != nil {
			return game.Snapshot{}, err
		}
		if g, err = game.FromBoard(board, onRoll, nil); err != nil {
			return game.Snapshot{}, err
		}
		for i, name := range req.Players {
			if name == "" {
				continue
			}
			if _, err := g.SetPlayerName(rules.Side(i), name); err != nil {
				return game.Snapshot{}, err
			}
		}
	}

	snap := g.Snapshot()
	h.games.Add(g)
	h.saveGame(ctx, snap)
	return snap, nil
}

// loadGame makes sure id is in the registry, resuming it from the journal if
// needed.
func (h *Handlers) loadGame(ctx context.Context, id uuid.UUID) error {
	if h.games.Has(id) || h.journal == nil {
		return nil
	}

	h.restoreMu.Lock()
	defer h.restoreMu.Unlock()
	if h.games.Has(id) {
		return nil
	}

	rec, err := h.journal.LoadGame(ctx, id.String())
	if err != nil {
		return err
	}
	board, err := positionid.Decode(rec.PositionID, rec.Turn)
	if err != nil {
		return errors.WithMessagef(err, "stored game %s", id)
	}
	g, err := game.Resume(id, rec.Players, board, rec.Turn, rec.Plies, nil)
	if err != nil {
		return errors.WithMessagef(err, "stored game %s", id)
	}
	h.games.Add(g)
	log.Printf("game %s resumed from journal", id)
	return nil
}

// withGame runs fn as one transaction on the game named by rawID.
func (h *Handlers) withGame(ctx context.Context, rawID string, fn func(*game.Game) error) error {
	id, err := parseGameID(rawID)
	if err != nil {
		return err
	}
	if err := h.loadGame(ctx, id); err != nil {
		return err
	}
	return h.games.Do(id, fn)
}

func (h *Handlers) getGame(ctx context.Context, rawID string) (game.Snapshot, error) {
	id, err := parseGameID(rawID)
	if err != nil {
		return game.Snapshot{}, err
	}
	if err := h.loadGame(ctx, id); err != nil {
		return game.Snapshot{}, err
	}
	var snap game.Snapshot
	err = h.games.View(id, func(g *game.Game) { snap = g.Snapshot() })
	return snap, err
}

func (h *Handlers) roll(ctx context.Context, rawID string, req RollRequest) (*RollResponse, error) {
	var resp RollResponse
	err := h.withGame(ctx, rawID, func(g *game.Game) error {
		var (
			res game.RollResult
			err error
		)
		switch {
		case req.Dice != nil:
			res, err = g.SetRoll(req.Dice[0], req.Dice[1])
		case req.Seed != 0:
			a, b := dice.Roll(rand.New(rand.NewSource(req.Seed)))
			res, err = g.SetRoll(a, b)
		default:
			res, err = g.Roll()
		}
		if err != nil {
			return err
		}
		resp = RollResponse{Dice: res.Dice, Passed: res.Passed, Game: g.Snapshot()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.saveGame(ctx, resp.Game)
	return &resp, nil
}

func (h *Handlers) selectRail(ctx context.Context, rawID string, rail int) (*SelectResponse, error) {
	var resp SelectResponse
	err := h.withGame(ctx, rawID, func(g *game.Game) error {
		dests, err := g.Select(rail)
		if err != nil {
			return err
		}
		resp = SelectResponse{Rail: rail, Destinations: destinationsToResponse(dests), Game: g.Snapshot()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *Handlers) deselect(ctx context.Context, rawID string) (game.Snapshot, error) {
	var snap game.Snapshot
	err := h.withGame(ctx, rawID, func(g *game.Game) error {
		g.Deselect()
		snap = g.Snapshot()
		return nil
	})
	return snap, err
}

func (h *Handlers) play(ctx context.Context, rawID string, rail int) (*PlayResponse, error) {
	var resp *PlayResponse
	err := h.withGame(ctx, rawID, func(g *game.Game) error {
		ply := g.Plies()
		rolled, _ := g.Dice()
		res, err := g.Play(rail)
		if err != nil {
			return err
		}
		resp = playToResponse(res, g.Snapshot())

		// Journal under the game's lock so rows keep the order of play.
		h.journalMove(ctx, store.MoveRecord{
			GameID:     resp.Game.ID,
			Ply:        ply,
			Side:       resp.Side,
			From:       resp.From,
			To:         resp.To,
			Rolled:     rolled,
			Dice:       resp.DiceUsed,
			Captures:   resp.Captures,
			PositionID: resp.Game.PositionID,
		})
		h.saveGame(ctx, resp.Game)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (h *Handlers) pass(ctx context.Context, rawID string) (game.Snapshot, error) {
	var snap game.Snapshot
	err := h.withGame(ctx, rawID, func(g *game.Game) error {
		if err := g.Pass(); err != nil {
			return err
		}
		snap = g.Snapshot()
		return nil
	})
	if err != nil {
		return game.Snapshot{}, err
	}
	h.saveGame(ctx, snap)
	return snap, nil
}

func (h *Handlers) moves(ctx context.Context, rawID string) (*MovesResponse, error) {
	if h.journal == nil {
		return nil, &apiError{status: http.StatusNotImplemented, code: "JOURNAL_DISABLED", msg: "journal is not configured"}
	}
	id, err := parseGameID(rawID)
	if err != nil {
		return nil, err
	}
	if _, err := h.journal.LoadGame(ctx, id.String()); err != nil {
		return nil, err
	}
	records, err := h.journal.Moves(ctx, id.String())
	if err != nil {
		return nil, err
	}
	return movesToResponse(id.String(), records), nil
}

// record rebuilds a MAT game record from the journal.
func (h *Handlers) record(ctx context.Context, rawID string) (*match.Game, error) {
	if h.journal == nil {
		return nil, &apiError{status: http.StatusNotImplemented, code: "JOURNAL_DISABLED", msg: "journal is not configured"}
	}
	id, err := parseGameID(rawID)
	if err != nil {
		return nil, err
	}
	header, err := h.journal.LoadGame(ctx, id.String())
	if err != nil {
		return nil, err
	}
	records, err := h.journal.Moves(ctx, id.String())
	if err != nil {
		return nil, err
	}

	rec := match.NewGame(header.Players[rules.SideA], header.Players[rules.SideB])
	rec.Date = header.CreatedAt.Format("2006-01-02")
	for _, m := range records {
		rec.AddPlay(m.Ply, m.Side, m.Rolled, match.Play{From: m.From, To: m.To, Dice: m.Dice})
	}
	if header.Winner != nil {
		rec.SetWinner(*header.Winner)
	}
	return rec, nil
}

func simulateOptions(req SimulateRequest) (sim.Options, error) {
	if req.Games < 0 || req.Games > MaxSimulateGames {
		return sim.Options{}, &apiError{
			status: http.StatusBadRequest,
			code:   "INVALID_GAMES",
			msg:    "games must be between 1 and 10000",
		}
	}
	return sim.Options{Games: req.Games, Seed: req.Seed, Workers: req.Workers, MaxTurns: req.MaxTurns}, nil
}

// saveGame journals the game header. Failures are logged only.
func (h *Handlers) saveGame(ctx context.Context, snap game.Snapshot) {
	if h.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if err := h.journal.SaveGame(ctx, snap); err != nil {
		log.Printf("journal: %v", err)
	}
}

func (h *Handlers) journalMove(ctx context.Context, m store.MoveRecord) {
	if h.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if _, err := h.journal.AppendMove(ctx, m); err != nil {
		log.Printf("journal: %v", err)
	}
}

// ============================================================================
// HTTP handlers
// ============================================================================

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Games:   h.games.Len(),
		Journal: h.journal != nil,
	}

	// Include pool stats if available
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateGame handles POST /api/games
func (h *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	if !h.acquireFast(w, r) {
		return
	}
	defer h.releaseFast()

	var req CreateGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeAPIError(w, err)
		return
	}
	snap, err := h.createGame(r.Context(), req)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// GetGame handles GET /api/games/{id}
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	if !h.acquireFast(w, r) {
		return
	}
	defer h.releaseFast()

	snap, err := h.getGame(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Roll handles POST /api/games/{id}/roll
func (h *Handlers) Roll(w http.ResponseWriter, r *http.Request) {
	if !h.acquireFast(w, r) {
		return
	}
	defer h.releaseFast()

	var req RollRequest
	if err := decodeBody(r, &req); err != nil {
		writeAPIError(w, err)
		return
	}
	resp, err := h.roll(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Select handles POST /api/games/{id}/select
func (h *Handlers) Select(w http.ResponseWriter, r *http.Request) {
	if !h.acquireFast(w, r) {
		return
	}
	defer h.releaseFast()

	var req RailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	resp, err := h.selectRail(r.Context(), r.PathValue("id"), req.Rail)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Deselect handles POST /api/games/{id}/deselect
func (h *Handlers) Deselect(w http.ResponseWriter, r *http.Request) {
	if !h.acquireFast(w, r) {
		return
	}
	defer h.releaseFast()

	snap, err := h.deselect(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Play handles POST /api/games/{id}/play
func (h *Handlers) Play(w http.ResponseWriter, r *http.Request) {
	if !h.acquireFast(w, r) {
		return
	}
	defer h.releaseFast()

	var req RailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	resp, err := h.play(r.Context(), r.PathValue("id"), req.Rail)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Pass handles POST /api/games/{id}/pass
func (h *Handlers) Pass(w http.ResponseWriter, r *http.Request) {
	if !h.acquireFast(w, r) {
		return
	}
	defer h.releaseFast()

	snap, err := h.pass(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Moves handles GET /api/games/{id}/moves
func (h *Handlers) Moves(w http.ResponseWriter, r *http.Request) {
	if !h.acquireFast(w, r) {
		return
	}
	defer h.releaseFast()

	resp, err := h.moves(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// MAT handles GET /api/games/{id}/mat
func (h *Handlers) MAT(w http.ResponseWriter, r *http.Request) {
	if !h.acquireFast(w, r) {
		return
	}
	defer h.releaseFast()

	rec, err := h.record(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := match.ExportMAT(w, rec); err != nil {
		log.Printf("mat export: %v", err)
	}
}

// Simulate handles POST /api/simulate
func (h *Handlers) Simulate(w http.ResponseWriter, r *http.Request) {
	// Acquire slow worker slot if pool is configured
	if h.pool != nil {
		if err := h.pool.AcquireSlow(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	var req SimulateRequest
	if err := decodeBody(r, &req); err != nil {
		writeAPIError(w, err)
		return
	}
	opts, err := simulateOptions(req)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	result, err := sim.Run(r.Context(), opts, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "SIMULATION_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
