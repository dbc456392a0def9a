// Package store journals games and their committed moves in SQLite.
package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/yourusername/bgrules/internal/store/migrations"
	"github.com/yourusername/bgrules/pkg/game"
	"github.com/yourusername/bgrules/pkg/rules"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a game is not in the journal.
	ErrNotFound = errors.New("game not found in journal")
	// ErrNotConfigured is returned by methods on a nil or closed Store.
	ErrNotConfigured = errors.New("storage is not configured")
)

// Store persists games in SQLite.
type Store struct {
	db *sql.DB
}

// GameRecord is the stored header of a game.
type GameRecord struct {
	ID         string
	Players    [2]string
	Turn       rules.Side
	Phase      string
	Winner     *rules.Side
	PositionID string
	Plies      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MoveRecord is one committed play.
type MoveRecord struct {
	GameID     string
	Seq        int
	Ply        int
	Side       rules.Side
	From       int
	To         int
	Rolled     [2]int // Dice thrown for the turn
	Dice       []int  // Dice used by this play
	Captures   int
	PositionID string
	CreatedAt  time.Time
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the SQLite journal at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveGame inserts or updates the header of the game in snap.
func (s *Store) SaveGame(ctx context.Context, snap game.Snapshot) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	var winner sql.NullInt64
	if snap.Winner != nil {
		winner = sql.NullInt64{Int64: int64(*snap.Winner), Valid: true}
	}
	now := toMillis(time.Now())

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (
		   id, player_a, player_b, turn, phase, winner,
		   position_id, plies, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   player_a = excluded.player_a,
		   player_b = excluded.player_b,
		   turn = excluded.turn,
		   phase = excluded.phase,
		   winner = excluded.winner,
		   position_id = excluded.position_id,
		   plies = excluded.plies,
		   updated_at = excluded.updated_at`,
		snap.ID,
		snap.Players[rules.SideA].Name,
		snap.Players[rules.SideB].Name,
		int(snap.Turn),
		snap.Phase,
		winner,
		snap.PositionID,
		snap.Plies,
		now,
		now,
	)
	return errors.Wrapf(err, "save game %s", snap.ID)
}

// LoadGame returns the stored header of game id.
func (s *Store) LoadGame(ctx context.Context, id string) (GameRecord, error) {
	if err := s.ready(ctx); err != nil {
		return GameRecord{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, player_a, player_b, turn, phase, winner,
		        position_id, plies, created_at, updated_at
		   FROM games
		  WHERE id = ?`,
		id,
	)

	var (
		rec       GameRecord
		turn      int
		winner    sql.NullInt64
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&rec.ID,
		&rec.Players[0],
		&rec.Players[1],
		&turn,
		&rec.Phase,
		&winner,
		&rec.PositionID,
		&rec.Plies,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return GameRecord{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	if err != nil {
		return GameRecord{}, errors.Wrapf(err, "load game %s", id)
	}
	rec.Turn = rules.Side(turn)
	if winner.Valid {
		w := rules.Side(winner.Int64)
		rec.Winner = &w
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

// AppendMove adds m after the last recorded move of its game and returns the
// assigned sequence number.
func (s *Store) AppendMove(ctx context.Context, m MoveRecord) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var seq int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO moves (
		   game_id, seq, ply, side, from_rail, to_rail,
		   rolled, dice, captures, position_id, created_at
		 )
		 SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?, ?, ?, ?, ?
		   FROM moves
		  WHERE game_id = ?
		 RETURNING seq`,
		m.GameID,
		m.Ply,
		int(m.Side),
		m.From,
		m.To,
		formatDice(m.Rolled[:]),
		formatDice(m.Dice),
		m.Captures,
		m.PositionID,
		toMillis(createdAt),
		m.GameID,
	).Scan(&seq)
	if err != nil {
		return 0, errors.Wrapf(err, "append move to game %s", m.GameID)
	}
	return seq, nil
}

// Moves returns the journal of game id in play order.
func (s *Store) Moves(ctx context.Context, id string) ([]MoveRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, seq, ply, side, from_rail, to_rail,
		        rolled, dice, captures, position_id, created_at
		   FROM moves
		  WHERE game_id = ?
		  ORDER BY seq ASC`,
		id,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "list moves of game %s", id)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var (
			m          MoveRecord
			side       int
			rolledText string
			diceText   string
			createdAt  int64
		)
		if err := rows.Scan(
			&m.GameID,
			&m.Seq,
			&m.Ply,
			&side,
			&m.From,
			&m.To,
			&rolledText,
			&diceText,
			&m.Captures,
			&m.PositionID,
			&createdAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan move")
		}
		m.Side = rules.Side(side)
		rolled, err := parseDice(rolledText)
		if err != nil || len(rolled) != 2 {
			return nil, errors.Errorf("move %d of game %s: bad roll %q", m.Seq, id, rolledText)
		}
		m.Rolled = [2]int{rolled[0], rolled[1]}
		if m.Dice, err = parseDice(diceText); err != nil {
			return nil, errors.Wrapf(err, "move %d of game %s", m.Seq, id)
		}
		m.CreatedAt = fromMillis(createdAt)
		moves = append(moves, m)
	}
	return moves, errors.Wrap(rows.Err(), "iterate moves")
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return ErrNotConfigured
	}
	return nil
}

func formatDice(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func parseDice(text string) ([]int, error) {
	if text == "" {
		return nil, nil
	}
	parts := strings.Split(text, ",")
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Wrapf(err, "dice %q", text)
		}
		values[i] = v
	}
	return values, nil
}
