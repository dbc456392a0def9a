package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourusername/bgrules/internal/store"
	"github.com/yourusername/bgrules/pkg/game"
	"github.com/yourusername/bgrules/pkg/rules"
	"github.com/yourusername/bgrules/pkg/sim"
)

const startPosition = "4HPwATDgc/ABMA"

func newTestServer(t *testing.T, journal *store.Store) *httptest.Server {
	t.Helper()
	srv := NewServer(game.NewRegistry(), journal, DefaultConfig(), "test")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func openJournal(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// call sends body (a string is sent verbatim) and decodes the reply into out.
func call(t *testing.T, ts *httptest.Server, method, path string, body, out interface{}) int {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func createGame(t *testing.T, ts *httptest.Server) game.Snapshot {
	t.Helper()
	var snap game.Snapshot
	if status := call(t, ts, "POST", "/api/games", nil, &snap); status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	return snap
}

func TestHealthHandler(t *testing.T) {
	h := NewHandlers(game.NewRegistry(), nil, "test-version")

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if health.Status != "ok" || health.Version != "test-version" {
		t.Errorf("health = %+v", health)
	}
	if health.Journal || health.Pool != nil {
		t.Errorf("bare handlers report journal=%v pool=%v", health.Journal, health.Pool)
	}
}

func TestHealthThroughServer(t *testing.T) {
	ts := newTestServer(t, nil)
	createGame(t, ts)

	var health HealthResponse
	if status := call(t, ts, "GET", "/api/health", nil, &health); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if health.Games != 1 || health.Pool == nil || health.Pool.MaxFast != 100 {
		t.Errorf("health = %+v", health)
	}
}

func TestServerRunStopsOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 0
	srv := NewServer(game.NewRegistry(), nil, cfg, "test")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCreateGameHandler(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{name: "defaults", body: nil, wantStatus: http.StatusCreated},
		{name: "names", body: CreateGameRequest{Players: [2]string{"ann", "bob"}}, wantStatus: http.StatusCreated},
		{name: "position", body: CreateGameRequest{Position: startPosition, OnRoll: 1}, wantStatus: http.StatusCreated},
		{name: "duplicate names", body: CreateGameRequest{Players: [2]string{"ann", "ANN"}}, wantStatus: http.StatusBadRequest, wantCode: "DUPLICATE_NAME"},
		{name: "short name", body: CreateGameRequest{Players: [2]string{"al", "bob"}}, wantStatus: http.StatusBadRequest, wantCode: "INVALID_NAME"},
		{name: "bad position", body: CreateGameRequest{Position: "invalid!!!"}, wantStatus: http.StatusBadRequest, wantCode: "INVALID_POSITION"},
		{name: "bad side", body: CreateGameRequest{Position: startPosition, OnRoll: 2}, wantStatus: http.StatusBadRequest, wantCode: "INVALID_SIDE"},
		{name: "bad json", body: "{not json", wantStatus: http.StatusBadRequest, wantCode: "INVALID_JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw json.RawMessage
			status := call(t, ts, "POST", "/api/games", tt.body, &raw)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", status, tt.wantStatus, raw)
			}
			if tt.wantCode != "" {
				var er ErrorResponse
				json.Unmarshal(raw, &er)
				if er.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", er.Code, tt.wantCode)
				}
				return
			}
			var snap game.Snapshot
			json.Unmarshal(raw, &snap)
			if snap.ID == "" || snap.PositionID != startPosition || len(snap.Points) != rules.NumPoints {
				t.Errorf("snapshot = %+v", snap)
			}
		})
	}
}

func TestPlayTurnHandlers(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createGame(t, ts).ID
	base := "/api/games/" + id

	var roll RollResponse
	if status := call(t, ts, "POST", base+"/roll", RollRequest{Dice: &[2]int{3, 4}}, &roll); status != http.StatusOK {
		t.Fatalf("roll status = %d", status)
	}
	if roll.Dice != [2]int{3, 4} || roll.Passed || roll.Game.Phase != "moving" {
		t.Errorf("roll = %+v", roll)
	}

	var sel SelectResponse
	if status := call(t, ts, "POST", base+"/select", RailRequest{Rail: 1}, &sel); status != http.StatusOK {
		t.Fatalf("select status = %d", status)
	}
	want := []Destination{{Rail: 4, Dice: []int{3}}, {Rail: 5, Dice: []int{4}}}
	if !reflect.DeepEqual(sel.Destinations, want) {
		t.Errorf("destinations = %+v, want %+v", sel.Destinations, want)
	}
	if sel.Game.Selected == nil || *sel.Game.Selected != 1 {
		t.Errorf("selected = %v", sel.Game.Selected)
	}

	var play PlayResponse
	if status := call(t, ts, "POST", base+"/play", RailRequest{Rail: 5}, &play); status != http.StatusOK {
		t.Fatalf("play status = %d", status)
	}
	if play.From != 1 || play.To != 5 || play.TurnOver || !reflect.DeepEqual(play.Remaining, []int{3}) {
		t.Errorf("play = %+v", play)
	}

	call(t, ts, "POST", base+"/select", RailRequest{Rail: 12}, nil)
	if status := call(t, ts, "POST", base+"/play", RailRequest{Rail: 15}, &play); status != http.StatusOK {
		t.Fatalf("second play status = %d", status)
	}
	if !play.TurnOver || play.Game.Turn != rules.SideB || play.Game.Phase != "awaiting_roll" {
		t.Errorf("after turn: %+v", play)
	}

	var snap game.Snapshot
	call(t, ts, "GET", base, nil, &snap)
	if snap.Plies != 1 || snap.Points[4].Count != 1 || snap.Points[14].Count != 1 {
		t.Errorf("snapshot after turn = %+v", snap)
	}
}

func TestDeselectHandler(t *testing.T) {
	ts := newTestServer(t, nil)
	base := "/api/games/" + createGame(t, ts).ID

	call(t, ts, "POST", base+"/roll", RollRequest{Dice: &[2]int{3, 4}}, nil)
	call(t, ts, "POST", base+"/select", RailRequest{Rail: 1}, nil)

	var snap game.Snapshot
	if status := call(t, ts, "POST", base+"/deselect", nil, &snap); status != http.StatusOK {
		t.Fatalf("deselect status = %d", status)
	}
	if snap.Selected != nil || snap.Points[3].Mark != "" {
		t.Errorf("selection survived deselect: %+v", snap)
	}
}

func TestRollWithSeed(t *testing.T) {
	ts := newTestServer(t, nil)
	var a, b RollResponse
	call(t, ts, "POST", "/api/games/"+createGame(t, ts).ID+"/roll", RollRequest{Seed: 99}, &a)
	call(t, ts, "POST", "/api/games/"+createGame(t, ts).ID+"/roll", RollRequest{Seed: 99}, &b)
	if a.Dice != b.Dice {
		t.Errorf("same seed rolled %v and %v", a.Dice, b.Dice)
	}
}

func TestGameErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	base := "/api/games/" + createGame(t, ts).ID

	steps := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"unknown game", "GET", "/api/games/00000000-0000-0000-0000-000000000001", nil, http.StatusNotFound, "GAME_NOT_FOUND"},
		{"bad id", "GET", "/api/games/nope", nil, http.StatusBadRequest, "INVALID_ID"},
		{"play before roll", "POST", base + "/play", RailRequest{Rail: 4}, http.StatusConflict, "NOT_ROLLED"},
		{"bad dice", "POST", base + "/roll", RollRequest{Dice: &[2]int{0, 7}}, http.StatusBadRequest, "INVALID_DICE"},
		{"roll", "POST", base + "/roll", RollRequest{Dice: &[2]int{3, 4}}, http.StatusOK, ""},
		{"roll twice", "POST", base + "/roll", RollRequest{Dice: &[2]int{1, 2}}, http.StatusConflict, "ALREADY_ROLLED"},
		{"pass with moves", "POST", base + "/pass", nil, http.StatusConflict, "MOVES_AVAILABLE"},
		{"play without selection", "POST", base + "/play", RailRequest{Rail: 4}, http.StatusConflict, "NO_SELECTION"},
		{"select empty point", "POST", base + "/select", RailRequest{Rail: 2}, http.StatusUnprocessableEntity, "CANNOT_SELECT"},
		{"select", "POST", base + "/select", RailRequest{Rail: 1}, http.StatusOK, ""},
		{"play blocked point", "POST", base + "/play", RailRequest{Rail: 8}, http.StatusUnprocessableEntity, "UNREACHABLE"},
		{"select bad json", "POST", base + "/select", "rail", http.StatusBadRequest, "INVALID_JSON"},
	}

	for _, s := range steps {
		var raw json.RawMessage
		status := call(t, ts, s.method, s.path, s.body, &raw)
		if status != s.wantStatus {
			t.Errorf("%s: status = %d, want %d (%s)", s.name, status, s.wantStatus, raw)
			continue
		}
		if s.wantCode != "" {
			var er ErrorResponse
			json.Unmarshal(raw, &er)
			if er.Code != s.wantCode {
				t.Errorf("%s: code = %q, want %q", s.name, er.Code, s.wantCode)
			}
		}
	}
}

func TestJournalAndResume(t *testing.T) {
	journal := openJournal(t)
	ts := newTestServer(t, journal)
	created := createGame(t, ts)
	base := "/api/games/" + created.ID

	call(t, ts, "POST", base+"/roll", RollRequest{Dice: &[2]int{3, 4}}, nil)
	call(t, ts, "POST", base+"/select", RailRequest{Rail: 1}, nil)
	var play PlayResponse
	call(t, ts, "POST", base+"/play", RailRequest{Rail: 5}, &play)

	var moves MovesResponse
	if status := call(t, ts, "GET", base+"/moves", nil, &moves); status != http.StatusOK {
		t.Fatalf("moves status = %d", status)
	}
	if len(moves.Moves) != 1 {
		t.Fatalf("journal has %d moves, want 1", len(moves.Moves))
	}
	m := moves.Moves[0]
	if m.From != 1 || m.To != 5 || !reflect.DeepEqual(m.Dice, []int{4}) || m.PositionID != play.Game.PositionID {
		t.Errorf("journaled move = %+v", m)
	}

	// A fresh server sharing the journal resumes the game on first access.
	restarted := newTestServer(t, journal)
	var snap game.Snapshot
	if status := call(t, restarted, "GET", base, nil, &snap); status != http.StatusOK {
		t.Fatalf("resume status = %d", status)
	}
	if snap.ID != created.ID || snap.PositionID != play.Game.PositionID || snap.Phase != "awaiting_roll" {
		t.Errorf("resumed snapshot = %+v", snap)
	}
	if snap.Players[0].Name != "WHITE" || snap.Points[4].Count != 1 {
		t.Errorf("resumed players/points = %v %+v", snap.Players, snap.Points[4])
	}
}

func TestJournalOrderUnderConcurrentPlay(t *testing.T) {
	journal := openJournal(t)
	h := NewHandlers(game.NewRegistry(), journal, "test")
	ctx := context.Background()
	created, err := h.createGame(ctx, CreateGameRequest{})
	if err != nil {
		t.Fatalf("createGame: %v", err)
	}
	id := created.ID

	// Several clients race on one game; failed requests are expected.
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				snap, err := h.getGame(ctx, id)
				if err != nil || snap.Phase == "finished" {
					return
				}
				if snap.Phase == "awaiting_roll" {
					h.roll(ctx, id, RollRequest{})
					continue
				}
				if len(snap.Movable) == 0 {
					h.pass(ctx, id)
					continue
				}
				sel, err := h.selectRail(ctx, id, snap.Movable[0])
				if err != nil || len(sel.Destinations) == 0 {
					continue
				}
				h.play(ctx, id, sel.Destinations[0].Rail)
			}
		}()
	}
	wg.Wait()

	moves, err := journal.Moves(ctx, id)
	if err != nil {
		t.Fatalf("Moves: %v", err)
	}
	if len(moves) == 0 {
		t.Fatal("no moves journaled")
	}
	for i, m := range moves {
		if m.Seq != i+1 {
			t.Fatalf("move %d has seq %d", i, m.Seq)
		}
		if i == 0 {
			continue
		}
		prev := moves[i-1]
		if m.Ply < prev.Ply || (m.Ply == prev.Ply && m.Side != prev.Side) {
			t.Fatalf("seq %d (ply %d side %s) follows ply %d side %s", m.Seq, m.Ply, m.Side, prev.Ply, prev.Side)
		}
	}
}

func TestMovesWithoutJournal(t *testing.T) {
	ts := newTestServer(t, nil)
	var er ErrorResponse
	status := call(t, ts, "GET", "/api/games/"+createGame(t, ts).ID+"/moves", nil, &er)
	if status != http.StatusNotImplemented || er.Code != "JOURNAL_DISABLED" {
		t.Errorf("status = %d code = %q", status, er.Code)
	}
}

func TestMATExport(t *testing.T) {
	ts := newTestServer(t, openJournal(t))
	base := "/api/games/" + createGame(t, ts).ID

	call(t, ts, "POST", base+"/roll", RollRequest{Dice: &[2]int{3, 4}}, nil)
	call(t, ts, "POST", base+"/select", RailRequest{Rail: 1}, nil)
	call(t, ts, "POST", base+"/play", RailRequest{Rail: 5}, nil)
	call(t, ts, "POST", base+"/select", RailRequest{Rail: 12}, nil)
	if status := call(t, ts, "POST", base+"/play", RailRequest{Rail: 15}, nil); status != http.StatusOK {
		t.Fatalf("second play status = %d", status)
	}

	resp, err := ts.Client().Get(ts.URL + base + "/mat")
	if err != nil {
		t.Fatalf("GET mat: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		t.Fatalf("status = %d content-type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	for _, want := range []string{` ; [Player 1 "WHITE"]`, "  1) 34: 24/20 13/10"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("mat lacks %q:\n%s", want, body)
		}
	}
}

func TestMATWithoutJournal(t *testing.T) {
	ts := newTestServer(t, nil)
	var er ErrorResponse
	status := call(t, ts, "GET", "/api/games/"+createGame(t, ts).ID+"/mat", nil, &er)
	if status != http.StatusNotImplemented || er.Code != "JOURNAL_DISABLED" {
		t.Errorf("status = %d code = %q", status, er.Code)
	}
}

func TestSimulateHandler(t *testing.T) {
	ts := newTestServer(t, nil)

	var result sim.Result
	if status := call(t, ts, "POST", "/api/simulate", SimulateRequest{Games: 4, Seed: 1, Workers: 2}, &result); status != http.StatusOK {
		t.Fatalf("simulate status = %d", status)
	}
	if result.Games != 4 || result.WinsA+result.WinsB+result.Unfinished != 4 {
		t.Errorf("result = %+v", result)
	}

	var er ErrorResponse
	if status := call(t, ts, "POST", "/api/simulate", SimulateRequest{Games: MaxSimulateGames + 1}, &er); status != http.StatusBadRequest {
		t.Errorf("oversized simulate status = %d", status)
	}
}

// readEvent reads one SSE event.
func readEvent(t *testing.T, r *bufio.Reader) (event, data string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestEventsStream(t *testing.T) {
	ts := newTestServer(t, nil)
	base := "/api/games/" + createGame(t, ts).ID

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+base+"/events", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	event, data := readEvent(t, r)
	var snap game.Snapshot
	json.Unmarshal([]byte(data), &snap)
	if event != "snapshot" || snap.Phase != "awaiting_roll" {
		t.Fatalf("first event = %s %s", event, data)
	}

	call(t, ts, "POST", base+"/roll", RollRequest{Dice: &[2]int{6, 5}}, nil)
	event, data = readEvent(t, r)
	json.Unmarshal([]byte(data), &snap)
	if event != "snapshot" || snap.Phase != "moving" || snap.Dice != [2]int{6, 5} {
		t.Errorf("update event = %s %s", event, data)
	}
}

func TestEventsUnknownGame(t *testing.T) {
	ts := newTestServer(t, nil)
	var er ErrorResponse
	status := call(t, ts, "GET", "/api/games/00000000-0000-0000-0000-000000000001/events", nil, &er)
	if status != http.StatusNotFound {
		t.Errorf("status = %d", status)
	}
}

func TestSimulateSSE(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := ts.Client().Get(ts.URL + "/api/simulate/stream?games=3&seed=5&workers=1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"event: progress", "event: result", "event: done"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("stream lacks %q:\n%s", want, body)
		}
	}
}

// wsReply mirrors WSResponse with the payload left raw.
type wsReply struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func dialWS(t *testing.T) *websocket.Conn {
	t.Helper()
	h := NewHandlers(game.NewRegistry(), nil, "1.0.0")
	server := httptest.NewServer(http.HandlerFunc(h.WebSocket))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("Status = %d, want %d", resp.StatusCode, http.StatusSwitchingProtocols)
	}
	return ws
}

func wsCall(t *testing.T, ws *websocket.Conn, typ, id string, payload interface{}) wsReply {
	t.Helper()
	msg := WSMessage{Type: typ, ID: id}
	if payload != nil {
		data, _ := json.Marshal(payload)
		msg.Payload = data
	}
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply wsReply
	if err := ws.ReadJSON(&reply); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if reply.ID != id {
		t.Errorf("reply ID = %q, want %q", reply.ID, id)
	}
	return reply
}

func TestWebSocketPing(t *testing.T) {
	ws := dialWS(t)
	if reply := wsCall(t, ws, "ping", "test-ping-1", nil); reply.Type != "pong" {
		t.Errorf("Response type = %q, want %q", reply.Type, "pong")
	}
}

func TestWebSocketGame(t *testing.T) {
	ws := dialWS(t)

	reply := wsCall(t, ws, "create", "c1", CreateGameRequest{Players: [2]string{"ann", "bob"}})
	if reply.Type != "result" {
		t.Fatalf("create reply = %+v", reply)
	}
	var snap game.Snapshot
	json.Unmarshal(reply.Payload, &snap)
	if snap.Players[0].Name != "ANN" {
		t.Errorf("players = %v", snap.Players)
	}

	reply = wsCall(t, ws, "roll", "r1", WSGamePayload{GameID: snap.ID, Dice: &[2]int{6, 5}})
	if reply.Type != "result" {
		t.Fatalf("roll reply = %+v", reply)
	}

	reply = wsCall(t, ws, "select", "s1", WSGamePayload{GameID: snap.ID, Rail: 1})
	var sel SelectResponse
	json.Unmarshal(reply.Payload, &sel)
	if reply.Type != "result" || len(sel.Destinations) == 0 {
		t.Fatalf("select reply = %+v", reply)
	}

	reply = wsCall(t, ws, "play", "p1", WSGamePayload{GameID: snap.ID, Rail: 12})
	var play PlayResponse
	json.Unmarshal(reply.Payload, &play)
	if reply.Type != "result" || !play.TurnOver || !reflect.DeepEqual(play.DiceUsed, []int{6, 5}) {
		t.Errorf("play reply = %+v (%s)", play, reply.Error)
	}

	reply = wsCall(t, ws, "get", "g1", WSGamePayload{GameID: snap.ID})
	json.Unmarshal(reply.Payload, &snap)
	if snap.Turn != rules.SideB || snap.Points[11].Count != 6 {
		t.Errorf("after play: turn=%s rail12=%+v", snap.Turn, snap.Points[11])
	}
}

func TestWSClientSendAfterWriterStops(t *testing.T) {
	c := newWSClient(context.Background(), nil, NewHandlers(game.NewRegistry(), nil, "test"))
	for i := 0; i < cap(c.sendChan); i++ {
		if !c.send(WSResponse{Type: "pong"}) {
			t.Fatalf("send %d failed with room in the queue", i)
		}
	}
	close(c.done)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		c.handleMessage(WSMessage{Type: "ping", ID: "late"})
		c.handleMessage(WSMessage{Type: "bogus"})
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("handleMessage blocked on a full queue after the writer stopped")
	}
	if c.send(WSResponse{Type: "pong"}) {
		t.Error("send reported success after the writer stopped")
	}
}

func TestWebSocketErrors(t *testing.T) {
	ws := dialWS(t)

	tests := []struct {
		typ      string
		payload  interface{}
		wantCode string
	}{
		{"bogus", nil, ""},
		{"roll", WSGamePayload{GameID: "nope"}, "INVALID_ID"},
		{"get", WSGamePayload{GameID: "00000000-0000-0000-0000-000000000001"}, "GAME_NOT_FOUND"},
		{"create", CreateGameRequest{Position: "bad"}, "INVALID_POSITION"},
		{"simulate", SimulateRequest{Games: -1}, "INVALID_GAMES"},
	}
	for i, tt := range tests {
		reply := wsCall(t, ws, tt.typ, string(rune('a'+i)), tt.payload)
		if reply.Type != "error" || reply.Code != tt.wantCode {
			t.Errorf("%s: reply = %+v, want error %q", tt.typ, reply, tt.wantCode)
		}
	}
}
