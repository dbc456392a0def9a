package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/yourusername/bgrules/pkg/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // create, get, roll, select, deselect, play, pass, simulate, ping
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string      `json:"type"`              // Response type: "result", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
	Code    string      `json:"code,omitempty"`    // Error code, as in ErrorResponse
}

// WSGamePayload addresses an operation on an existing game.
type WSGamePayload struct {
	GameID string  `json:"game_id"`
	Rail   int     `json:"rail,omitempty"` // select and play
	Dice   *[2]int `json:"dice,omitempty"` // roll
	Seed   int64   `json:"seed,omitempty"` // roll
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse
	done     chan struct{} // closed when writePump stops
	ctx      context.Context
}

func newWSClient(ctx context.Context, conn *websocket.Conn, h *Handlers) *WSClient {
	return &WSClient{
		conn:     conn,
		handlers: h,
		sendChan: make(chan WSResponse, 256),
		done:     make(chan struct{}),
		ctx:      ctx,
	}
}

// WebSocket handles WebSocket connections for interactive play.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := newWSClient(ctx, conn, h)
	go client.writePump()
	client.readPump()
}

func (c *WSClient) writePump() {
	defer func() { close(c.done); c.conn.Close() }()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() { close(c.sendChan); c.conn.Close() }()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

// send queues resp for writePump. It reports false once the connection
// can no longer be written.
func (c *WSClient) send(resp WSResponse) bool {
	select {
	case c.sendChan <- resp:
		return true
	case <-c.done:
		return false
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "create":
		var req CreateGameRequest
		if !c.decode(msg, &req) {
			return
		}
		snap, err := c.handlers.createGame(c.ctx, req)
		c.reply(msg, snap, err)
	case "get", "roll", "select", "deselect", "play", "pass":
		var req WSGamePayload
		if !c.decode(msg, &req) {
			return
		}
		c.handleGame(msg, req)
	case "simulate":
		c.handleSimulate(msg)
	case "ping":
		c.send(WSResponse{Type: "pong", ID: msg.ID})
	default:
		c.send(WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type"})
	}
}

func (c *WSClient) handleGame(msg WSMessage, req WSGamePayload) {
	h := c.handlers
	var (
		result interface{}
		err    error
	)
	switch msg.Type {
	case "get":
		result, err = h.getGame(c.ctx, req.GameID)
	case "roll":
		result, err = h.roll(c.ctx, req.GameID, RollRequest{Dice: req.Dice, Seed: req.Seed})
	case "select":
		result, err = h.selectRail(c.ctx, req.GameID, req.Rail)
	case "deselect":
		result, err = h.deselect(c.ctx, req.GameID)
	case "play":
		result, err = h.play(c.ctx, req.GameID, req.Rail)
	case "pass":
		result, err = h.pass(c.ctx, req.GameID)
	}
	c.reply(msg, result, err)
}

func (c *WSClient) handleSimulate(msg WSMessage) {
	var req SimulateRequest
	if !c.decode(msg, &req) {
		return
	}
	opts, err := simulateOptions(req)
	if err != nil {
		c.reply(msg, nil, err)
		return
	}
	if pool := c.handlers.pool; pool != nil {
		if !pool.TryAcquireSlow() {
			c.send(WSResponse{Type: "error", ID: msg.ID, Error: "server busy", Code: "SERVER_BUSY"})
			return
		}
		defer pool.ReleaseSlow()
	}
	result, err := sim.Run(c.ctx, opts, nil)
	c.reply(msg, result, err)
}

func (c *WSClient) decode(msg WSMessage, v interface{}) bool {
	if len(msg.Payload) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.send(WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload", Code: "INVALID_JSON"})
		return false
	}
	return true
}

func (c *WSClient) reply(msg WSMessage, result interface{}, err error) {
	if err != nil {
		ae := toAPIError(err)
		c.send(WSResponse{Type: "error", ID: msg.ID, Error: ae.msg, Code: ae.code})
		return
	}
	c.send(WSResponse{Type: "result", ID: msg.ID, Payload: result})
}
