package holding

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/MVdu13/finsyamvp-sub000/internal/metrics"
	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// WSMessage is the JSON payload pushed to WebSocket clients after every
// ledger mutation. It carries only the headline numbers; clients re-fetch
// the full position list over HTTP when they need it.
type WSMessage struct {
	Type       string `json:"type"`
	Positions  int    `json:"positions"`
	TotalValue string `json:"totalValue"`
}

// wsClient is one connected dashboard. Each client has its own buffered
// send queue so one slow reader cannot stall the others.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WSHub fans ledger change summaries out to connected dashboards. A client
// that cannot keep up is disconnected rather than buffered without bound.
type WSHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	last    []byte
}

// NewWSHub creates an empty hub.
func NewWSHub() *WSHub {
	return &WSHub{clients: make(map[*wsClient]struct{})}
}

// BroadcastSnapshot summarizes a ledger snapshot and queues it to every
// connected client. Safe to register as a ledger subscriber: it never
// blocks the mutating caller.
func (h *WSHub) BroadcastSnapshot(snapshot []model.Position) {
	total := decimal.Zero
	for _, p := range snapshot {
		total = total.Add(p.Value)
	}

	data, err := json.Marshal(WSMessage{
		Type:       "ledger_updated",
		Positions:  len(snapshot),
		TotalValue: total.String(),
	})
	if err != nil {
		return
	}

	h.mu.Lock()
	h.last = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Queue full: the client is not reading, drop it.
			delete(h.clients, c)
			close(c.send)
		}
	}
	remaining := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(remaining))
}

func (h *WSHub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	// Replay the most recent summary so a fresh dashboard paints
	// immediately instead of waiting for the next mutation.
	if h.last != nil {
		c.send <- h.last
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(total))
	slog.Info("ws client connected", "total", total)
}

func (h *WSHub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(total))
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true // Allow all origins during development.
	},
}

// HandleWS handles WebSocket upgrade requests at GET /api/v1/ws.
func (h *WSHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "err", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, 16)}
	h.add(c)

	go h.writePump(c)
	go h.readPump(c)
}

// writePump drains the client's send queue and keeps the connection alive
// through proxies with periodic pings.
func (h *WSHub) writePump(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readPump discards inbound frames and detects disconnects. The protocol
// is push-only; clients have nothing to say.
func (h *WSHub) readPump(c *wsClient) {
	defer h.remove(c)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
