// Package wshub renders notifications on browser pages connected over
// websockets. Every connection subscribes to one surface; a surface may have
// several connections (e.g. the page and a devtools panel).
package wshub

import (
	"context"
	"net/http"
	"sync"
	"time"

	"phishguard/internal/notify"
	"phishguard/pkg/logger"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxFrameBytes  = 4 << 10
	defaultBacklog = 16
)

// Options configure a Hub.
type Options struct {
	// CheckOrigin validates the Origin header on upgrade. Nil accepts all.
	CheckOrigin func(r *http.Request) bool
	// Backlog is the number of frames buffered per connection.
	Backlog int
}

type conn struct {
	ws   *websocket.Conn
	send chan []byte
}

// Hub fans notification frames out to subscribed connections.
type Hub struct {
	upgrader websocket.Upgrader
	backlog  int

	mu    sync.Mutex
	conns map[string]map[*conn]struct{}
}

// New creates an empty Hub.
func New(opts Options) *Hub {
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	backlog := opts.Backlog
	if backlog <= 0 {
		backlog = defaultBacklog
	}

	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		backlog:  backlog,
		conns:    make(map[string]map[*conn]struct{}),
	}
}

// Serve upgrades the request and subscribes it to surfaceID until the peer
// goes away. A {"type":"dismiss"} frame from the peer calls onDismiss.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, surfaceID string, onDismiss func(ctx context.Context)) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return errors.Wrap(err, "upgrade")
	}
	ctx := logger.WithFields(r.Context(), zap.String("surfaceID", surfaceID))

	c := &conn{ws: ws, send: make(chan []byte, h.backlog)}
	h.subscribe(surfaceID, c)
	defer h.unsubscribe(surfaceID, c)

	go h.writeLoop(ctx, c)

	ws.SetReadLimit(maxFrameBytes)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug(ctx, "notification socket closed", zap.Error(err))
			}

			return nil
		}
		if mt != websocket.TextMessage {
			continue
		}
		typ, err := frameType(data)
		if err != nil {
			logger.Debug(ctx, "ignoring malformed client frame", zap.Error(err))

			continue
		}
		if typ == "dismiss" && onDismiss != nil {
			onDismiss(ctx)
		}
	}
}

// Subscribers returns the number of live connections on surfaceID.
func (h *Hub) Subscribers(surfaceID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.conns[surfaceID])
}

// Show sends a show frame to every connection of n.SurfaceID.
func (h *Hub) Show(ctx context.Context, n notify.Notification) error {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("type")
	e.Str("show")
	e.FieldStart("id")
	e.Str(n.ID)
	e.FieldStart("surfaceId")
	e.Str(n.SurfaceID)
	e.FieldStart("message")
	e.Str(n.Message)
	e.FieldStart("severity")
	e.Str(string(n.Severity))
	e.FieldStart("color")
	e.Str(n.Color)
	e.FieldStart("timeoutMs")
	e.Int64(n.Timeout.Milliseconds())
	e.ObjEnd()

	h.broadcast(ctx, n.SurfaceID, e.Bytes())

	return nil
}

// Remove sends a remove frame to every connection of surfaceID.
func (h *Hub) Remove(ctx context.Context, surfaceID, id string) error {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("type")
	e.Str("remove")
	e.FieldStart("id")
	e.Str(id)
	e.FieldStart("surfaceId")
	e.Str(surfaceID)
	e.ObjEnd()

	h.broadcast(ctx, surfaceID, e.Bytes())

	return nil
}

// Close disconnects every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.conns {
		for c := range set {
			_ = c.ws.Close()
		}
	}
}

func (h *Hub) subscribe(surfaceID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[surfaceID]
	if !ok {
		set = make(map[*conn]struct{})
		h.conns[surfaceID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unsubscribe(surfaceID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.conns[surfaceID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, surfaceID)
	}
	close(c.send)
}

func (h *Hub) broadcast(ctx context.Context, surfaceID string, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.conns[surfaceID] {
		select {
		case c.send <- frame:
		default:
			logger.Warn(ctx, "notification socket backlog full, frame dropped", zap.String("surfaceID", surfaceID))
		}
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Debug(ctx, "could not write notification frame", zap.Error(err))

				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func frameType(data []byte) (string, error) {
	var typ string
	if err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "type" {
			return d.Skip()
		}
		s, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "type")
		}
		typ = s

		return nil
	}); err != nil {
		return "", errors.Wrap(err, "decode frame")
	}

	return typ, nil
}

var _ notify.Renderer = (*Hub)(nil)
