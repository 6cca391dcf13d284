package webview

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/websocket"

	"neuroviz/internal/logging"
	"neuroviz/internal/render"
	"neuroviz/internal/render/record"
	"neuroviz/internal/topology"
)

const broadcastBuffer = 64

// Message is one websocket payload sent to viewers.
type Message struct {
	Type     string        `json:"type"`
	Topology topology.Kind `json:"topology,omitempty"`
	Width    float64       `json:"width,omitempty"`
	Height   float64       `json:"height,omitempty"`
	Stage    int           `json:"stage,omitempty"`
	Signals  int           `json:"signals"`
	Ops      []record.Op   `json:"ops,omitempty"`
	Text     string        `json:"text,omitempty"`
}

// ControlHandler applies a control request read from a viewer.
type ControlHandler func(req ControlRequest) error

// Hub fans frames and reports out to every connected viewer. It runs as a
// lab support module so it is live before the first frame is painted.
type Hub struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	register  chan *websocket.Conn
	remove    chan *websocket.Conn
	broadcast chan []byte

	mu      sync.RWMutex
	latest  map[string][]byte
	control ControlHandler
	done    chan struct{}
	stopped chan struct{}
	log     *logging.Logger
}

func NewHub(log *logging.Logger) *Hub {
	if log == nil {
		log = logging.Get()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		register:  make(chan *websocket.Conn),
		remove:    make(chan *websocket.Conn),
		broadcast: make(chan []byte, broadcastBuffer),
		latest:    make(map[string][]byte),
		log:       log,
	}
}

func (h *Hub) Name() string { return "webview-hub" }

func (h *Hub) Start(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done != nil {
		return nil
	}
	h.done = make(chan struct{})
	h.stopped = make(chan struct{})
	go h.run(h.done, h.stopped)
	return nil
}

func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	done, stopped := h.done, h.stopped
	h.done, h.stopped = nil, nil
	h.mu.Unlock()
	if done == nil {
		return nil
	}
	close(done)
	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnControl sets the handler for control requests from viewers.
func (h *Hub) OnControl(fn ControlHandler) {
	h.mu.Lock()
	h.control = fn
	h.mu.Unlock()
}

func (h *Hub) run(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	for {
		select {
		case <-done:
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			return
		case conn := <-h.register:
			h.clients[conn] = true
			for _, msg := range h.snapshot() {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.log.Warnf("send snapshot to viewer: %v", err)
					delete(h.clients, conn)
					_ = conn.Close()
					break
				}
			}
		case conn := <-h.remove:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}
		case msg := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.log.Warnf("send frame to viewer: %v", err)
					delete(h.clients, conn)
					_ = conn.Close()
				}
			}
		}
	}
}

// Handle upgrades the request and serves one viewer until it disconnects.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	done := h.done
	h.mu.RUnlock()
	if done == nil {
		http.Error(w, "viewer hub is not running", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade: %v", err)
		return
	}
	select {
	case h.register <- conn:
	case <-done:
		_ = conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.remove <- conn:
			case <-done:
			}
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.log.Warnf("websocket read: %v", err)
				}
				return
			}
			var req ControlRequest
			if err := json.Unmarshal(data, &req); err != nil {
				h.log.Debugf("ignore malformed control message: %v", err)
				continue
			}
			h.mu.RLock()
			control := h.control
			h.mu.RUnlock()
			if control == nil {
				continue
			}
			if err := control(req); err != nil {
				h.log.Warnf("control %s %s: %v", req.Type, req.Topology, err)
			}
		}
	}()
}

// PublishFrame renders the frame to draw ops and sends it to every viewer.
func (h *Hub) PublishFrame(kind topology.Kind, frame render.Frame) {
	rec := record.New()
	render.Draw(rec, frame)
	h.publish("frame:"+string(kind), Message{
		Type:     "frame",
		Topology: kind,
		Width:    frame.Topology.Width,
		Height:   frame.Topology.Height,
		Stage:    frame.Stage,
		Signals:  len(frame.Signals),
		Ops:      rec.Ops(),
	})
}

// PublishReport sends a calculation report to every viewer.
func (h *Hub) PublishReport(kind topology.Kind, text string) {
	h.publish("report:"+string(kind), Message{Type: "report", Topology: kind, Text: text})
}

func (h *Hub) publish(key string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorf("marshal %s: %v", key, err)
		return
	}
	h.mu.Lock()
	h.latest[key] = data
	running := h.done != nil
	h.mu.Unlock()
	if !running {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Debugf("viewer broadcast full, dropped %s", key)
	}
}

// snapshot returns the latest message per key so a new viewer starts with a
// full picture.
func (h *Hub) snapshot() [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	keys := make([]string, 0, len(h.latest))
	for key := range h.latest {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([][]byte, 0, len(keys))
	for _, key := range keys {
		out = append(out, h.latest[key])
	}
	return out
}
