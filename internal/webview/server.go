// Package webview serves the browser viewer: a canvas page that replays the
// draw ops streamed over a websocket, plus a small JSON control API.
package webview

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"time"

	"neuroviz/internal/logging"
	"neuroviz/internal/platform"
	"neuroviz/internal/topology"
)

//go:embed static
var staticFiles embed.FS

const shutdownTimeout = 5 * time.Second

// ControlRequest is a viewer command. Input values are raw field text.
type ControlRequest struct {
	Type     string  `json:"type"`
	Topology string  `json:"topology,omitempty"`
	Input1   *string `json:"input1,omitempty"`
	Input2   *string `json:"input2,omitempty"`
}

type Server struct {
	lab *platform.Lab
	hub *Hub
	log *logging.Logger
	mux *http.ServeMux
}

func NewServer(lab *platform.Lab, hub *Hub, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Get()
	}
	s := &Server{lab: lab, hub: hub, log: log, mux: http.NewServeMux()}

	static, _ := fs.Sub(staticFiles, "static")
	s.mux.Handle("/", http.FileServer(http.FS(static)))
	s.mux.HandleFunc("/ws", hub.Handle)
	s.mux.HandleFunc("/api/reports", s.handleReports)
	s.mux.HandleFunc("/api/control", s.handleControl)
	s.mux.HandleFunc("/api/runs", s.handleRuns)
	hub.OnControl(s.Apply)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.mux, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.log.Infof("viewer listening on http://%s", ln.Addr())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown viewer: %w", err)
		}
		s.log.Infof("viewer stopped")
		return nil
	}
}

// Apply runs a control request against the lab.
func (s *Server) Apply(req ControlRequest) error {
	if req.Type == "input" {
		inputs := s.lab.Inputs()
		raw1, raw2 := inputs.Input1.Raw(), inputs.Input2.Raw()
		if req.Input1 != nil {
			raw1 = *req.Input1
		}
		if req.Input2 != nil {
			raw2 = *req.Input2
		}
		s.lab.SetInputs(raw1, raw2)
		return nil
	}

	kind, err := topology.ParseKind(req.Topology)
	if err != nil {
		return err
	}
	v, err := s.lab.Visualization(kind)
	if err != nil {
		return err
	}
	switch req.Type {
	case "start":
		v.Start()
	case "stop":
		v.Stop()
	case "reset":
		return v.Reset()
	default:
		return fmt.Errorf("unsupported control type: %s", req.Type)
	}
	return nil
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.lab.Reports())
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Apply(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var kind topology.Kind
	if name := r.URL.Query().Get("topology"); name != "" {
		parsed, err := topology.ParseKind(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		kind = parsed
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := s.lab.Runs(r.Context(), kind, limit)
	if err != nil {
		s.log.Errorf("list runs: %v", err)
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
