package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"botctl/internal/orchestrator"
	"botctl/internal/tool"
	"botctl/pkg/logging"
)

const maxRequestBytes = 1 << 20

// Orchestrator is the subset of orchestrator.Service the HTTP surface needs.
type Orchestrator interface {
	Handle(ctx context.Context, action, command string) orchestrator.Result
	Output(kind tool.Kind) orchestrator.Result
	Status() []orchestrator.ToolStatus
	StatusOf(kind tool.Kind) orchestrator.ToolStatus
}

// RunScriptRequest is the body of POST /api/runScript.
type RunScriptRequest struct {
	Action  string `json:"action"`
	Command string `json:"command"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Server is the HTTP control endpoint.
type Server struct {
	orch Orchestrator
	addr string

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates a server for orch bound to host:port once started.
func NewServer(orch Orchestrator, host string, port int) *Server {
	if host == "" {
		host = "localhost"
	}
	return &Server{
		orch: orch,
		addr: net.JoinHostPort(host, fmt.Sprintf("%d", port)),
	}
}

// Handler returns the routed handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runScript", s.handleRunScript)
	mux.HandleFunc("GET /api/runScript/status", s.handleStatus)
	mux.HandleFunc("GET /api/runScript/output", s.handleOutput)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start binds the listener and serves in the background. Bind errors are
// returned; serve errors after that are logged.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	logging.Info("API", "Listening on http://%s", ln.Addr())
	srv := s.server
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("API", err, "HTTP server error")
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	logging.Info("API", "Shutting down")
	return srv.Shutdown(ctx)
}

func (s *Server) handleRunScript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		jsonError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s Not Allowed", r.Method))
		return
	}

	var req RunScriptRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	logging.Debug("API", "runScript action=%q command=%q", req.Action, req.Command)
	result := s.orch.Handle(r.Context(), req.Action, req.Command)
	jsonResponse(w, result.StatusCode(), result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("kind")
	if name == "" {
		jsonResponse(w, http.StatusOK, s.orch.Status())
		return
	}
	kind, err := tool.ParseKind(name)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, s.orch.StatusOf(kind))
}

func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	kind, err := tool.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := s.orch.Output(kind)
	jsonResponse(w, result.StatusCode(), result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// JSON response helpers
func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Warn("API", "Failed to write response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, ErrorResponse{Error: message})
}
