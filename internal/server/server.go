package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-edit-mcp/internal/display"
	"github.com/ironsheep/image-edit-mcp/internal/editor"
)

const (
	// maxConcurrentCalls bounds tools/call requests in flight. Generative
	// calls are single-flight anyway; the rest are quick.
	maxConcurrentCalls = 8

	minLineBuffer = 1024 * 1024
)

// Config wires a Server to its collaborators.
type Config struct {
	Session *editor.Session
	Binder  *display.Binder

	// MaxUploadSize bounds uploaded images in bytes. Zero means no limit.
	MaxUploadSize int64

	Logger  *slog.Logger
	Version string
}

// Server handles MCP protocol communication
type Server struct {
	session       *editor.Session
	binder        *display.Binder
	maxUploadSize int64
	logger        *slog.Logger
	version       string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server. A nil Session gets an empty one with no edit
// service; a nil Binder gets one over a registry without URLs.
func New(cfg Config) *Server {
	s := &Server{
		session:       cfg.Session,
		binder:        cfg.Binder,
		maxUploadSize: cfg.MaxUploadSize,
		logger:        cfg.Logger,
		version:       cfg.Version,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.binder == nil {
		s.binder = display.NewBinder(display.NewRegistry("", s.logger))
	}
	if s.session == nil {
		s.session = editor.New(nil, editor.WithLogger(s.logger), editor.WithObserver(s.binder.Bind))
	}
	if s.version == "" {
		s.version = "dev"
	}
	return s
}

// Run serves MCP on stdin and stdout until stdin closes or ctx is done.
// A blocked stdin read cannot be interrupted, so on cancellation Run
// returns without waiting for it.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.Serve(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down", "reason", context.Cause(ctx))
		return nil
	}
}

// Serve reads one JSON-RPC request per line from in and writes responses
// to out. Tool calls run concurrently so a pending edit does not block
// undo, state queries or pings; responses may therefore arrive out of
// order. Serve returns when in is exhausted and every call has answered.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Data-URL uploads arrive on a single line.
	scanner.Buffer(make([]byte, 0, 64*1024), s.lineBufferSize())

	var encMu sync.Mutex
	encoder := json.NewEncoder(out)
	write := func(resp *MCPResponse) {
		encMu.Lock()
		defer encMu.Unlock()
		if err := encoder.Encode(resp); err != nil {
			s.logger.Error("failed to encode response", "error", err)
		}
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentCalls)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			write(s.errorResponse(nil, -32700, "Parse error", err.Error()))
			continue
		}

		if req.Method != "tools/call" {
			if resp := s.handleRequest(ctx, &req); resp != nil {
				write(resp)
			}
			continue
		}

		g.Go(func() error {
			if resp := s.handleRequest(ctx, &req); resp != nil {
				write(resp)
			}
			return nil
		})
	}

	_ = g.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

func (s *Server) lineBufferSize() int {
	// base64 inflates by 4/3; leave room for the envelope.
	n := s.maxUploadSize*4/3 + minLineBuffer
	if s.maxUploadSize <= 0 || n < minLineBuffer {
		return 64 * minLineBuffer
	}
	return int(n)
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "image-edit-mcp",
				"version": s.version,
			},
		},
	}
}
