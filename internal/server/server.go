package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/ironsheep/retrotape-tracker/internal/imaging"
	"github.com/ironsheep/retrotape-tracker/internal/log"
	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

// ProtocolVersion is reported by initialize.
const ProtocolVersion = "2024-11-05"

// Server handles control channel communication for one module.
type Server struct {
	module  tracker.Module
	cache   *imaging.FrameCache
	logger  *slog.Logger
	version string

	mu  sync.Mutex
	seq uint64
}

// Request represents an incoming JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents an outgoing JSON-RPC response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeExecution      = -32000
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for protocol errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the version reported by initialize.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a control channel server for m.
func New(m tracker.Module, opts ...Option) *Server {
	s := &Server{
		module:  m,
		cache:   imaging.NewFrameCache(),
		logger:  log.L(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves requests from stdin and writes replies to stdout.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one request or command per line from r and writes replies to
// w until r is exhausted or ctx is canceled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Requests carry file paths only, but leave room for long parameter values.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	out := bufio.NewWriter(w)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if line[0] == '{' {
			resp := s.handleLine(ctx, line)
			if resp != nil {
				if err := encoder.Encode(resp); err != nil {
					s.logger.Error("failed to encode response", "error", err)
				}
			}
		} else {
			for _, reply := range s.handleCommand(ctx, string(line)) {
				fmt.Fprintln(out, reply)
			}
		}
		if err := out.Flush(); err != nil {
			return errors.Wrap(err, "write reply")
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read requests")
	}
	return nil
}

// handleLine decodes a JSON-RPC request and routes it.
func (s *Server) handleLine(ctx context.Context, line []byte) *Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("failed to parse request", "error", err)
		return s.errorResponse(nil, CodeParseError, "Parse error", err.Error())
	}
	return s.handleRequest(ctx, &req)
}

// handleRequest routes requests to the appropriate handler.
func (s *Server) handleRequest(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "ping":
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	}

	h, ok := s.handlers()[req.Method]
	if !ok {
		return s.errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}

	result, err := h(ctx, req.Params)
	if err != nil {
		if isInvalidParams(err) {
			return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		}
		s.logger.Warn("method failed", "method", req.Method, "error", err)
		return s.errorResponse(req.ID, CodeExecution, "Execution failed", err.Error())
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

// handleInitialize responds to the initialize request.
func (s *Server) handleInitialize(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"methods":  methodNames(),
				"commands": commandNames(),
			},
			"serverInfo": map[string]interface{}{
				"name":    "retrotape-tracker",
				"version": s.version,
			},
			"module": s.module.Info(),
		},
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *Response {
	e := &RPCError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// nextSeq numbers frames processed through the control channel.
func (s *Server) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}
