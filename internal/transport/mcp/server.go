// Package mcp serves the archive catalogue as Model Context Protocol tools
// over newline-delimited JSON-RPC 2.0 on stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"sync/atomic"

	"github.com/sourcegraph/jsonrpc2"
	"go.uber.org/zap"

	"github.com/lightsoft-dev/light-archive/internal/logger"
	"github.com/lightsoft-dev/light-archive/internal/version"
)

const (
	// ProtocolVersion is answered when the client asks for an unknown version.
	ProtocolVersion = "2025-06-18"
	serverName      = "light_archive_mcp"
)

var supportedProtocolVersions = []string{"2025-06-18", "2025-03-26", "2024-11-05"}

// Server dispatches MCP methods to the archive tools.
type Server struct {
	tools       []tool
	byName      map[string]tool
	logger      *zap.Logger
	initialized atomic.Bool
}

// NewServer creates an MCP server backed by archives.
func NewServer(archives ArchiveService, logger *zap.Logger) *Server {
	s := &Server{logger: logger, byName: map[string]tool{}}
	s.tools = newTools(archives)
	for _, t := range s.tools {
		s.byName[t.Name] = t
	}
	return s
}

// Serve answers requests on rwc until the peer disconnects or ctx is done.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	ctx = logger.ContextWithLogger(ctx, s.logger)
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewPlainObjectStream(rwc),
		jsonrpc2.HandlerWithError(s.handle),
		jsonrpc2.SetLogger(zap.NewStdLog(s.logger)),
	)
	select {
	case <-conn.DisconnectNotify():
		return nil
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	}
}

func (s *Server) handle(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	var params json.RawMessage
	if req.Params != nil {
		params = *req.Params
	}
	ctx = logger.ContextWithLogger(ctx, s.logger.With(zap.String("method", req.Method)))
	return s.Handle(ctx, req.Method, params)
}

// Handle dispatches a single method call. Errors are JSON-RPC errors;
// tool failures are reported inside a successful result instead.
func (s *Server) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "initialize":
		return s.initialize(params)
	case "ping":
		return struct{}{}, nil
	case "notifications/initialized":
		s.initialized.Store(true)
		return struct{}{}, nil
	case "tools/list":
		return s.listTools(), nil
	case "tools/call":
		return s.callTool(ctx, params)
	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", method),
		}
	}
}

// Initialized reports whether the client confirmed initialization.
func (s *Server) Initialized() bool { return s.initialized.Load() }

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
	ClientInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"clientInfo"`
}

func (s *Server) initialize(params json.RawMessage) (any, error) {
	var p initializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "invalid initialize params"}
		}
	}
	s.logger.Info("mcp client connected",
		zap.String("client", p.ClientInfo.Name),
		zap.String("client_version", p.ClientInfo.Version),
	)
	return map[string]any{
		"protocolVersion": negotiateProtocolVersion(p.ProtocolVersion),
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": version.Version,
		},
	}, nil
}

func negotiateProtocolVersion(client string) string {
	for _, v := range supportedProtocolVersions {
		if client == v {
			return v
		}
	}
	return ProtocolVersion
}

func (s *Server) listTools() any {
	out := make([]map[string]any, len(s.tools))
	for i, t := range s.tools {
		out[i] = map[string]any{
			"name":        t.Name,
			"title":       t.Title,
			"description": t.Description,
			"inputSchema": t.Schema,
			"annotations": t.Annotations,
		}
	}
	return map[string]any{"tools": out}
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			res, err = errorResult(fmt.Errorf("tool execution panicked: %v", r)), nil
		}
	}()

	var p callParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "invalid tools/call params"}
	}
	t, ok := s.byName[p.Name]
	if !ok {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("unknown tool %q", p.Name)}
	}
	if len(p.Arguments) == 0 {
		p.Arguments = json.RawMessage("{}")
	}

	ctx = logger.With(ctx, zap.String("tool", p.Name))
	text, err := t.Run(ctx, p.Arguments)
	if err != nil {
		logger.FromContext(ctx).Warn("tool failed", zap.Error(err))
		return errorResult(err), nil
	}
	return textResult(text), nil
}

// CallResult is the tools/call result payload.
type CallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content is a single text block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textResult(text string) CallResult {
	return CallResult{Content: []Content{{Type: "text", Text: truncate(text)}}}
}

func errorResult(err error) CallResult {
	return CallResult{Content: []Content{{Type: "text", Text: "Error: " + toolMessage(err)}}, IsError: true}
}

type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }

// Stdio joins a reader and a writer into a connection for Serve.
func Stdio(in io.Reader, out io.Writer) io.ReadWriteCloser {
	return stdio{Reader: in, Writer: out}
}
