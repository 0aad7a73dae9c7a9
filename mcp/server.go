// Package mcp exposes the certificate engine to Model Context Protocol
// clients. Messages are newline-delimited JSON-RPC 2.0 on a reader/writer
// pair, normally stdin and stdout. Only the tools and resources
// capabilities of protocol revision 2024-11-05 are served.
package mcp

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
)

// ServerName is reported to clients during initialization.
const ServerName = "certgen-mcp"

const (
	protocolVersion = "2024-11-05"
	serverVersion   = "1.0.0"

	maxMessageSize = 10 << 20 // rendered PDFs travel inline as base64
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Server answers MCP requests read from its input, one per line.
type Server struct {
	tools     map[string]Tool
	resources map[string]Resource
	methods   map[string]method
	input     io.Reader
	output    io.Writer
	log       *slog.Logger
	mu        sync.Mutex // serializes writes to output
}

// method handles one JSON-RPC method. A nil error with a nil result still
// produces an empty result object.
type method func(ctx context.Context, params json.RawMessage) (any, *jsonrpcError)

// Tool is a callable operation listed by tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	Handler     ToolHandler            `json:"-"`
}

// ToolHandler runs a tool. A returned error is reported to the client as a
// tool result with isError set, not as a protocol error.
type ToolHandler func(ctx context.Context, args map[string]any) (ToolResult, error)

// ToolResult is the content a tool returns.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock is one text or image item of a tool result.
type ContentBlock struct {
	Type     string `json:"type"` // "text" or "image"
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"` // base64 for binary
}

// Resource is a read-only document listed by resources/list.
type Resource struct {
	URI         string          `json:"uri"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	MIMEType    string          `json:"mimeType,omitempty"`
	Handler     ResourceHandler `json:"-"`
}

// ResourceHandler reads a resource and returns its content.
type ResourceHandler func(uri string) ([]ResourceContent, error)

// ResourceContent is one item returned by resources/read.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"` // base64
}

type jsonrpcRequest struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

// notification reports whether the request expects no response.
func (r jsonrpcRequest) notification() bool { return r.ID == nil }

type jsonrpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id"`
	Result  any              `json:"result,omitempty"`
	Error   *jsonrpcError    `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func rpcError(code int, message string, data any) *jsonrpcError {
	return &jsonrpcError{Code: code, Message: message, Data: data}
}

// NewServer returns a server on stdin and stdout.
func NewServer() *Server {
	return NewServerWithIO(os.Stdin, os.Stdout)
}

// NewServerWithIO returns a server on the given reader and writer.
func NewServerWithIO(in io.Reader, out io.Writer) *Server {
	s := &Server{
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
		input:     in,
		output:    out,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	s.methods = map[string]method{
		"initialize":     s.initialize,
		"ping":           func(context.Context, json.RawMessage) (any, *jsonrpcError) { return struct{}{}, nil },
		"tools/list":     s.listTools,
		"tools/call":     s.callTool,
		"resources/list": s.listResources,
		"resources/read": s.readResource,
	}
	return s
}

// SetLogger sets the logger for tool failures. Stdout carries the protocol,
// so the logger must write elsewhere.
func (s *Server) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// AddTool registers t, replacing a tool of the same name.
func (s *Server) AddTool(t Tool) {
	s.tools[t.Name] = t
}

// AddResource registers r, replacing a resource with the same URI.
func (s *Server) AddResource(r Resource) {
	s.resources[r.URI] = r
}

// Run serves requests until the input ends or ctx is cancelled. ctx is
// passed to every tool call.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.input)
	scanner.Buffer(make([]byte, 0, 64<<10), maxMessageSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req jsonrpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.reply(nil, nil, rpcError(codeParseError, "Parse error", err.Error()))
			continue
		}
		s.dispatch(ctx, req)
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req jsonrpcRequest) {
	m, ok := s.methods[req.Method]
	if !ok {
		// notifications such as notifications/initialized need no answer
		if !req.notification() {
			s.reply(req.ID, nil, rpcError(codeMethodNotFound, "Method not found", req.Method))
		}
		return
	}
	result, rerr := m(ctx, req.Params)
	if req.notification() {
		return
	}
	if result == nil && rerr == nil {
		result = struct{}{}
	}
	s.reply(req.ID, result, rerr)
}

func (s *Server) initialize(context.Context, json.RawMessage) (any, *jsonrpcError) {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools":     map[string]any{},
			"resources": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    ServerName,
			"version": serverVersion,
		},
	}, nil
}

func (s *Server) listTools(context.Context, json.RawMessage) (any, *jsonrpcError) {
	tools := sortedValues(s.tools, func(t Tool) string { return t.Name })
	return map[string]any{"tools": tools}, nil
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, *jsonrpcError) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, rpcError(codeInvalidParams, "Invalid params", err.Error())
	}
	tool, ok := s.tools[params.Name]
	if !ok {
		return nil, rpcError(codeInvalidParams, "Unknown tool", params.Name)
	}

	result, err := tool.Handler(ctx, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "err", err)
		return ToolResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Error: %v", err)}},
			IsError: true,
		}, nil
	}
	return result, nil
}

func (s *Server) listResources(context.Context, json.RawMessage) (any, *jsonrpcError) {
	resources := sortedValues(s.resources, func(r Resource) string { return r.URI })
	return map[string]any{"resources": resources}, nil
}

func (s *Server) readResource(_ context.Context, raw json.RawMessage) (any, *jsonrpcError) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, rpcError(codeInvalidParams, "Invalid params", err.Error())
	}
	res, ok := s.resources[params.URI]
	if !ok {
		return nil, rpcError(codeInvalidParams, "Unknown resource", params.URI)
	}
	contents, err := res.Handler(params.URI)
	if err != nil {
		return nil, rpcError(codeInternalError, "Resource error", err.Error())
	}
	return map[string]any{"contents": contents}, nil
}

func (s *Server) reply(id *json.RawMessage, result any, rerr *jsonrpcError) {
	resp := jsonrpcResponse{JSONRPC: "2.0", ID: id, Error: rerr}
	if rerr == nil {
		resp.Result = result
	}
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("encoding response", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.output.Write(append(data, '\n')); err != nil {
		s.log.Error("writing response", "err", err)
	}
}

// sortedValues lists m ordered by key.
func sortedValues[V any](m map[string]V, key func(V) string) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b V) int { return cmp.Compare(key(a), key(b)) })
	return out
}
