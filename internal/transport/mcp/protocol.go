package mcp

import "encoding/json"

// protocolVersion is the MCP protocol revision this server speaks.
const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes. The -32000 range is reserved for
// implementation-defined server errors.
const (
	codeParseError       = -32700
	codeMethodNotFound   = -32601
	codeInvalidParams    = -32602
	codeInternalError    = -32603
	codeModelUnavailable = -32000
	codeStoreUnavailable = -32001
)

// rpcRequest is a JSON-RPC 2.0 request. The ID is kept raw so it is echoed
// back exactly as the client sent it (number, string, or null).
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// rpcResponse is a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is a JSON-RPC 2.0 error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// callParams is the params shape of a tools/call request.
type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// contentItem is one entry of the MCP tool-result content envelope.
type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// callResult is the MCP tool-result envelope.
type callResult struct {
	Content []contentItem `json:"content"`
}

// initializeResult is the response to the initialize handshake.
type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      serverInfo     `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
