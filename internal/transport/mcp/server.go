// Package mcp exposes the product search tool over the MCP JSON-RPC 2.0
// protocol: a single POST endpoint handling initialize, tools/list, and
// tools/call, plus plain status endpoints for operators.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prodisco/prodisco/internal/domain"
	domsearch "github.com/prodisco/prodisco/internal/domain/search"
	healthuc "github.com/prodisco/prodisco/internal/usecase/health"
)

// Searcher executes product search queries.
type Searcher interface {
	Search(ctx context.Context, q *domsearch.Query) (*domsearch.Result, error)
}

// Server handles MCP requests over HTTP.
type Server struct {
	search  Searcher
	health  *healthuc.Service
	name    string
	version string
	logger  *zap.Logger
}

// NewServer creates an MCP tool server.
func NewServer(search Searcher, health *healthuc.Service, version string, logger *zap.Logger) *Server {
	return &Server{
		search:  search,
		health:  health,
		name:    "prodisco-mcp",
		version: version,
		logger:  logger,
	}
}

// Register mounts the MCP and status routes.
func (s *Server) Register(r chi.Router) {
	r.Post("/mcp", s.handleRPC)
	r.Get("/", s.handleStatus)
	r.Get("/healthz", s.handleHealthz)
}

// handleRPC dispatches a single JSON-RPC 2.0 request.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, nil, codeParseError, "parse error")
		return
	}

	s.logger.Debug("MCP request", zap.String("method", req.Method))

	switch req.Method {
	case "initialize":
		s.writeResult(w, req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
		})
	case "notifications/initialized":
		s.writeResult(w, req.ID, true)
	case "ping":
		s.writeResult(w, req.ID, map[string]any{})
	case "tools/list":
		s.writeResult(w, req.ID, map[string]any{
			"tools": []toolDescriptor{searchToolDescriptor},
		})
	case "tools/call":
		s.handleToolCall(w, r, &req)
	default:
		s.writeError(w, req.ID, codeMethodNotFound, "method not found")
	}
}

// handleToolCall validates the tool name and arguments, then runs the search.
// Argument failures never reach the embedder or the store.
func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request, req *rpcRequest) {
	var params callParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.writeError(w, req.ID, codeInvalidParams, "invalid params")
		return
	}

	if params.Name != searchToolName {
		s.writeRPCError(w, req.ID, fmt.Errorf("%w: %q", domain.ErrToolNotFound, params.Name))
		return
	}

	args, err := decodeSearchArguments(params.Arguments)
	if err != nil {
		s.writeRPCError(w, req.ID, err)
		return
	}

	result, err := s.search.Search(r.Context(), args.SearchQuery())
	if err != nil {
		s.writeRPCError(w, req.ID, err)
		return
	}

	text, err := renderSearchResult(result)
	if err != nil {
		s.writeRPCError(w, req.ID, err)
		return
	}

	s.writeResult(w, req.ID, callResult{
		Content: []contentItem{{Type: "text", Text: text}},
	})
}

// searchResponse is the text payload of a successful search_products call.
type searchResponse struct {
	Query        string            `json:"query"`
	TotalResults int               `json:"total_results"`
	Products     []productResponse `json:"products"`
}

type productResponse struct {
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	InStock     bool    `json:"in_stock"`
	Brand       string  `json:"brand"`
	Relevance   string  `json:"relevance"`
}

func renderSearchResult(res *domsearch.Result) (string, error) {
	payload := searchResponse{
		Query:        res.Query,
		TotalResults: res.TotalResults,
		Products:     make([]productResponse, 0, len(res.Products)),
	}
	for _, sp := range res.Products {
		payload.Products = append(payload.Products, productResponse{
			ProductID:   sp.Product.ID,
			Name:        sp.Product.Name,
			Category:    sp.Product.Category,
			Description: sp.Product.Description,
			Price:       sp.Product.Price,
			InStock:     sp.Product.InStock,
			Brand:       sp.Product.Brand,
			Relevance:   domsearch.FormatRelevance(sp.Distance),
		})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal search result: %w", err)
	}
	return string(data), nil
}

// handleStatus reports basic liveness on GET /.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     s.name,
		"version":  s.version,
		"status":   "online",
		"protocol": "mcp-http",
		"checks":   report.Checks,
	})
}

// handleHealthz reports dependency health; total failure maps to 503.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// writeRPCError maps a domain error to its JSON-RPC code. Unexpected errors
// are logged and returned as a generic internal error.
func (s *Server) writeRPCError(w http.ResponseWriter, id json.RawMessage, err error) {
	switch {
	case errors.Is(err, domain.ErrToolNotFound),
		errors.Is(err, domain.ErrInvalidArguments),
		errors.Is(err, domain.ErrInvalidQuery):
		s.writeError(w, id, codeInvalidParams, err.Error())
	case errors.Is(err, domain.ErrModelUnavailable):
		s.writeError(w, id, codeModelUnavailable, "embedding model unavailable")
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.writeError(w, id, codeStoreUnavailable, "catalog store unavailable")
	default:
		s.logger.Error("Tool call failed", zap.Error(err))
		s.writeError(w, id, codeInternalError, "internal error")
	}
}

func (s *Server) writeResult(w http.ResponseWriter, id json.RawMessage, result any) {
	writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) writeError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	writeJSON(w, http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
