package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/prodisco/prodisco/internal/domain"
	domsearch "github.com/prodisco/prodisco/internal/domain/search"
)

// searchToolName is the single tool this server exposes.
const searchToolName = "search_products"

// toolDescriptor is an MCP tool definition.
type toolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// searchToolDescriptor is static: tools/list returns the same bytes on every
// call, so agents can cache it.
var searchToolDescriptor = toolDescriptor{
	Name: searchToolName,
	Description: "Semantic search for e-commerce products. Understands natural language " +
		"queries (e.g., 'waterproof running shoes under 100 euros') and returns ranked " +
		"results with relevance scores. Supports optional filtering by price, category, " +
		"brand, and stock availability. Use this tool when customers want to find, " +
		"search, browse, or get recommendations for products.",
	InputSchema: json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Natural language description of the desired product"
			},
			"top_k": {
				"type": "integer",
				"description": "Maximum number of results to return",
				"default": 5
			},
			"max_price": {
				"type": "number",
				"description": "Maximum price in EUR (optional filter)"
			},
			"category": {
				"type": "string",
				"description": "Product category to filter by"
			},
			"in_stock_only": {
				"type": "boolean",
				"description": "If true, return only products currently in stock",
				"default": false
			},
			"brand": {
				"type": "string",
				"description": "Brand name to filter by"
			}
		},
		"required": ["query"]
	}`),
}

// searchArguments is the typed argument set of search_products. Pointer
// fields distinguish "absent" from zero values.
type searchArguments struct {
	Query       string   `json:"query"`
	TopK        *int     `json:"top_k"`
	MaxPrice    *float64 `json:"max_price"`
	Category    *string  `json:"category"`
	Brand       *string  `json:"brand"`
	InStockOnly *bool    `json:"in_stock_only"`
}

// decodeSearchArguments strictly parses tool arguments. Unknown fields and
// type mismatches are rejected before any backend is touched.
func decodeSearchArguments(raw json.RawMessage) (searchArguments, error) {
	var args searchArguments
	if len(raw) == 0 {
		return args, fmt.Errorf("%w: arguments are required", domain.ErrInvalidArguments)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&args); err != nil {
		return args, fmt.Errorf("%w: %s", domain.ErrInvalidArguments, sanitizeDecodeError(err))
	}

	if strings.TrimSpace(args.Query) == "" {
		return args, fmt.Errorf("%w: query is required", domain.ErrInvalidArguments)
	}
	return args, nil
}

// SearchQuery converts tool arguments to a search query, applying defaults.
func (a searchArguments) SearchQuery() *domsearch.Query {
	q := &domsearch.Query{
		Text:     a.Query,
		TopK:     domsearch.DefaultTopK,
		MaxPrice: a.MaxPrice,
	}
	if a.TopK != nil {
		q.TopK = *a.TopK
	}
	if a.Category != nil {
		q.Category = *a.Category
	}
	if a.Brand != nil {
		q.Brand = *a.Brand
	}
	if a.InStockOnly != nil {
		q.InStockOnly = *a.InStockOnly
	}
	return q
}

// sanitizeDecodeError keeps messages useful without echoing Go type names.
func sanitizeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("argument %q has wrong type", typeErr.Field)
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "json: unknown field") {
		return strings.TrimPrefix(msg, "json: ")
	}
	return "malformed arguments"
}
