// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes contract routing and validation as MCP tools over stdio.
package mcpserver

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oascontract"
	"github.com/erraggy/oascontract/parser"
)

const serverInstructions = `oascontract MCP server: routes requests and validates requests and responses against OpenAPI 3.0/3.1 contracts.

Every tool takes a spec as exactly one of file, url, content or contract_id. Results carry a contract_id; pass it back instead of the document to reuse the cached contract.

Values are given as they travel on the wire: path and query stay percent-encoded, headers and cookies are plain strings, bodies are raw text with a content_type.

Configuration: defaults come from OASCONTRACT_* environment variables set in your MCP client config.
- OASCONTRACT_CACHE_ENABLED (default: true), OASCONTRACT_CACHE_MAX_SIZE (default: 10)
- OASCONTRACT_CACHE_FILE_TTL (default: 15m), OASCONTRACT_CACHE_URL_TTL (default: 5m), OASCONTRACT_CACHE_CONTENT_TTL (default: 15m)
- OASCONTRACT_LIST_LIMIT (default: 100), OASCONTRACT_MAX_LIMIT (default: 1000)
- OASCONTRACT_MAX_INLINE_SIZE, OASCONTRACT_MAX_BODY_SIZE (default: 10MiB each)
- OASCONTRACT_ALLOW_PRIVATE_IPS (default: false), OASCONTRACT_FORMAT_ASSERTIONS (default: false)

Caching: file entries are keyed by path and mtime, so edits are picked up. A background sweeper removes expired entries.`

// logger receives contract construction and validation logs.
var logger parser.Logger = parser.NewSlogAdapter(slog.Default())

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "oascontract", Version: oascontract.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_operations",
		Description: "List the operations of an OpenAPI 3.0/3.1 contract in routing (mount) order: operationId, method, path template, parameters as in.name, request body media types and declared responses. Filter by tag or method. Use offset/limit to paginate; the default limit is configurable via OASCONTRACT_LIST_LIMIT.",
	}, handleListOperations)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "route",
		Description: "Resolve a runtime request path (percent-encoded, may include the server base path) and method to the operation that serves it. Concrete segments beat templated ones, then earlier mounted paths win. Returns the operationId, path template and decoded path parameters.",
	}, handleRoute)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_request",
		Description: "Validate an HTTP request against the contract. The operation is routed from method and path unless operation_id is given. Parameters are decoded from their declared style and checked against their schemas; the body is analyzed by its content type. Returns valid=true with the decoded values, or valid=false with the error kind, location and schema diagnostics.",
	}, handleValidateRequest)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_response",
		Description: "Validate an HTTP response of an operation. The declared response is chosen by exact status, then its range (e.g. 4XX), then default. Headers and body are checked against the declaration. Returns valid=true with decoded values, or valid=false with the error kind, location and schema diagnostics.",
	}, handleValidateResponse)
}

// page is one window of a listing.
type page[T any] struct {
	Items []T
	Total int
	// Next is the offset of the following window, or 0 when this one is
	// the last.
	Next int
}

// paginate cuts items at offset. A non-positive limit means cfg.ListLimit
// and no window is larger than cfg.MaxLimit.
func paginate[T any](items []T, offset, limit int) page[T] {
	p := page[T]{Total: len(items)}
	if offset < 0 || offset >= len(items) {
		return p
	}
	if limit <= 0 {
		limit = cfg.ListLimit
	}
	limit = min(limit, cfg.MaxLimit, len(items)-offset)
	p.Items = items[offset : offset+limit]
	if end := offset + limit; end < len(items) {
		p.Next = end
	}
	return p
}

// fsPath matches absolute filesystem paths under the usual roots. Request
// paths such as /pets/1 do not match.
var fsPath = regexp.MustCompile(`/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)\b(?:/[\w.@+-]+)*/?`)

// redact hides filesystem paths from text returned to clients.
func redact(msg string) string {
	return fsPath.ReplaceAllString(msg, "<path>")
}

// toolError reports err as a failed tool call.
func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: redact(err.Error())}},
	}
}
