package mcpserver

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oascontract/contract"
	"github.com/erraggy/oascontract/style"
)

type listOperationsInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The OpenAPI contract"`
	Tag    string    `json:"tag,omitempty"    jsonschema:"Only operations carrying this tag"`
	Method string    `json:"method,omitempty" jsonschema:"Only operations with this HTTP method (case-insensitive)"`
	Offset int       `json:"offset,omitempty" jsonschema:"Skip the first N operations (for pagination)"`
	Limit  int       `json:"limit,omitempty"  jsonschema:"Maximum number of operations to return (default 100)"`
}

type operationSummary struct {
	OperationID string   `json:"operation_id"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Summary     string   `json:"summary,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
	Parameters  []string `json:"parameters,omitempty"`
	RequestBody []string `json:"request_body,omitempty"`
	Responses   []string `json:"responses"`
}

type listOperationsOutput struct {
	ContractID string             `json:"contract_id,omitempty"`
	Version    string             `json:"version"`
	Total      int                `json:"total"`
	Returned   int                `json:"returned"`
	NextOffset int                `json:"next_offset,omitempty"`
	Operations []operationSummary `json:"operations,omitempty"`
}

func handleListOperations(ctx context.Context, _ *mcp.CallToolRequest, input listOperationsInput) (*mcp.CallToolResult, listOperationsOutput, error) {
	c, id, err := input.Spec.resolve(ctx)
	if err != nil {
		return toolError(err), listOperationsOutput{}, nil
	}

	var matched []operationSummary
	for _, p := range c.Paths() {
		for _, op := range p.Operations() {
			if input.Tag != "" && !slices.Contains(op.Tags, input.Tag) {
				continue
			}
			if input.Method != "" && !strings.EqualFold(op.Method, input.Method) {
				continue
			}
			matched = append(matched, summarizeOperation(op))
		}
	}

	pg := paginate(matched, input.Offset, input.Limit)
	return nil, listOperationsOutput{
		ContractID: id,
		Version:    c.Version(),
		Total:      pg.Total,
		Returned:   len(pg.Items),
		NextOffset: pg.Next,
		Operations: pg.Items,
	}, nil
}

func summarizeOperation(op *contract.Operation) operationSummary {
	s := operationSummary{
		OperationID: op.ID,
		Method:      strings.ToUpper(op.Method),
		Path:        op.Path,
		Summary:     op.Summary,
		Tags:        op.Tags,
		Deprecated:  op.Deprecated,
		Responses:   slices.Sorted(maps.Keys(op.Responses)),
	}
	for _, p := range op.Parameters {
		s.Parameters = append(s.Parameters, p.Key())
	}
	if op.Default != nil {
		s.Responses = append(s.Responses, "default")
	}
	if op.RequestBody != nil {
		for _, m := range op.RequestBody.Content.MediaTypes() {
			s.RequestBody = append(s.RequestBody, m.Name)
		}
	}
	return s
}

type routeInput struct {
	Spec   specInput `json:"spec"   jsonschema:"The OpenAPI contract"`
	Method string    `json:"method" jsonschema:"HTTP method, e.g. GET"`
	Path   string    `json:"path"   jsonschema:"Runtime request path, percent-encoded, without query string"`
}

type routeOutput struct {
	ContractID  string            `json:"contract_id,omitempty"`
	OperationID string            `json:"operation_id"`
	Method      string            `json:"method"`
	Template    string            `json:"template"`
	RawParams   map[string]string `json:"raw_params,omitempty"`
	PathParams  map[string]any    `json:"path_params,omitempty"`
}

func handleRoute(ctx context.Context, _ *mcp.CallToolRequest, input routeInput) (*mcp.CallToolResult, routeOutput, error) {
	c, id, err := input.Spec.resolve(ctx)
	if err != nil {
		return toolError(err), routeOutput{}, nil
	}
	path, _, _ := strings.Cut(input.Path, "?")
	r, err := c.Route(path, input.Method)
	if err != nil {
		return toolError(err), routeOutput{}, nil
	}

	out := routeOutput{
		ContractID:  id,
		OperationID: r.Operation.ID,
		Method:      strings.ToUpper(r.Operation.Method),
		Template:    r.Path.String(),
	}
	if len(r.PathParams) > 0 {
		out.RawParams = r.PathParams
		out.PathParams = make(map[string]any, len(r.PathParams))
	}
	for _, p := range r.Operation.Parameters {
		raw, ok := r.PathParams[p.Name]
		if p.In != contract.InPath || !ok {
			continue
		}
		v, err := style.Transform(p.Codec(), raw)
		if err != nil {
			return toolError(err), routeOutput{}, nil
		}
		out.PathParams[p.Name] = v
	}
	return nil, out, nil
}
