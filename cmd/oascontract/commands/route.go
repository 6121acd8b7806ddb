package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/erraggy/oascontract/contract"
	"github.com/erraggy/oascontract/internal/cliutil"
	"github.com/erraggy/oascontract/style"
)

type routeOutput struct {
	OperationID string            `json:"operationId"          yaml:"operationId"`
	Method      string            `json:"method"               yaml:"method"`
	Template    string            `json:"template"             yaml:"template"`
	RawParams   map[string]string `json:"rawParams,omitempty"  yaml:"rawParams,omitempty"`
	PathParams  map[string]any    `json:"pathParams,omitempty" yaml:"pathParams,omitempty"`
}

func newRouteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "route <spec> <method> <path>",
		Short: "Resolve a runtime path and method to an operation",
		Long: `Route resolves a runtime request path (still percent-encoded) and method to
the operation that serves it and decodes its path parameters.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadContract(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := routePath(c, args[1], args[2])
			if err != nil {
				return err
			}
			if opts.format != FormatText {
				return OutputStructured(cmd.OutOrStdout(), out, opts.format)
			}
			w := cmd.OutOrStdout()
			cliutil.Writef(w, "%s %s -> %s\n", out.Method, out.Template, out.OperationID)
			for _, p := range routeParamNames(c, out) {
				cliutil.Writef(w, "  %s = %v (%T)\n", p, out.PathParams[p], out.PathParams[p])
			}
			return nil
		},
	}
}

// routePath routes path and decodes every path parameter the operation
// declares. Values are decoded by style only; schema checks are left to
// validate-request.
func routePath(c *contract.Contract, method, path string) (routeOutput, error) {
	r, err := c.Route(path, method)
	if err != nil {
		return routeOutput{}, err
	}
	out := routeOutput{
		OperationID: r.Operation.ID,
		Method:      strings.ToUpper(r.Operation.Method),
		Template:    r.Path.String(),
		RawParams:   r.PathParams,
	}
	for _, p := range r.Operation.Parameters {
		if p.In != contract.InPath {
			continue
		}
		raw, ok := r.PathParams[p.Name]
		if !ok {
			continue
		}
		v, err := style.Transform(p.Codec(), raw)
		if err != nil {
			return routeOutput{}, err
		}
		if out.PathParams == nil {
			out.PathParams = make(map[string]any)
		}
		out.PathParams[p.Name] = v
	}
	return out, nil
}

// routeParamNames lists decoded parameters in declaration order.
func routeParamNames(c *contract.Contract, out routeOutput) []string {
	op, err := c.Operation(out.OperationID)
	if err != nil {
		return nil
	}
	var names []string
	for _, p := range op.Parameters {
		if _, ok := out.PathParams[p.Name]; ok && p.In == contract.InPath {
			names = append(names, p.Name)
		}
	}
	return names
}
