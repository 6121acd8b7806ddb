package commands

import (
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erraggy/oascontract/contract"
	"github.com/erraggy/oascontract/internal/cliutil"
	"github.com/erraggy/oascontract/schema"
)

type inspectParameter struct {
	Name     string `json:"name"               yaml:"name"`
	In       string `json:"in"                 yaml:"in"`
	Style    string `json:"style"              yaml:"style"`
	Explode  bool   `json:"explode"            yaml:"explode"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Type     string `json:"type,omitempty"     yaml:"type,omitempty"`
}

type inspectOperation struct {
	ID          string             `json:"operationId"           yaml:"operationId"`
	Method      string             `json:"method"                yaml:"method"`
	Summary     string             `json:"summary,omitempty"     yaml:"summary,omitempty"`
	Tags        []string           `json:"tags,omitempty"        yaml:"tags,omitempty"`
	Deprecated  bool               `json:"deprecated,omitempty"  yaml:"deprecated,omitempty"`
	Parameters  []inspectParameter `json:"parameters,omitempty"  yaml:"parameters,omitempty"`
	RequestBody []string           `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   []string           `json:"responses"             yaml:"responses"`
}

type inspectPath struct {
	Template   string             `json:"template"   yaml:"template"`
	Operations []inspectOperation `json:"operations" yaml:"operations"`
}

type inspectServer struct {
	URL         string `json:"url"                   yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type inspectOutput struct {
	Source          string          `json:"source"                    yaml:"source"`
	Version         string          `json:"openapi"                   yaml:"openapi"`
	Servers         []inspectServer `json:"servers,omitempty"         yaml:"servers,omitempty"`
	Paths           []inspectPath   `json:"paths"                     yaml:"paths"`
	SecuritySchemes []string        `json:"securitySchemes,omitempty" yaml:"securitySchemes,omitempty"`
}

func newInspectCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <spec>",
		Short: "List paths in mount order with their operations and parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadContract(cmd, args[0])
			if err != nil {
				return err
			}
			out := describeContract(c, FormatSpecPath(args[0]))
			if opts.format != FormatText {
				return OutputStructured(cmd.OutOrStdout(), out, opts.format)
			}
			writeInspectText(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func describeContract(c *contract.Contract, source string) inspectOutput {
	out := inspectOutput{
		Source:          source,
		Version:         c.Version(),
		Paths:           make([]inspectPath, 0, len(c.Paths())),
		SecuritySchemes: c.SecuritySchemeNames(),
	}
	for _, s := range c.Servers() {
		out.Servers = append(out.Servers, inspectServer{URL: s.URL, Description: s.Description})
	}
	for _, p := range c.Paths() {
		ip := inspectPath{Template: p.String()}
		for _, op := range p.Operations() {
			ip.Operations = append(ip.Operations, describeOperation(op))
		}
		out.Paths = append(out.Paths, ip)
	}
	return out
}

func describeOperation(op *contract.Operation) inspectOperation {
	out := inspectOperation{
		ID:         op.ID,
		Method:     strings.ToUpper(op.Method),
		Summary:    op.Summary,
		Tags:       op.Tags,
		Deprecated: op.Deprecated,
		Responses:  slices.Sorted(maps.Keys(op.Responses)),
	}
	if op.Default != nil {
		out.Responses = append(out.Responses, "default")
	}
	for _, p := range op.Parameters {
		ip := inspectParameter{
			Name:     p.Name,
			In:       string(p.In),
			Style:    string(p.Style),
			Explode:  p.Explode,
			Required: p.Required,
		}
		if p.Schema != nil {
			ip.Type = schema.TypeOf(p.Schema.Resolved())
		}
		out.Parameters = append(out.Parameters, ip)
	}
	if op.RequestBody != nil {
		for _, m := range op.RequestBody.Content.MediaTypes() {
			out.RequestBody = append(out.RequestBody, m.Name)
		}
	}
	return out
}

func writeInspectText(w io.Writer, out inspectOutput) {
	cliutil.Writef(w, "Contract: %s\n", out.Source)
	cliutil.Writef(w, "OpenAPI:  %s\n", out.Version)
	if len(out.Servers) > 0 {
		cliutil.Writef(w, "Servers:\n")
		for _, s := range out.Servers {
			if s.Description != "" {
				cliutil.Writef(w, "  %s (%s)\n", s.URL, s.Description)
			} else {
				cliutil.Writef(w, "  %s\n", s.URL)
			}
		}
	}
	cliutil.Writef(w, "Paths (%d, mount order):\n", len(out.Paths))
	for _, p := range out.Paths {
		cliutil.Writef(w, "  %s\n", p.Template)
		for _, op := range p.Operations {
			cliutil.Writef(w, "    %-7s %s", op.Method, op.ID)
			if op.Deprecated {
				cliutil.Writef(w, " (deprecated)")
			}
			cliutil.Writef(w, "  responses: %s\n", strings.Join(op.Responses, ", "))
			for _, param := range op.Parameters {
				req := ""
				if param.Required {
					req = " required"
				}
				cliutil.Writef(w, "      %s.%s  %s explode=%t%s\n", param.In, param.Name, param.Style, param.Explode, req)
			}
			if len(op.RequestBody) > 0 {
				cliutil.Writef(w, "      body  %s\n", strings.Join(op.RequestBody, ", "))
			}
		}
	}
	if len(out.SecuritySchemes) > 0 {
		cliutil.Writef(w, "Security schemes: %s\n", strings.Join(out.SecuritySchemes, ", "))
	}
}
