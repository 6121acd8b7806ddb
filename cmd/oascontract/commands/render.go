package commands

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/erraggy/oascontract/contract"
	"github.com/erraggy/oascontract/internal/cliutil"
	"github.com/erraggy/oascontract/schema"
	"github.com/erraggy/oascontract/style"
)

// codecFlags describe a parameter for render and transform.
type codecFlags struct {
	name    string
	in      string
	style   string
	explode bool
	shape   string
}

type codecOutput struct {
	Name    string `json:"name"            yaml:"name"`
	In      string `json:"in"              yaml:"in"`
	Style   string `json:"style"           yaml:"style"`
	Explode bool   `json:"explode"         yaml:"explode"`
	Wire    string `json:"wire"            yaml:"wire"`
	Value   any    `json:"value,omitempty" yaml:"value,omitempty"`
}

func (f *codecFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.name, "name", "n", "", "parameter name (required)")
	fl.StringVar(&f.in, "in", string(contract.InQuery), "parameter location: path, query, header, cookie")
	fl.StringVar(&f.style, "style", "", "serialization style; defaults to the location's default")
	fl.BoolVar(&f.explode, "explode", false, "explode arrays and objects; defaults to the style's default")
	_ = cmd.MarkFlagRequired("name")
}

// param builds the codec description from the flags. Escaping follows the
// location.
func (f *codecFlags) param(cmd *cobra.Command, shape schema.Shape) (*style.Param, error) {
	in := contract.Location(f.in)
	p := &style.Param{Name: f.name, Shape: shape, Location: f.in + "." + f.name}
	switch in {
	case contract.InPath:
		p.Style, p.Escaping = style.Simple, style.EscapePath
	case contract.InQuery:
		p.Style, p.Escaping = style.Form, style.EscapeQuery
	case contract.InHeader:
		p.Style = style.Simple
	case contract.InCookie:
		p.Style = style.Form
	default:
		return nil, fmt.Errorf("invalid --in %q: must be one of path, query, header, cookie", f.in)
	}
	if f.style != "" {
		st, err := style.Parse(f.style)
		if err != nil {
			return nil, err
		}
		p.Style = st
	}
	p.Explode = p.Style.DefaultExplode()
	if cmd.Flags().Changed("explode") {
		p.Explode = f.explode
	}
	return p, nil
}

func (f *codecFlags) output(p *style.Param, wire string, value any) codecOutput {
	return codecOutput{Name: p.Name, In: f.in, Style: string(p.Style), Explode: p.Explode, Wire: wire, Value: value}
}

func newRenderCommand(opts *globalOptions) *cobra.Command {
	flags := &codecFlags{}
	cmd := &cobra.Command{
		Use:   "render <json-value>",
		Short: "Encode a JSON value in a parameter style's wire form",
		Long: `Render encodes a JSON value the way a client would put it on the wire for
the given style and explode setting. The value's JSON shape (array, object
or primitive) selects the grammar. It is the inverse of transform.`,
		Example: `  oascontract render --name color --in query '["blue","black"]'
  oascontract render --name id --in path --style matrix --explode '{"role":"admin"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decodeJSONArg(args[0])
			if err != nil {
				return err
			}
			p, err := flags.param(cmd, shapeOfValue(value))
			if err != nil {
				return err
			}
			wire, err := style.Render(p, value)
			if err != nil {
				return err
			}
			if opts.format != FormatText {
				return OutputStructured(cmd.OutOrStdout(), flags.output(p, wire, value), opts.format)
			}
			cliutil.Writef(cmd.OutOrStdout(), "%s\n", wire)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newTransformCommand(opts *globalOptions) *cobra.Command {
	flags := &codecFlags{}
	cmd := &cobra.Command{
		Use:   "transform <wire-value>",
		Short: "Decode a parameter's wire form into a JSON value",
		Example: `  oascontract transform --name color --in query --shape array 'color=blue&color=black'
  oascontract transform --name id --in path --style label --shape array '.3.4.5'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, err := parseShape(flags.shape)
			if err != nil {
				return err
			}
			p, err := flags.param(cmd, shape)
			if err != nil {
				return err
			}
			value, err := style.Transform(p, args[0])
			if err != nil {
				return err
			}
			if opts.format != FormatText {
				return OutputStructured(cmd.OutOrStdout(), flags.output(p, args[0], value), opts.format)
			}
			return OutputStructured(cmd.OutOrStdout(), value, FormatJSON)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&flags.shape, "shape", "primitive", "value shape: primitive, array, object")
	return cmd
}

func decodeJSONArg(arg string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(arg)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("value must be JSON: %w", err)
	}
	return style.NormalizeNumbers(v), nil
}

func shapeOfValue(v any) schema.Shape {
	switch v.(type) {
	case []any:
		return schema.ShapeArray
	case map[string]any:
		return schema.ShapeObject
	default:
		return schema.ShapePrimitive
	}
}

func parseShape(s string) (schema.Shape, error) {
	switch s {
	case "", "primitive":
		return schema.ShapePrimitive, nil
	case "array":
		return schema.ShapeArray, nil
	case "object":
		return schema.ShapeObject, nil
	default:
		return 0, fmt.Errorf("invalid --shape %q: must be one of primitive, array, object", s)
	}
}
