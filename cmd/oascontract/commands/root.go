package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/erraggy/oascontract/contract"
	"github.com/erraggy/oascontract/parser"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	format  string
	verbose bool
}

// NewRootCommand builds the oascontract command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "oascontract",
		Short: "Route and validate HTTP traffic against OpenAPI 3.0/3.1 contracts",
		Long: `oascontract loads an OpenAPI 3.0 or 3.1 document into a contract and uses it
to route requests, decode parameters and validate requests and responses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return ValidateOutputFormat(opts.format)
		},
	}
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", FormatText, "output format: text, json, yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newInspectCommand(opts),
		newRouteCommand(opts),
		newValidateRequestCommand(opts),
		newValidateResponseCommand(opts),
		newRenderCommand(opts),
		newTransformCommand(opts),
		newMCPCommand(),
		newVersionCommand(opts),
	)
	return root
}

func (o *globalOptions) logger() parser.Logger {
	if !o.verbose {
		return parser.NopLogger{}
	}
	return parser.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// loadContract parses specPath, or stdin for "-", into a contract.
func (o *globalOptions) loadContract(cmd *cobra.Command, specPath string) (*contract.Contract, error) {
	log := o.logger()
	popts := []parser.Option{parser.WithLogger(log)}
	if specPath == StdinFilePath {
		popts = append(popts, parser.WithReader(cmd.InOrStdin()))
	} else {
		popts = append(popts, parser.WithFilePath(specPath))
	}
	res, err := parser.ParseWithOptions(popts...)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FormatSpecPath(specPath), err)
	}
	c, err := contract.FromParseResult(res, contract.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", FormatSpecPath(specPath), err)
	}
	return c, nil
}
