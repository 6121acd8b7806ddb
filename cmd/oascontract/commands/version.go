package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oascontract"
	"github.com/erraggy/oascontract/internal/cliutil"
)

type versionOutput struct {
	Version   string `json:"version"   yaml:"version"`
	Commit    string `json:"commit"    yaml:"commit"`
	BuildTime string `json:"buildTime" yaml:"buildTime"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

func newVersionCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.format != FormatText {
				return OutputStructured(cmd.OutOrStdout(), versionOutput{
					Version:   oascontract.Version(),
					Commit:    oascontract.Commit(),
					BuildTime: oascontract.BuildTime(),
					GoVersion: oascontract.GoVersion(),
				}, opts.format)
			}
			cliutil.Writef(cmd.OutOrStdout(), "oascontract %s\n%s\n", oascontract.Version(), oascontract.BuildInfo())
			return nil
		},
	}
}
