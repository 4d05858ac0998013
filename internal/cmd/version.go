package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/idleforge/internal/save"
	"github.com/felixgeelhaar/idleforge/internal/ux"
	"github.com/felixgeelhaar/idleforge/internal/version"
)

func newVersionCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, platform and the save format version.`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
	c.Flags().BoolP("verbose", "v", false, "show detailed version information")
	return c
}

type versionResult struct {
	version.Info `yaml:",inline"`
	verbose      bool
}

func (r versionResult) RenderText(ux.Styles) string {
	if r.verbose {
		return r.Info.String()
	}
	return "idleforge " + r.Version
}

func runVersion(cmd *cobra.Command, _ []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	f, err := ux.NewFormatter(output, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	return f.Format(versionResult{Info: version.GetInfo(save.CurrentVersion), verbose: verbose})
}
