package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/idleforge/internal/config"
	"github.com/felixgeelhaar/idleforge/internal/ux"
)

// CommandContext holds the resolved configuration and output settings
// of one command invocation.
type CommandContext struct {
	Config  config.Config
	Output  string
	NoColor bool
	Out     io.Writer
	ErrOut  io.Writer
}

// NewCommandContext loads the config file and environment, then
// applies the flags the user set explicitly.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	flags := cmd.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"packs-dir", &cfg.PacksDir},
		{"equipment", &cfg.EquipmentFile},
		{"storage", &cfg.Storage.Backend},
		{"storage-path", &cfg.Storage.Path},
		{"log-level", &cfg.Log.Level},
		{"log-format", &cfg.Log.Format},
	}
	for _, o := range overrides {
		if !flags.Changed(o.flag) {
			continue
		}
		if *o.target, err = flags.GetString(o.flag); err != nil {
			return nil, err
		}
	}
	if flags.Changed("packs") {
		if cfg.ActivePacks, err = flags.GetStringSlice("packs"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	output, err := flags.GetString("output")
	if err != nil {
		return nil, err
	}
	if !slices.Contains(ux.Formats, output) {
		return nil, fmt.Errorf("invalid argument %q for \"--output\" flag: must be one of %v", output, ux.Formats)
	}
	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Config:  cfg,
		Output:  output,
		NoColor: noColor,
		Out:     cmd.OutOrStdout(),
		ErrOut:  cmd.ErrOrStderr(),
	}, nil
}

// Print writes data in the selected output format.
func (c *CommandContext) Print(data any) error {
	f, err := ux.NewFormatter(c.Output, &ux.FormatterOptions{Writer: c.Out, NoColor: c.NoColor})
	if err != nil {
		return err
	}
	return f.Format(data)
}
