// Package cli implements the lukis command-line interface.
//
// # Commands
//
//   - paint: open the camera and paint with a fingertip
//   - drawings: list, export and delete saved drawings
//   - config: print the effective configuration
//
// All commands accept --verbose (-v) for debug logging and --config to read
// a configuration file other than ~/.lukis/config.toml. The logger travels
// to commands through their context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/lukis/internal/config"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootOptions holds the persistent flags shared by all commands.
type rootOptions struct {
	verbose    bool
	configPath string
}

// load reads the configuration file named by --config, or the default one.
func (o *rootOptions) load() (config.Config, error) {
	path := o.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	return config.Load(path)
}

// Execute runs the lukis CLI until ctx is cancelled or the command returns.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "lukis",
		Short:        "Lukis paints on the webcam picture with your fingertip",
		Long:         `Lukis tracks the index fingertip of one hand through the webcam and draws its path on a canvas overlaid on the video or on a plain whiteboard.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("lukis %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "configuration file (default ~/.lukis/config.toml)")

	root.AddCommand(newPaintCmd(opts))
	root.AddCommand(newDrawingsCmd(opts))
	root.AddCommand(newConfigCmd(opts))

	return root
}
