// Package cli implements the ssl-toolbox command line: the HTTP server and
// terminal front ends for the certificate and time tools.
package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/andres10976/ssl-toolbox/backend/internal/config"
	"github.com/andres10976/ssl-toolbox/backend/internal/logging"
)

type options struct {
	configPath string
	asJSON     bool
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "ssl-toolbox",
		Short:         "SSL certificate and encoding toolbox",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, version)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file (default $"+config.PathEnv+")")

	root.AddCommand(
		newServeCommand(opts, version),
		newCheckCommand(opts),
		newDecodeCommand(opts),
		newEpochCommand(opts),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	root := NewRootCommand(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (o *options) load() (*config.Config, error) {
	return config.Load(o.configPath)
}

// toolLogger logs to stderr so stdout carries only results.
func toolLogger(cfg *config.Config, stderr io.Writer) (*logrus.Logger, error) {
	return logging.New(cfg.LogLevel, "text", stderr)
}
