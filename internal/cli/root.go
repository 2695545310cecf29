package cli

import (
	"os"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the cafe command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "cafe",
		Short:         "Café storefront server and workers",
		Long:          "Serves the café storefront (menu, cart, checkout) and its back office, and runs the order consumers.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config.yaml", "path to the YAML config file (empty for defaults)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSubscribeCommand(opts))
	cmd.AddCommand(NewMenuCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// loadConfig tolerates a missing default file so the binary runs on
// defaults and environment alone.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "config.yaml" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	return config.Load(path)
}

func newLogger(cfg *config.Config, service string) logger.Logger {
	return logger.NewWithWriter(service, logger.ParseLevel(cfg.Log.Level), os.Stdout)
}
