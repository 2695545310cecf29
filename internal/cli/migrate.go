package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cfg.Database.Enabled() {
				return errors.New("database.host is required to migrate")
			}

			db, err := connectDatabase(cmd.Context(), cfg, newLogger(cfg, "cafe-migrate"))
			if err != nil {
				return err
			}
			db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
