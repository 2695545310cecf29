package cli

import (
	"fmt"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/adapter/sqlite"
	"github.com/YelzhanWeb/cafe/internal/adapter/storage"
	"github.com/YelzhanWeb/cafe/internal/app/menu"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/spf13/cobra"
)

type MenuOptions struct {
	*RootOptions
	Category     string
	Availability string
}

// NewMenuCommand prints the storefront menu as customers see it: the seed
// merged with the admin store in the local file.
func NewMenuCommand(root *RootOptions) *cobra.Command {
	opts := &MenuOptions{RootOptions: root}

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the reconciled storefront menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.RootOptions)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			kv, err := sqlite.Open(cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("failed to open local store: %w", err)
			}
			defer kv.Close()

			store := menu.NewStore(cmd.Context(), storage.NewJSON[domain.MenuItem](kv, menu.StorageKey, "cli"), cfg.Menu.Discontinued, logger.Nop())
			items := menu.NewCatalog(menu.DefaultSeed(), store).Filter(domain.CatalogFilter{
				Category:     opts.Category,
				Availability: opts.Availability,
			})
			return menu.RenderTable(cmd.OutOrStdout(), items)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "only show this category")
	cmd.Flags().StringVar(&opts.Availability, "availability", "all", "all|available|unavailable")
	return cmd
}
