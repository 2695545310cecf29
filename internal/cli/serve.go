package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/adapter/postgres"
	"github.com/YelzhanWeb/cafe/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/cafe/internal/adapter/sqlite"
	"github.com/YelzhanWeb/cafe/internal/adapter/storage"
	"github.com/YelzhanWeb/cafe/internal/app/auth"
	"github.com/YelzhanWeb/cafe/internal/app/cart"
	"github.com/YelzhanWeb/cafe/internal/app/catalog"
	"github.com/YelzhanWeb/cafe/internal/app/checkout"
	"github.com/YelzhanWeb/cafe/internal/app/menu"
	"github.com/YelzhanWeb/cafe/internal/app/order"
	"github.com/YelzhanWeb/cafe/internal/app/preferences"
	"github.com/YelzhanWeb/cafe/internal/app/storefront"
	"github.com/YelzhanWeb/cafe/internal/app/users"
	"github.com/YelzhanWeb/cafe/internal/config"
	"github.com/YelzhanWeb/cafe/internal/currency"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	httpAdapter "github.com/YelzhanWeb/cafe/internal/adapter/http"
)

type ServeOptions struct {
	*RootOptions
	Port int
}

func NewServeCommand(root *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: root}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the storefront HTTP API.

The cart, admin menu and preferences live in the local SQLite file. When a
database is configured the accounts, server menu and orders API is mounted
as well; when RabbitMQ is configured orders are published to the kitchen
and local store changes are relayed to other instances.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "HTTP port (overrides server.port)")
	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Port != 0 {
		cfg.Server.Port = opts.Port
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lgr := newLogger(cfg, "cafe-api")
	origin := uuid.NewString()

	kv, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer kv.Close()

	money, err := currency.New(cfg.Checkout.Currency, cfg.Checkout.Locale)
	if err != nil {
		return err
	}

	var (
		publisher interfaces.MessagePublisher
		mqConn    rabbitmq.Connection
	)
	if cfg.RabbitMQ.Enabled() {
		mqConn, err = rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		defer mqConn.Close()
		publisher = rabbitmq.NewPublisher(mqConn)

		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
			"host": cfg.RabbitMQ.Host,
		})
	}

	store := menu.NewStore(ctx, storage.NewJSON[domain.MenuItem](kv, menu.StorageKey, origin), cfg.Menu.Discontinued, lgr)
	carts := cart.NewSessions(kv, origin, lgr)
	carts.SetIdle(cfg.Checkout.CartIdle)

	var submitter checkout.Submitter = checkout.NewLogSubmitter(lgr)
	if publisher != nil {
		submitter = checkout.NewPublishSubmitter(publisher)
	}
	checkoutService := checkout.NewService(carts, submitter, cfg.Checkout.TaxRate, lgr)

	changes, unsubscribe := kv.Subscribe(64)
	defer unsubscribe()
	watcher := storefront.NewWatcher(origin, carts, store, publisher, lgr)
	go func() {
		if err := watcher.Run(ctx, changes); err != nil && !errors.Is(err, context.Canceled) {
			lgr.Error("watcher_error", "Store watcher stopped", "runtime", nil, err)
		}
	}()
	if mqConn != nil {
		consumer := rabbitmq.NewConsumer(mqConn, 1, lgr)
		go func() {
			if err := consumer.ConsumeStoreChanges(ctx, watcher.HandleStoreChanged); err != nil && !errors.Is(err, context.Canceled) {
				lgr.Error("consumer_error", "Error consuming store changes", "runtime", nil, err)
			}
		}()
	}

	handlers := httpAdapter.Handlers{
		Storefront:   httpAdapter.NewStorefrontHandler(menu.NewCatalog(menu.DefaultSeed(), store), carts, checkoutService, money, lgr),
		AdminCatalog: httpAdapter.NewAdminCatalogHandler(store, lgr),
	}

	if cfg.Database.Enabled() {
		db, err := connectDatabase(ctx, cfg, lgr)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret (JWT_SECRET) is required when a database is configured")
		}

		userRepo := postgres.NewUserRepository(db)
		menuRepo := postgres.NewMenuRepository(db)
		authService := auth.NewService(userRepo, cfg.Auth, lgr)

		handlers.Tokens = authService
		handlers.Auth = httpAdapter.NewAuthHandler(authService, lgr)
		handlers.Menu = httpAdapter.NewMenuHandler(catalog.NewService(menuRepo, lgr), lgr)
		handlers.Orders = httpAdapter.NewOrderHandler(
			order.NewService(postgres.NewOrderRepository(db), menuRepo, publisher, cfg.Checkout.TaxRate, lgr), lgr)
		handlers.Users = httpAdapter.NewUserHandler(users.NewService(userRepo, lgr), lgr)
		handlers.Preferences = httpAdapter.NewPreferencesHandler(preferences.NewService(storage.NewValue(kv, origin), lgr), lgr)
	} else {
		lgr.Warn("database_disabled", "No database configured; serving the storefront only", "startup", nil)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpAdapter.NewRouter(handlers, cfg, lgr),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Cafe API started on port %d", cfg.Server.Port), "startup", map[string]interface{}{
		"port":    cfg.Server.Port,
		"origin":  origin,
		"storage": cfg.Storage.Path,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			lgr.Error("server_error", "Server error", "runtime", nil, err)
			return err
		}
	case <-ctx.Done():
	}

	lgr.Info("shutdown_initiated", "Shutting down Cafe API", "shutdown", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		return err
	}
	return nil
}

func connectDatabase(ctx context.Context, cfg *config.Config, lgr logger.Logger) (postgres.DB, error) {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	if err := postgres.Migrate(ctx, db, lgr); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
