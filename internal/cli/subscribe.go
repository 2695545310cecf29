package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/YelzhanWeb/cafe/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/cafe/internal/app/kitchen"
	"github.com/YelzhanWeb/cafe/internal/currency"
	"github.com/spf13/cobra"

	amqpAdapter "github.com/YelzhanWeb/cafe/internal/adapter/amqp"
)

type SubscribeOptions struct {
	*RootOptions
	Prefetch int
}

// NewSubscribeCommand runs one of the RabbitMQ consumers until interrupted.
func NewSubscribeCommand(root *RootOptions) *cobra.Command {
	opts := &SubscribeOptions{RootOptions: root}

	cmd := &cobra.Command{
		Use:       "subscribe <kitchen|notifications>",
		Short:     "Consume placed orders or status notifications",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"kitchen", "notifications"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubscribe(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Prefetch, "prefetch", 1, "RabbitMQ prefetch count")
	return cmd
}

func runSubscribe(ctx context.Context, opts *SubscribeOptions, mode string) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.RabbitMQ.Enabled() {
		return errors.New("rabbitmq.host is required to subscribe")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lgr := newLogger(cfg, "cafe-"+mode)

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, opts.Prefetch, lgr)

	lgr.Info("service_started", fmt.Sprintf("Subscriber %s started", mode), "startup", map[string]interface{}{
		"prefetch": opts.Prefetch,
	})

	var consumeErr error
	switch mode {
	case "kitchen":
		money, err := currency.New(cfg.Checkout.Currency, cfg.Checkout.Locale)
		if err != nil {
			return err
		}
		handler := amqpAdapter.NewOrderHandler(kitchen.NewService(os.Stdout, money, lgr), lgr)
		consumeErr = consumer.ConsumeOrders(ctx, handler.HandleOrder)
	default:
		handler := amqpAdapter.NewNotificationHandler(os.Stdout, lgr)
		consumeErr = consumer.ConsumeNotifications(ctx, handler.HandleNotification)
	}

	lgr.Info("shutdown_initiated", fmt.Sprintf("Shutting down %s subscriber", mode), "shutdown", nil)
	if consumeErr != nil && !errors.Is(consumeErr, context.Canceled) {
		return consumeErr
	}
	return nil
}
