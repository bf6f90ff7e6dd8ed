package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/popuptinybar/tinybar/internal/api"
	"github.com/popuptinybar/tinybar/internal/quotes"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quoting HTTP API",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("http-addr", ":8080", "Address to listen on")
	f.String("database-url", "", "Postgres connection string (in-memory storage when empty)")
	f.Bool("kafka-enabled", false, "Publish quote events to Kafka")
	f.String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	f.Int("expiry-days", 30, "Days before a pending quote expires")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	calc, err := newCalculator(cfg)
	if err != nil {
		return err
	}
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	emitter, err := newKafkaEmitter(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := emitter.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event producer")
		}
	}()
	var publisher quotes.Publisher
	if emitter != nil {
		publisher = emitter
	}

	svc := quotes.NewService(calc, st.quotes, st.customers, publisher, logger,
		quotes.WithExpiryDays(cfg.QuoteExpiryDays))
	handler := api.NewHandler(svc, api.NewMetrics(), logger)
	srv := api.NewServer(cfg.HTTPAddr, api.NewRouter(handler))

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
