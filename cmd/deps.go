package cmd

import (
	"context"
	"fmt"

	"github.com/popuptinybar/tinybar/internal/db"
	"github.com/popuptinybar/tinybar/internal/events"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/popuptinybar/tinybar/internal/repositories"
	"github.com/popuptinybar/tinybar/internal/repositories/memory"
	"github.com/popuptinybar/tinybar/internal/repositories/postgres"
	"github.com/rs/zerolog"
)

func newCalculator(cfg *models.Config) (*pricing.Calculator, error) {
	rates, err := pricing.LoadRates(cfg.RatesFile)
	if err != nil {
		return nil, err
	}
	return pricing.NewCalculator(rates)
}

type stores struct {
	quotes    repositories.QuoteRepository
	customers repositories.CustomerRepository
	close     func()
}

// openStores uses Postgres when database_url is set and in-memory
// repositories otherwise.
func openStores(ctx context.Context, cfg *models.Config, logger zerolog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("database_url not set, quotes are kept in memory")
		return &stores{
			quotes:    memory.NewQuoteRepository(),
			customers: memory.NewCustomerRepository(),
			close:     func() {},
		}, nil
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info().Msg("connected to postgres")
	return &stores{
		quotes:    postgres.NewQuoteRepository(pool),
		customers: postgres.NewCustomerRepository(pool),
		close:     pool.Close,
	}, nil
}

func requireDatabase(cfg *models.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url is required for this command")
	}
	return nil
}

// newKafkaEmitter returns nil when Kafka output is disabled.
func newKafkaEmitter(cfg *models.Config, logger zerolog.Logger) (*events.Emitter, error) {
	if !cfg.KafkaEnabled {
		return nil, nil
	}
	producer, err := events.NewSaramaProducer(cfg.KafkaBrokers(), logger)
	if err != nil {
		return nil, err
	}
	return events.NewEmitter(producer, cfg.KafkaTopicPrefix, logger), nil
}
