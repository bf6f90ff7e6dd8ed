package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/popuptinybar/tinybar/internal/events"
	"github.com/popuptinybar/tinybar/internal/export"
	"github.com/popuptinybar/tinybar/internal/simulator"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate synthetic quote requests and stream the priced results",
	Long: `simulate draws quote requests between start and end date, prices them and writes
the resulting events to Kafka when enabled, to partitioned files when an output
path or cloud destination is configured, and to stdout otherwise.`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.Int64("seed", 42, "Random seed for simulation")
	f.Int("quote-count", 1000, "Number of quote requests to generate")
	f.String("start-date", "", "Start date for simulation (RFC3339)")
	f.String("end-date", "", "End date for simulation (RFC3339)")
	f.Bool("save", false, "Store valid quotes through the quote service")
	f.String("database-url", "", "Postgres connection string used with --save")
	f.Bool("kafka-enabled", false, "Enable Kafka output")
	f.String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	f.String("output-path", "", "Write partitioned files under this directory")
	f.String("output-format", "parquet", "Output file format (parquet, json, csv)")
	f.String("output-destination", "local", "Output destination (local or s3)")
	rootCmd.AddCommand(simulateCmd)
}

func newSimulationDestination(cmd *cobra.Command) (events.OutputDestination, error) {
	switch {
	case cfg.KafkaEnabled:
		producer, err := events.NewSaramaProducer(cfg.KafkaBrokers(), logger)
		if err != nil {
			return nil, err
		}
		return producer, nil
	case cfg.OutputPath != "" || cfg.OutputDestination == "s3":
		sink, err := export.NewSink(cmd.Context(), cfg)
		if err != nil {
			return nil, err
		}
		return export.New(cfg.OutputFormat, sink)
	default:
		return events.NewConsoleOutput(cmd.OutOrStdout()), nil
	}
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	calc, err := newCalculator(cfg)
	if err != nil {
		return err
	}
	dest, err := newSimulationDestination(cmd)
	if err != nil {
		return err
	}
	emitter := events.NewEmitter(dest, cfg.KafkaTopicPrefix, logger)
	defer func() {
		if err := emitter.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close output")
		}
	}()

	opts := []simulator.Option{simulator.WithProgress(cmd.ErrOrStderr())}
	if cfg.Simulation.SaveQuotes {
		st, err := openStores(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.close()
		opts = append(opts, simulator.WithStorage(st.quotes, st.customers))
	}

	sim := simulator.NewSimulator(cfg, calc, emitter, logger, opts...)
	metrics, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	return simulator.WriteReport(cmd.ErrOrStderr(), metrics)
}
