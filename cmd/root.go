package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/holocron/config"
	"github.com/s0up4200/holocron/filter"
	"github.com/s0up4200/holocron/render"
	"github.com/s0up4200/holocron/swapi"
	"github.com/s0up4200/holocron/telemetry"
)

var (
	cfgFile   string
	cfg       *config.Config
	logger    zerolog.Logger
	client    *swapi.Client
	filters   *filter.Manager
	formatter = render.NewConsoleFormatter()
	shutdown  telemetry.ShutdownFunc
)

// errRendered marks a failure that was already shown to the user as an error view
var errRendered = errors.New("view failed")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "holocron",
	Short: "Browse planets, residents and films from the Star Wars API",
	Long: `holocron is a CLI for browsing the public Star Wars API (SWAPI).

List and search planets page by page, narrow a page down with filter
expressions, and show a planet with its residents (including their species
and vehicles) and the films it appears in.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	teardownApp()

	if err != nil {
		if !errors.Is(err, errRendered) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(planetsCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// initializeApp loads the configuration and creates the SWAPI client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging, isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))

	shutdown, err = telemetry.Setup(cmd.Context(), cfg.Telemetry, version, logger)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}

	opts := []swapi.Option{
		swapi.WithTimeout(cfg.API.Timeout),
		swapi.WithUserAgent(userAgent(cfg.API.UserAgent)),
	}
	if cfg.Telemetry.Enabled {
		opts = append(opts, swapi.WithTracing())
	}

	client, err = swapi.NewClient(cfg.API.URL, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SWAPI client: %w", err)
	}

	filters, err = newFilterManager(cfg.Filter)
	if err != nil {
		return err
	}

	logger.Debug().Str("url", client.BaseURL()).Msg("Client ready")
	return nil
}

// newFilterManager sizes the evaluation pool and compiles the presets
func newFilterManager(cfg config.FilterConfig) (*filter.Manager, error) {
	var opts []filter.EvaluatorOption
	if cfg.Workers > 0 {
		opts = append(opts, filter.WithWorkers(cfg.Workers))
	}
	if cfg.BatchSize > 0 {
		opts = append(opts, filter.WithBatchSize(cfg.BatchSize))
	}

	m := filter.NewManager(filter.WithEvaluator(filter.NewConcurrentEvaluator(opts...)))
	if err := m.RegisterPresets(cfg.Presets); err != nil {
		_ = m.Close(context.Background())
		return nil, fmt.Errorf("invalid filter preset: %w", err)
	}
	return m, nil
}

// teardownApp flushes traces and stops the filter workers. It runs after
// every command, failed ones included.
func teardownApp() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if filters != nil {
		if err := filters.Close(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to stop filter workers")
		}
	}
	if shutdown != nil {
		if err := shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}
}

// setupLogger configures the zerolog logger. Colour is only used when
// enabled in the config and stderr is a terminal.
func setupLogger(cfg config.LoggingConfig, terminal bool) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !terminal,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// userAgent appends the build version to the configured product name
func userAgent(product string) string {
	if product == "" {
		product = "holocron"
	}
	if strings.Contains(product, "/") {
		return product
	}
	return product + "/" + version
}
