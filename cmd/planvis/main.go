// Package main provides the entry point for the plan selectivity explorer.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dkoriadi/query-plans-visualiser/cmd/planvis/config"
	"github.com/dkoriadi/query-plans-visualiser/pkg/infrastructure/metrics"
	"github.com/dkoriadi/query-plans-visualiser/pkg/infrastructure/pool"
	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
	"github.com/dkoriadi/query-plans-visualiser/pkg/repositories"
	"github.com/dkoriadi/query-plans-visualiser/pkg/repositories/postgres"
	"github.com/dkoriadi/query-plans-visualiser/pkg/services"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "planvis",
	Short: "PostgreSQL plan selectivity explorer",
	Long: `Explore how PostgreSQL's plan choice shifts with predicate selectivity.

planvis templates the numeric predicates of a query, sweeps them across the
selectivity range of each column using the catalog's histogram statistics,
and reports every distinct plan the optimizer picks along the way.`,
}

var exploreCmd = &cobra.Command{
	Use:   "explore [query]",
	Short: "Enumerate plans across the query's selectivity space",
	Long: `Enumerate plans across the query's selectivity space.

Example:
  planvis explore "SELECT * FROM lineitem WHERE l_quantity < 30" --dsn postgres://localhost/tpch
  planvis explore "SELECT * FROM lineitem WHERE l_quantity < 30 AND l_extendedprice > 1000" --resolution 10`,
	Args: cobra.ExactArgs(1),
	RunE: runExplore,
}

var explainCmd = &cobra.Command{
	Use:   "explain [query]",
	Short: "Show the annotated plan for the query as written",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(explainCmd)

	for _, cmd := range []*cobra.Command{exploreCmd, explainCmd} {
		cmd.Flags().StringP("config", "c", "", "config file path")
		cmd.Flags().String("dsn", "", "PostgreSQL connection string")
		cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
		cmd.Flags().Int("resolution", 10, "selectivity samples per predicate axis")
		cmd.Flags().Duration("query-timeout", time.Minute, "per-statement engine timeout")
		cmd.Flags().Bool("metrics", false, "enable Prometheus metrics")
		cmd.Flags().String("metrics-address", ":9090", "metrics server address")
	}
	if err := viper.BindPFlags(exploreCmd.Flags()); err != nil {
		panic(fmt.Errorf("failed to bind flags: %w", err))
	}
	viper.SetEnvPrefix("PLANVIS")
	viper.AutomaticEnv()

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("planvis\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", commit)
			fmt.Printf("Build Date: %s\n", buildDate)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExplore(cmd *cobra.Command, args []string) error {
	explorer, cleanup, err := buildExplorer(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := explorer.Explore(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printResult(os.Stdout, result)
	return nil
}

func runExplain(cmd *cobra.Command, args []string) error {
	explorer, cleanup, err := buildExplorer(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := explorer.ExplainOnly(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printResult(os.Stdout, result)
	return nil
}

// buildExplorer wires configuration, logging, metrics, the connection pool,
// and the repositories into an Explorer. The returned cleanup closes the
// pool and stops the metrics server.
func buildExplorer(cmd *cobra.Command) (services.Explorer, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger := setupLogging(cfg.LogLevel)

	var collector metrics.Collector
	var metricsServer *metrics.MetricsServer
	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheusCollector()
		collector = prom
		metricsServer = metrics.NewMetricsServer(cfg.Metrics.Address, cfg.Metrics.Path)
		go func() {
			if err := metricsServer.Start(prom); err != nil {
				logger.Warn().Err(err).Msg("Metrics server stopped")
			}
		}()
	} else {
		collector = metrics.NewNoOpCollector()
	}

	dbPool, err := pool.New(cmd.Context(), pool.Config{
		DSN:               cfg.DSN,
		MaxConns:          cfg.ConnectionPool.MaxConnections,
		MinConns:          cfg.ConnectionPool.MinConnections,
		MaxConnLifetime:   cfg.ConnectionPool.ConnMaxLifetime,
		MaxConnIdleTime:   cfg.ConnectionPool.ConnMaxIdleTime,
		HealthCheckPeriod: cfg.ConnectionPool.HealthCheckPeriod,
		ConnectTimeout:    cfg.ConnectionPool.ConnectTimeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		dbPool.Close()
		if metricsServer != nil {
			if err := metricsServer.Stop(); err != nil {
				logger.Warn().Err(err).Msg("Failed to stop metrics server")
			}
		}
	}

	serviceLogger := &serviceLoggerAdapter{logger: logger}
	serviceMetrics := &serviceMetricsAdapter{collector: collector}

	plans := &timeoutPlanRepository{
		inner:   postgres.NewPlanRepository(dbPool, logger.With().Str("component", "plan-repository").Logger()),
		timeout: cfg.QueryTimeout,
	}
	stats := postgres.NewStatsRepository(dbPool, logger.With().Str("component", "stats-repository").Logger())

	extractor := services.NewPredicateExtractor(serviceLogger)
	templates := services.NewTemplateService(extractor, serviceLogger)
	explorer := services.NewExplorer(templates, plans, stats, cfg.Resolution, serviceLogger, serviceMetrics)

	return explorer, cleanup, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.DSN = viper.GetString("dsn")
	cfg.LogLevel = viper.GetString("log-level")
	cfg.Resolution = viper.GetInt("resolution")
	cfg.QueryTimeout = viper.GetDuration("query-timeout")
	cfg.Metrics.Enabled = viper.GetBool("metrics")
	cfg.Metrics.Address = viper.GetString("metrics-address")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setupLogging(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", "planvis")

	if logLevel == zerolog.DebugLevel {
		logger = logger.Caller()
	}

	return logger.Logger()
}

// timeoutPlanRepository bounds each engine round trip with the configured
// statement timeout.
type timeoutPlanRepository struct {
	inner   repositories.PlanRepository
	timeout time.Duration
}

func (r *timeoutPlanRepository) Plan(ctx context.Context, query string) (*models.PlanNode, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.Plan(ctx, query)
}

func (r *timeoutPlanRepository) ActualPlan(ctx context.Context, query string) (*models.PlanNode, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.ActualPlan(ctx, query)
}

// Adapter implementations for different interface requirements

// serviceLoggerAdapter adapts zerolog.Logger to services.Logger
type serviceLoggerAdapter struct {
	logger zerolog.Logger
}

func (l *serviceLoggerAdapter) Debug(msg string, keysAndValues ...interface{}) {
	l.emit(l.logger.Debug(), msg, keysAndValues)
}

func (l *serviceLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	l.emit(l.logger.Info(), msg, keysAndValues)
}

func (l *serviceLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	l.emit(l.logger.Warn(), msg, keysAndValues)
}

func (l *serviceLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	l.emit(l.logger.Error(), msg, keysAndValues)
}

func (l *serviceLoggerAdapter) emit(event *zerolog.Event, msg string, keysAndValues []interface{}) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		event = event.Interface(key, keysAndValues[i+1])
	}
	event.Msg(msg)
}

// serviceMetricsAdapter adapts metrics.Collector to services.MetricsCollector
type serviceMetricsAdapter struct {
	collector metrics.Collector
}

func (m *serviceMetricsAdapter) IncrementCounter(name string, labels ...string) {
	m.collector.IncrementCounter(name, labels...)
}

func (m *serviceMetricsAdapter) RecordHistogram(name string, value float64, labels ...string) {
	m.collector.RecordHistogram(name, value, labels...)
}

func (m *serviceMetricsAdapter) RecordGauge(name string, value float64, labels ...string) {
	m.collector.RecordGauge(name, value, labels...)
}

func (m *serviceMetricsAdapter) StartTimer(name string) services.Timer {
	return &serviceTimerAdapter{timer: m.collector.StartTimer(name)}
}

// serviceTimerAdapter adapts metrics.Timer to services.Timer
type serviceTimerAdapter struct {
	timer metrics.Timer
}

func (t *serviceTimerAdapter) Stop() time.Duration {
	seconds := t.timer.Stop()
	return time.Duration(seconds * float64(time.Second))
}
