// Package main provides the entry point for the quill notebook bridge CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TFMV/quill/cmd/quill/config"
	"github.com/TFMV/quill/pkg/infrastructure/metrics"
	"github.com/TFMV/quill/pkg/models"
	"github.com/TFMV/quill/pkg/plan"
	"github.com/TFMV/quill/pkg/serializer"
	"github.com/TFMV/quill/pkg/services"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill notebook bridge",
	Long: `A notebook bridge and query plan visualizer.

Quill converts notebook documents between the host editor model and the
nbformat-style app model, and renders query execution plans as diagrams.`,
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a notebook between host and app representations",
	Long: `Convert a notebook document between the host editor representation and
the app-side serialized form.

Example:
  quill convert --direction to-app --input notebook.host.json --output notebook.ipynb
  quill convert --direction to-host --input notebook.ipynb --output notebook.host.json`,
	RunE: runConvert,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Render a query execution plan as a diagram",
	Long: `Render a query execution plan as a diagram.

The plan comes either from a JSON plan file or from running EXPLAIN against
a DuckDB database.

Example:
  quill plan --input plan.json --format svg --output plan.svg
  quill plan --query "SELECT 1" --database analytics.db --format dot`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(planCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("metrics", false, "enable Prometheus metrics")
	rootCmd.PersistentFlags().String("metrics-address", ":9090", "metrics server address")

	convertCmd.Flags().String("direction", "to-app", "conversion direction (to-app, to-host)")
	convertCmd.Flags().StringP("input", "i", "", "input notebook file")
	convertCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")

	planCmd.Flags().StringP("input", "i", "", "plan JSON file")
	planCmd.Flags().String("query", "", "query to explain against the database")
	planCmd.Flags().String("database", ":memory:", "DuckDB database path")
	planCmd.Flags().String("format", "dot", "output format (dot, svg, png)")
	planCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
	planCmd.Flags().Duration("query-timeout", 5*time.Minute, "explain query timeout")

	// convert and plan share flag names (input, output), so each command
	// binds its own flags right before it runs instead of at init time.
	bindCommandFlags := func(cmd *cobra.Command, args []string) error {
		return viper.BindPFlags(cmd.Flags())
	}
	convertCmd.PreRunE = bindCommandFlags
	planCmd.PreRunE = bindCommandFlags

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(fmt.Errorf("failed to bind flags: %w", err))
	}
	viper.SetEnvPrefix("QUILL")
	viper.AutomaticEnv()

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Quill Notebook Bridge\n")
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

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogging(cfg.LogLevel)
	collector, stopMetrics := setupMetrics(cfg, logger)
	defer stopMetrics()

	adapter := serializer.NewAdapter(serializer.NewJSONSerializer(), logger)
	svc := services.NewNotebookService(
		adapter,
		&serviceLoggerAdapter{logger: logger.With().Str("component", "notebook_service").Logger()},
		&serviceMetricsAdapter{collector: collector},
	)

	input, err := os.ReadFile(viper.GetString("input"))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	ctx := cmd.Context()
	var out []byte
	switch direction := viper.GetString("direction"); direction {
	case "to-app":
		var doc models.HostDocument
		if err := unmarshalHostDocument(input, &doc); err != nil {
			return fmt.Errorf("failed to parse host document: %w", err)
		}
		out, err = svc.Serialize(ctx, doc)
		if err != nil {
			return err
		}
	case "to-host":
		doc, err := svc.Deserialize(ctx, input)
		if err != nil {
			return err
		}
		for i := range doc.Cells {
			if doc.Cells[i].Kind == models.KindCode && doc.Cells[i].Language == "" {
				doc.Cells[i].Language = cfg.Notebook.DefaultLanguage
			}
		}
		out, err = marshalHostDocument(doc)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported direction: %s", direction)
	}

	return writeOutput(viper.GetString("output"), out)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogging(cfg.LogLevel)
	collector, stopMetrics := setupMetrics(cfg, logger)
	defer stopMetrics()

	format, err := plan.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var root *models.PlanNode
	if query := viper.GetString("query"); query != "" {
		source, err := plan.NewDuckDBSource(viper.GetString("database"), logger)
		if err != nil {
			return err
		}
		defer source.Close()

		svc := services.NewPlanService(
			source,
			plan.NewRenderer(logger),
			&serviceLoggerAdapter{logger: logger.With().Str("component", "plan_service").Logger()},
			&serviceMetricsAdapter{collector: collector},
		)

		explainCtx, cancel := context.WithTimeout(ctx, cfg.Plan.QueryTimeout)
		defer cancel()
		root, err = svc.Explain(explainCtx, query)
		if err != nil {
			return err
		}
	} else {
		input, err := os.ReadFile(viper.GetString("input"))
		if err != nil {
			return fmt.Errorf("failed to read plan: %w", err)
		}
		root, err = plan.ParsePlanJSON(input)
		if err != nil {
			return err
		}
	}

	renderer := plan.NewRenderer(logger)
	out, err := renderer.Render(ctx, plan.Flatten(root), format)
	if err != nil {
		return err
	}

	return writeOutput(viper.GetString("output"), out)
}

func loadConfig() (*config.Config, error) {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &config.Config{
		LogLevel: viper.GetString("log-level"),
		Plan: config.PlanConfig{
			Format:       viper.GetString("format"),
			Database:     viper.GetString("database"),
			QueryTimeout: viper.GetDuration("query-timeout"),
		},
		Metrics: config.MetricsConfig{
			Enabled: viper.GetBool("metrics"),
			Address: viper.GetString("metrics-address"),
		},
	}

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
		zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
			short := file
			for i := len(file) - 1; i > 0; i-- {
				if file[i] == '/' {
					short = file[i+1:]
					break
				}
			}
			return fmt.Sprintf("%s:%d", short, line)
		}
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
		Str("service", "quill")

	if logLevel == zerolog.DebugLevel {
		logger = logger.Caller()
	}

	return logger.Logger()
}

// setupMetrics selects the metrics collector and, when enabled, starts the
// Prometheus endpoint. The returned stop function shuts the endpoint down.
func setupMetrics(cfg *config.Config, logger zerolog.Logger) (metrics.Collector, func()) {
	if !cfg.Metrics.Enabled {
		return metrics.NewNoOpCollector(), func() {}
	}

	collector := metrics.NewPrometheusCollector()
	server := metrics.NewMetricsServer(cfg.Metrics.Address, cfg.Metrics.Path)
	go func() {
		logger.Info().Str("address", cfg.Metrics.Address).Msg("Starting metrics server")
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("Failed to start metrics server")
		}
	}()

	return collector, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			logger.Error().Err(err).Msg("Error stopping metrics server")
		}
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
