package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightd/insightd/pkg/api"
	"github.com/insightd/insightd/pkg/config"
	"github.com/insightd/insightd/pkg/logging"
	"github.com/insightd/insightd/pkg/metrics"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

// serveFlags holds the flag values for the serve command. Flags override the
// configuration file, which overrides built-in defaults.
type serveFlags struct {
	configFile string
	host       string
	port       int
	prefix     string
	namespace  string
	logLevel   string
	logFormat  string
}

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

// serveCmd starts the gateway in the foreground.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the metrics gateway (foreground)",
	Example: `  # Start with defaults
  insightd serve

  # Start with a config file on a custom port
  insightd serve --config insightd.yaml --port 3000

  # Change how pushed metric names are qualified
  insightd serve --prefix app --namespace payments`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServeWithFlags(&serveFlagVals)
	},
}

func initServeCmd() {
	rootCmd.AddCommand(serveCmd)

	f := &serveFlagVals
	serveCmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to configuration file")
	serveCmd.Flags().StringVar(&f.host, "host", "", "Listen host (overrides config)")
	serveCmd.Flags().IntVarP(&f.port, "port", "p", 0, "Listen port (overrides config)")
	serveCmd.Flags().StringVar(&f.prefix, "prefix", "", "Metric name prefix (overrides config)")
	serveCmd.Flags().StringVar(&f.namespace, "namespace", "", "Metric name namespace (overrides config)")
	serveCmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log format: text, json")
}

func runServeWithFlags(f *serveFlags) error {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return err
	}

	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if f.prefix != "" {
		cfg.Metrics.Prefix = f.prefix
	}
	if f.namespace != "" {
		cfg.Metrics.Namespace = f.namespace
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Logging.Format = f.logFormat
	}

	// Flag overrides can invalidate a previously valid config.
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: logging.ParseFormat(cfg.Logging.Format),
	})

	registry := metrics.NewRegistry(
		metrics.WithPrefix(cfg.Metrics.Prefix),
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithLogger(log),
	)
	collector := metrics.NewCollector(registry)
	collector.SetLogger(log)

	server := api.New(api.Config{
		Addr:            cfg.Server.Addr(),
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MetricsEndpoint: cfg.Metrics.Endpoint,
		Version:         buildInfo.Version,
	}, collector)
	server.SetLogger(log)

	if err := server.Start(); err != nil {
		return err
	}
	log.Info("metrics gateway running",
		"addr", cfg.Server.Addr(),
		"exposition", cfg.Metrics.Endpoint,
		"prefix", cfg.Metrics.Prefix,
		"namespace", cfg.Metrics.Namespace,
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Stop(ctx)
}
