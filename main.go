package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ggp/config"
	"ggp/experiments/metrics"
)

var (
	configPath  string
	logLevel    string
	metricsAddr string

	cfg         config.Config
	promMetrics *metrics.PromMetrics

	rootCmd = &cobra.Command{
		Use:           "ggp",
		Short:         "A general game player over compiled logic networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if err := setupLogging(cfg.LogLevel); err != nil {
				return err
			}
			if cfg.MetricsAddr != "" {
				serveMetrics(cfg.MetricsAddr)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.AddCommand(playCmd, experimentCmd, analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	return nil
}

// serveMetrics exposes the search metrics of every player in this process.
func serveMetrics(addr string) {
	reg := prometheus.NewRegistry()
	promMetrics = metrics.NewPromMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
}

// collectorFor returns a Prometheus backed collector when metrics are served.
func collectorFor(role string) metrics.Collector {
	if promMetrics == nil {
		return metrics.NewCollector()
	}
	return metrics.NewPrometheusCollector(promMetrics, role)
}
