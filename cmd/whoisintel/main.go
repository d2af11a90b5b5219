// whoisintel resolves ownership and registration metadata for domains and
// IP addresses across multiple upstream registries.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/commjoen/whoisintel/internal/cache"
	"github.com/commjoen/whoisintel/internal/config"
	"github.com/commjoen/whoisintel/internal/dispatch"
	"github.com/commjoen/whoisintel/internal/dnscheck"
	"github.com/commjoen/whoisintel/internal/lookup"
	"github.com/commjoen/whoisintel/internal/metrics"
	"github.com/commjoen/whoisintel/internal/output"
	"github.com/commjoen/whoisintel/internal/providers"
	"github.com/commjoen/whoisintel/internal/server"
)

var (
	// CLI flags
	format   string
	force    bool
	raw      bool
	dnsCheck bool
	verbose  bool

	// Version information (set during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "whoisintel",
	Short:   "WHOIS/RDAP registration data resolver",
	Version: version,
	Long: `whoisintel resolves ownership and registration metadata for a domain
name or IP address by querying one or more upstream registries (raw WHOIS,
RDAP, the Turkish TRABIS registry and optional commercial APIs), normalizing
their output into a common schema and returning a merged result with
caching, rate limiting and multi-provider failover.`,
	Example: `  # Look up a domain
  whoisintel lookup example.com

  # Look up an IP over RDAP, JSON output
  whoisintel lookup 93.184.216.34 --format json

  # Bypass the cache
  whoisintel lookup example.com --force

  # Run the HTTP API
  whoisintel serve`,
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <domain-or-ip>",
	Short: "Resolve registration data for a single query",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP lookup API",
	Long: `Run the HTTP lookup API. With WHOISINTEL_WORKERS set, this instance
coordinates: queries are forwarded to the workers round-robin and resolved
locally whenever a forward fails.`,
	RunE: runServe,
}

func init() {
	lookupCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	lookupCmd.Flags().BoolVar(&force, "force", false, "Bypass the cache read (the result is still cached)")
	lookupCmd.Flags().BoolVar(&raw, "raw", false, "Include the raw registry response in text output")
	lookupCmd.Flags().BoolVar(&dnsCheck, "dnscheck", false, "Cross-check registry nameservers against live DNS")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(serveCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildService assembles the resolution stack from configuration.
func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*lookup.Service, cache.Store, error) {
	var providerSet []providers.Provider
	if cfg.EnableTrabis {
		providerSet = append(providerSet, providers.NewTrabisProvider(cfg.TrabisHost, cfg.Timeout))
	}
	if cfg.EnableRDAP {
		providerSet = append(providerSet, providers.NewRDAPProvider(cfg.RDAPBaseURL, cfg.Timeout))
	}
	if cfg.EnableWhois {
		providerSet = append(providerSet, providers.NewWhoisProvider(cfg.Timeout))
	}
	if cfg.APINinjasKey != "" {
		providerSet = append(providerSet, providers.NewAPINinjasProvider("", cfg.APINinjasKey, cfg.Timeout))
	}
	if len(providerSet) == 0 {
		return nil, nil, fmt.Errorf("no providers enabled")
	}

	manager := providers.NewManager(providerSet, providers.ManagerConfig{
		Quota:       cfg.RateQuota,
		Window:      cfg.RateWindow,
		MaxAttempts: cfg.MaxAttempts,
		BackoffBase: cfg.BackoffBase,
		Logger:      logger,
	})

	var store cache.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis cache: %w", err)
		}
		store = redisStore
		logger.Info("using redis cache", "url", cfg.RedisURL)
	} else {
		store = cache.NewMemory()
	}

	var engineMetrics *metrics.Metrics
	if reg != nil {
		engineMetrics = metrics.New(reg)
	}

	service, err := lookup.New(lookup.Config{
		Manager:     manager,
		Store:       store,
		Checker:     dnscheck.NewChecker(cfg.Timeout),
		Metrics:     engineMetrics,
		Logger:      logger,
		SuccessTTL:  cfg.SuccessTTL,
		NotFoundTTL: cfg.NotFoundTTL,
	})
	if err != nil {
		return nil, nil, err
	}
	return service, store, nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(format, raw)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	service, _, err := buildService(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}

	result := service.Lookup(ctx, args[0], lookup.Options{
		Force:    force,
		DNSCheck: dnsCheck,
	})
	if err := formatter.Write(os.Stdout, result); err != nil {
		return err
	}
	if !result.Success && !result.NotFound {
		return fmt.Errorf("lookup failed for %q", args[0])
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry := prometheus.NewRegistry()
	service, store, err := buildService(ctx, cfg, logger, registry)
	if err != nil {
		return err
	}

	var resolver server.Resolver = service
	if len(cfg.Workers) > 0 {
		logger.Info("coordinating over workers", "workers", cfg.Workers)
		resolver = dispatch.New(cfg.Workers, service, cfg.ForwardTimeout, logger)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(resolver, store, registry, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
