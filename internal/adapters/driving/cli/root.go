// Package cli implements the quarry command-line interface using cobra.
// Commands share a single wired research service; adapters are
// constructed once in the root command's persistent pre-run.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/quarry-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/quarry-cli/internal/adapters/driven/provider/exa"
	"github.com/custodia-labs/quarry-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quarry-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/quarry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quarry-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quarry-cli/internal/core/services"
	"github.com/custodia-labs/quarry-cli/internal/logger"
	"github.com/custodia-labs/quarry-cli/internal/normalisers/webtext"
)

// version is overridden at build time via ldflags.
var version = "0.1.0"

var (
	verbose bool
	noCache bool
)

// Shared service instances wired by initServices. Tests swap these for
// mocks before executing commands.
var (
	configStore     driven.ConfigStore
	cacheStore      driven.CacheStore
	researchService driving.ResearchService
)

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Cached web research for the terminal and AI assistants",
	Long: `Quarry runs web research queries through a search provider and caches
every result locally. Repeated queries are answered from the cache
without touching the network, and partially cached queries only fetch
what is missing.`,
	PersistentPreRunE: initServices,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "keep results in memory only, do not persist")
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// initServices wires adapters into the core service before any command
// runs. A pre-populated research service (from tests) is left alone.
func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if researchService != nil {
		return nil
	}

	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configStore = cfg
	logger.Debug("Config loaded from %s", cfg.Path())

	if noCache {
		cacheStore = memory.NewCacheStore()
		logger.Debug("Persistence disabled, using in-memory cache store")
	} else {
		store, err := sqlite.NewStore(cfg.GetString("cache.dir"))
		if err != nil {
			return fmt.Errorf("opening cache store: %w", err)
		}
		cacheStore = store
		logger.Debug("Cache store opened at %s", store.Path())
	}

	apiKey := cfg.GetString("provider.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("EXA_API_KEY")
	}
	if apiKey == "" {
		logger.Warn("No provider API key configured; only cached results will be available")
	}

	provider := exa.NewClient(exa.Config{
		APIKey:         apiKey,
		BaseURL:        cfg.GetString("provider.base_url"),
		MaxAttempts:    cfg.GetInt("provider.max_attempts"),
		AttemptTimeout: configDuration(cfg, "provider.timeout"),
		OverallTimeout: configDuration(cfg, "provider.overall_timeout"),
		Rate:           cfg.GetFloat("provider.rate"),
	})

	normaliser := webtext.New(cfg.GetStringSlice("normaliser.boilerplate_markers"))

	svc := services.NewResearchService(cacheStore, provider, normaliser)
	if maxAge := configDuration(cfg, "cache.max_age"); maxAge > 0 {
		svc.SetMaxAge(maxAge)
	}
	researchService = svc

	return nil
}

// configDuration reads a duration-valued config key. Unset or invalid
// values read as zero, which adapters treat as "use the default".
func configDuration(cfg driven.ConfigStore, key string) time.Duration {
	raw := cfg.GetString(key)
	if raw == "" {
		return 0
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("Invalid duration for %s: %q, using default", key, raw)
		return 0
	}
	return d
}

func closeServices() {
	if cacheStore != nil {
		if err := cacheStore.Close(); err != nil {
			logger.Warn("Closing cache store: %v", err)
		}
	}
}
