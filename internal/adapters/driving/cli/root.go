// Package cli provides the command-line interface for docquery.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docquery/internal/adapters/driven/ai"
	"github.com/custodia-labs/docquery/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docquery/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docquery/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docquery/internal/chunker"
	"github.com/custodia-labs/docquery/internal/core/domain"
	"github.com/custodia-labs/docquery/internal/core/ports/driven"
	"github.com/custodia-labs/docquery/internal/core/ports/driving"
	"github.com/custodia-labs/docquery/internal/core/services"
	"github.com/custodia-labs/docquery/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// fallbackDimensions sizes the shard store when no embedding provider is
// configured. Only sweep and inspection commands run in that state, so the
// value never meets a live vector.
const fallbackDimensions = 768

// tenantEnvVar supplies the tenant when --tenant is not given.
const tenantEnvVar = "DOCQUERY_TENANT"

// Persistent flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagTenant    string
	flagVerbose   bool
)

// Services wired by initServices and consumed by the commands. Tests
// substitute mocks via setupTestServices.
var (
	queryService     driving.QueryService
	ingestService    driving.IngestService
	adminService     driving.AdminService
	settingsService  driving.SettingsService
	retentionManager *services.RetentionManager

	configStore *file.ConfigStore
	appLogger   *logger.Logger
)

var (
	servicesReady bool
	closers       []func() error
)

var rootCmd = &cobra.Command{
	Use:   "docquery",
	Short: "Ask questions about your documents",
	Long: `Docquery ingests documents into per-day vector shards and answers
questions about them with cited sources.

Storage is multi-tenant: every ingestion and every question is scoped to
a tenant, and shards that age out of the retention window are swept away
together with their metadata.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		switch cmd.Name() {
		case "version", "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return nil
		}
		return initServices(cmd)
	},
	PersistentPostRunE: func(*cobra.Command, []string) error {
		return closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "",
		"config directory (default ~/.docquery)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "",
		"data directory for the metadata database and shard indexes")
	rootCmd.PersistentFlags().StringVarP(&flagTenant, "tenant", "t", "",
		"tenant id (or set "+tenantEnvVar+")")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion overrides the reported version, for release builds.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// initServices builds the full service graph from settings. AI providers
// are optional: when the embedding provider is absent or unreachable the
// ingest and query services stay nil and their commands explain what to
// configure, while sweep and inspection keep working.
func initServices(cmd *cobra.Command) error {
	if servicesReady {
		return nil
	}

	level := "warn"
	if flagVerbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	appLogger = log

	store, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = store

	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService = settingsSvc

	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	applyEnvFallbacks(settings)

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = settings.Storage.DataDir
	}

	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	closers = append(closers, db.Close)

	var embedder driven.EmbeddingService
	if settings.Embedding.IsConfigured() {
		embedder, err = ai.CreateAndValidateEmbeddingService(&settings.Embedding)
		if err != nil {
			log.Warn("embedding provider unavailable", "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		} else {
			closers = append(closers, embedder.Close)
		}
	}

	dim := fallbackDimensions
	if embedder != nil {
		dim = embedder.Dimensions()
	}

	shardDir := filepath.Join(filepath.Dir(db.Path()), "shards")
	vectors, err := flat.NewShardStore(shardDir, dim, log)
	if err != nil {
		return fmt.Errorf("opening shard store: %w", err)
	}

	library := services.NewLibrary(vectors, db.Metadata(), log)

	var llm driven.LLMService
	if settings.LLM.IsConfigured() {
		llm, err = ai.CreateAndValidateLLMService(&settings.LLM)
		if err != nil {
			log.Warn("llm provider unavailable", "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		} else {
			closers = append(closers, llm.Close)
		}
	}

	promptDir := ""
	if flagConfigDir != "" {
		promptDir = filepath.Join(flagConfigDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	retentionManager = services.NewRetentionManager(library, db.SweepHistory(), settings.Retention, log)
	settingsSvc.SetRetentionListener(func(days int) {
		if err := retentionManager.SetDays(days); err != nil {
			log.Warn("applying retention change", "error", err)
		}
	})

	adminService = services.NewAdmin(library, retentionManager)

	if embedder != nil {
		splitter := chunker.New(
			chunker.WithSize(settings.Chunking.Size),
			chunker.WithOverlap(settings.Chunking.Overlap),
		)
		ingestService = services.NewIngestor(library, embedder, splitter, log)
		queryService = services.NewQueryEngine(library, embedder, llm, prompts, retentionManager, log)
	}

	servicesReady = true
	return nil
}

// applyEnvFallbacks fills in API keys from the environment when the config
// file carries none, following the conventions of the provider SDKs.
func applyEnvFallbacks(settings *domain.AppSettings) {
	if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if settings.LLM.APIKey == "" {
		//nolint:exhaustive // local providers need no key
		switch settings.LLM.Provider {
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case domain.AIProviderAnthropic:
			settings.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
}

// closeServices releases everything initServices opened, in reverse order.
func closeServices() error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	closers = nil
	return errors.Join(errs...)
}

// resolveTenant returns the tenant for tenant-scoped commands, from
// --tenant or the environment.
func resolveTenant() (string, error) {
	if flagTenant != "" {
		return flagTenant, nil
	}
	if env := os.Getenv(tenantEnvVar); env != "" {
		return env, nil
	}
	return "", errors.New("no tenant given: use --tenant or set " + tenantEnvVar)
}
