// Package cli wires the discovery engine into a cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgefit-labs/discovery/internal/adapters/driven/config/file"
	"github.com/forgefit-labs/discovery/internal/adapters/driven/embedding/composite"
	"github.com/forgefit-labs/discovery/internal/adapters/driven/embedding/openai"
	"github.com/forgefit-labs/discovery/internal/adapters/driven/library"
	"github.com/forgefit-labs/discovery/internal/adapters/driven/llm/anthropic"
	"github.com/forgefit-labs/discovery/internal/adapters/driven/storage/sqlite"
	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
	"github.com/forgefit-labs/discovery/internal/core/ports/driving"
	"github.com/forgefit-labs/discovery/internal/core/services"
	"github.com/forgefit-labs/discovery/internal/logger"
)

// version is set by Execute.
var version = "dev"

// Shared services, wired by initServices before commands run.
var (
	cfgPath    string
	libraryDir string
	verbose    bool

	cfg       *file.Config
	store     *sqlite.Store
	discovery driving.DiscoveryService
)

var rootCmd = &cobra.Command{
	Use:   "discovery",
	Short: "Workout discovery engine",
	Long: `A workout discovery engine: hybrid search over a workout library,
preference and history aware recommendations, and on-demand workout
generation with a deterministic offline fallback.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
	PersistentPostRunE: func(*cobra.Command, []string) error {
		return closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.discovery/config.toml)")
	rootCmd.PersistentFlags().StringVar(&libraryDir, "library", "", "directory of workout markdown files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI with the given version string.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}

// initServices builds the adapter stack and the engine. Commands that need
// no services skip the wiring.
func initServices(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}
	if discovery != nil {
		// Already wired, either by a prior run or by a test.
		return nil
	}

	logger.SetVerbose(verbose)

	path := cfgPath
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return err
		}
	}

	var err error
	cfg, err = file.Load(path)
	if err != nil {
		return err
	}
	if libraryDir != "" {
		cfg.LibraryDir = libraryDir
	}
	if cfg.Verbose {
		logger.SetVerbose(true)
	}

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	embedder := composite.Select(ctx, remoteEmbedder())

	tools, err := toolCaller()
	if err != nil {
		return err
	}

	discovery = services.NewEngine(services.EngineConfig{
		Embedder:            embedder,
		ToolCaller:          tools,
		History:             store.HistoryStore(),
		Preferences:         store.PreferenceStore(),
		ConfidenceThreshold: cfg.Search.ConfidenceThreshold,
	})

	return loadDocuments(ctx)
}

// remoteEmbedder builds the configured remote embedder, or nil when the
// local hashed embedder should be used.
func remoteEmbedder() driven.Embedder {
	if cfg.Embedding.Provider != "openai" || cfg.Embedding.APIKey == "" {
		return nil
	}
	remote, err := openai.New(openai.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		logger.Warn("Remote embedder misconfigured, using local hashing: %v", err)
		return nil
	}
	return remote
}

// toolCaller builds the live generation client when credentials exist.
// Returning nil disables the live path; fallback generation still works
// through the engine.
func toolCaller() (driven.ToolCaller, error) {
	if cfg.Generation.APIKey == "" {
		return nil, nil
	}
	return anthropic.New(anthropic.Config{
		APIKey:            cfg.Generation.APIKey,
		BaseURL:           cfg.Generation.BaseURL,
		Model:             cfg.Generation.Model,
		Timeout:           time.Duration(cfg.Generation.TimeoutSeconds) * time.Second,
		RequestsPerMinute: cfg.Generation.RequestsPerMinute,
	})
}

// loadDocuments fills the engine from the library directory when one is
// configured, falling back to previously persisted workouts. Library files
// are persisted so they survive without the directory.
func loadDocuments(ctx context.Context) error {
	var docs []domain.WorkoutDocument
	var err error

	if cfg.LibraryDir != "" {
		docs, err = library.Load(cfg.LibraryDir)
		if err != nil {
			return err
		}
		workouts := store.WorkoutStore()
		for i := range docs {
			if err := workouts.SaveWorkout(ctx, &docs[i]); err != nil {
				logger.Warn("Persisting %s failed: %v", docs[i].Title, err)
			}
		}
	} else {
		docs, err = store.WorkoutStore().ListWorkouts(ctx)
		if err != nil {
			return err
		}
	}

	if err := discovery.SetDocuments(ctx, docs); err != nil && !errors.Is(err, domain.ErrSuperseded) {
		return err
	}
	return nil
}

func closeServices() error {
	if store != nil {
		return store.Close()
	}
	return nil
}
