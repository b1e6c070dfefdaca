// Command corpora is the document ingestion and chunking pipeline CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	configfile "github.com/custodia-labs/corpora/internal/adapters/driven/config/file"
	"github.com/custodia-labs/corpora/internal/adapters/driven/convert/execconv"
	"github.com/custodia-labs/corpora/internal/adapters/driven/llm/lmstudio"
	"github.com/custodia-labs/corpora/internal/adapters/driven/llm/openai"
	queuesqlite "github.com/custodia-labs/corpora/internal/adapters/driven/queue/sqlite"
	storesqlite "github.com/custodia-labs/corpora/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/corpora/internal/adapters/driving/cli"
	"github.com/custodia-labs/corpora/internal/chunking"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/core/services"
	"github.com/custodia-labs/corpora/internal/extractors"
	"github.com/custodia-labs/corpora/internal/sensitive"
	"github.com/custodia-labs/corpora/internal/timeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "corpora: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := storesqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	queue, err := queuesqlite.NewQueue("")
	if err != nil {
		return fmt.Errorf("opening queue: %w", err)
	}
	defer queue.Close()

	llm, err := buildLLM(config)
	if err != nil {
		return err
	}
	if llm != nil {
		defer llm.Close()
	}

	chunkCfg := buildChunkConfig(config)
	engine := chunking.NewEngine(llm)

	converter := execconv.New(execconv.Config{
		Binary: config.GetString(driven.ConfigConvertBinary),
	})

	storageDir := config.GetString(driven.ConfigStorageDir)
	if storageDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		storageDir = filepath.Join(home, ".corpora", "documents")
	}

	dates := timeline.New()
	patterns := sensitive.New()

	cli.SetServices(&cli.Services{
		Ingestor: services.NewIngestService(store, queue, extractors.NewDefault(),
			converter, engine, dates, patterns, storageDir, chunkCfg),
		Parser: services.NewParseService(store, queue, engine, dates, patterns, chunkCfg),
		Store:  store,
		Queue:  queue,
		Config: config,
	})

	return cli.Execute()
}

// buildLLM constructs the configured LLM service, or nil when no
// provider is configured. Without an LLM the agentic chunking strategy
// degrades to the smart strategy.
func buildLLM(config driven.ConfigStore) (driven.LLMService, error) {
	switch provider := config.GetString(driven.ConfigLLMProvider); provider {
	case "openai":
		return openai.NewLLMService(openai.LLMConfig{
			APIKey:  config.GetString(driven.ConfigLLMAPIKey),
			BaseURL: config.GetString(driven.ConfigLLMBaseURL),
			Model:   config.GetString(driven.ConfigLLMModel),
		})
	case "lmstudio":
		return lmstudio.NewLLMService(lmstudio.LLMConfig{
			BaseURL: config.GetString(driven.ConfigLLMBaseURL),
			Model:   config.GetString(driven.ConfigLLMModel),
		}), nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

// buildChunkConfig applies config overrides on top of the defaults.
func buildChunkConfig(config driven.ConfigStore) chunking.Config {
	cfg := chunking.DefaultConfig()
	if v := config.GetInt(driven.ConfigChunkMaxSize); v > 0 {
		cfg.MaxChunkSize = v
	}
	if v := config.GetInt(driven.ConfigChunkMinSize); v > 0 {
		cfg.MinChunkSize = v
	}
	if v, ok := config.Get(driven.ConfigChunkOverlap); ok {
		switch n := v.(type) {
		case int64:
			cfg.Overlap = int(n)
		case int:
			cfg.Overlap = n
		}
	}
	return cfg
}
