package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/config"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/fetch"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/llm"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/oracle"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/search"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/secrets"
)

// cfg is loaded once per invocation by the root command.
var cfg *config.Config

// Replaced in tests.
var (
	newLLMClient = defaultLLMClient
	newSearcher  = func(c *config.Config) search.Searcher { return search.NewDuckDuckGo(c.SearchInterval) }
)

func loadConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	merged := loaded.MergeWithDefaults(config.Default())
	flags := cmd.Flags()
	if flags.Changed("db") {
		merged.DatabaseURL = databaseURL
	}
	if flags.Changed("root") {
		merged.ContentRoot = contentRoot
	}
	if flags.Changed("verbose") {
		merged.Verbose = verbose
	}
	if err := merged.Validate(); err != nil {
		return err
	}
	cfg = &merged
	return nil
}

// openStore opens the configured database and makes sure its schema exists.
func openStore(ctx context.Context) (*db.DB, error) {
	store, err := db.Open(ctx, db.Options{DSN: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// withStore opens the store and a bus over it for the length of fn.
func withStore(ctx context.Context, fn func(store *db.DB, b *bus.Bus) error) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store, bus.New(store))
}

func llmConfig(c *config.Config) *llm.Config {
	lc := llm.DefaultConfig()
	for tier, model := range c.Models {
		lc = lc.WithModel(llm.ParseTier(tier), model)
	}
	return lc
}

func defaultLLMClient(ctx context.Context, c *config.Config) (llm.Client, error) {
	key, source, err := secrets.APIKey(c.APIKey)
	if err != nil {
		return nil, err
	}
	if c.Verbose {
		log.Printf("[llm] using API key from %s", source)
	}
	return llm.NewClient(ctx, llmConfig(c), key)
}

// requireOracle builds the scoring oracle. Commands that only score need a key.
func requireOracle(ctx context.Context) (*oracle.Oracle, func(), error) {
	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return oracle.New(client), func() { _ = client.Close() }, nil
}

// optionalLLM returns a client when a key is available and nil otherwise.
func optionalLLM(ctx context.Context) (llm.Client, func()) {
	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		if !errors.Is(err, secrets.ErrNoAPIKey) {
			log.Printf("[llm] extraction disabled: %v", err)
		}
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

func fetchOptions() *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.UseBrowser = cfg.UseBrowser
	opts.Verbose = cfg.Verbose
	return opts
}
