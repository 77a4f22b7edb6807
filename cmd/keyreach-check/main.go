// Package main checks saved shortcuts against a saved HTML page without a
// browser: for one domain it reports which bindings apply, which one each
// chord resolves to, and whether its selector finds an element.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/entrhq/keyreach/pkg/binding"
	"github.com/entrhq/keyreach/pkg/dom/htmldoc"
	"github.com/entrhq/keyreach/pkg/storage"
)

// Config holds the command line configuration
type Config struct {
	HTMLPath     string
	Domain       string
	Backend      string
	StorePath    string
	BindingsPath string
	Strict       bool
}

func main() {
	cfg := parseFlags()
	if err := cfg.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	list, err := loadBindings(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to load bindings: %v", err)
	}

	f, err := os.Open(cfg.HTMLPath)
	if err != nil {
		log.Fatalf("Failed to open page: %v", err)
	}
	doc, err := htmldoc.Parse(f, cfg.Domain)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to parse page: %v", err)
	}

	results := Check(list, doc)
	Report(os.Stdout, cfg.Domain, results)

	if cfg.Strict && Missing(results) > 0 {
		os.Exit(1)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.HTMLPath, "html", "", "Saved HTML page to check against (required)")
	flag.StringVar(&cfg.Domain, "domain", "", "Hostname the page was saved from (required)")
	flag.StringVar(&cfg.Backend, "store", string(storage.BackendFile), "Storage backend: file or sqlite")
	flag.StringVar(&cfg.StorePath, "store-path", "", "Storage location (default: backend default under ~/.keyreach)")
	flag.StringVar(&cfg.BindingsPath, "bindings", "", "Read bindings from a JSON file instead of the store")
	flag.BoolVar(&cfg.Strict, "strict", false, "Exit with status 1 when an active binding's element is missing")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "keyreach-check - check saved shortcuts against a page\n\n")
		fmt.Fprintf(os.Stderr, "Usage: keyreach-check -html page.html -domain example.com [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	return cfg
}

func (c *Config) validate() error {
	if c.HTMLPath == "" {
		return fmt.Errorf("-html is required")
	}
	if c.Domain == "" {
		return fmt.Errorf("-domain is required")
	}
	if c.BindingsPath == "" && storage.Backend(c.Backend) == storage.BackendMemory {
		return fmt.Errorf("the memory backend holds no saved bindings")
	}
	return nil
}

// loadBindings reads the list from a JSON file or the configured store.
func loadBindings(ctx context.Context, c *Config) (binding.List, error) {
	if c.BindingsPath != "" {
		raw, err := os.ReadFile(c.BindingsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", c.BindingsPath, err)
		}
		return binding.Decode(raw)
	}

	store, err := storage.Open(storage.Backend(c.Backend), c.StorePath, storage.WithoutWatch())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	raw, err := store.Get(ctx, binding.StorageKey)
	if err != nil {
		return nil, err
	}
	return binding.Decode(raw)
}
