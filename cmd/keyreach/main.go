// Package main runs keyreach against a live browser page: it opens a
// Chromium window, attaches the shortcut engine and reads commands from
// stdin.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/keyreach/pkg/config"
	"github.com/entrhq/keyreach/pkg/storage"
)

const version = "0.1.0"

// Config holds the command line configuration
type Config struct {
	ConfigPath  string
	StartURL    string
	Backend     string
	StorePath   string
	Variant     string
	Headless    bool
	WriteConfig bool
	ShowVersion bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("keyreach v%s\n", version)
		return
	}

	cfg, err := cli.load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if cli.WriteConfig {
		if err := config.Save(cli.ConfigPath, cfg); err != nil {
			log.Fatalf("Configuration error: %v", err)
		}
		fmt.Printf("Wrote %s\n", cli.ConfigPath)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if runErr := run(ctx, cfg, os.Stdin, os.Stdout); runErr != nil {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *Config {
	cli := &Config{}

	defaultPath, err := config.DefaultPath()
	if err != nil {
		defaultPath = "keyreach.yaml"
	}

	flag.StringVar(&cli.ConfigPath, "config", defaultPath, "Path to the YAML configuration file")
	flag.StringVar(&cli.StartURL, "url", "", "Page to open (overrides browser.start_url)")
	flag.StringVar(&cli.Backend, "store", "", "Storage backend: file, sqlite or memory (overrides storage.backend)")
	flag.StringVar(&cli.StorePath, "store-path", "", "Storage location (overrides storage.path)")
	flag.StringVar(&cli.Variant, "variant", "", "Picker variant: advanced or simple (overrides picker.variant)")
	flag.BoolVar(&cli.Headless, "headless", false, "Run the browser without a window")
	flag.BoolVar(&cli.WriteConfig, "write-config", false, "Write the effective configuration to -config and exit")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "keyreach - keyboard shortcuts for any button on any site\n\n")
		fmt.Fprintf(os.Stderr, "Usage: keyreach [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands (stdin):\n")
		fmt.Fprintf(os.Stderr, "  pick          Start picking an element\n")
		fmt.Fprintf(os.Stderr, "  read          Repeat the last announcement\n")
		fmt.Fprintf(os.Stderr, "  list          Announce every saved shortcut\n")
		fmt.Fprintf(os.Stderr, "  close         Announce that settings closed\n")
		fmt.Fprintf(os.Stderr, "  open <url>    Navigate the page\n")
		fmt.Fprintf(os.Stderr, "  quit          Exit\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  keyreach -url https://example.com\n")
		fmt.Fprintf(os.Stderr, "  keyreach -store sqlite -variant simple\n")
	}

	flag.Parse()
	return cli
}

// load reads the configuration file and applies flag overrides.
func (c *Config) load() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}

	if c.StartURL != "" {
		cfg.Browser.StartURL = c.StartURL
	}
	if c.Backend != "" {
		cfg.Storage.Backend = storage.Backend(c.Backend)
	}
	if c.StorePath != "" {
		cfg.Storage.Path = c.StorePath
	}
	if c.Variant != "" {
		cfg.Picker.Variant = config.Variant(c.Variant)
	}
	if c.Headless {
		cfg.Browser.Headless = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
