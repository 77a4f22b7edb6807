package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/entrhq/keyreach/pkg/announce"
	"github.com/entrhq/keyreach/pkg/browser"
	"github.com/entrhq/keyreach/pkg/cache"
	"github.com/entrhq/keyreach/pkg/config"
	"github.com/entrhq/keyreach/pkg/dispatch"
	"github.com/entrhq/keyreach/pkg/engine"
	"github.com/entrhq/keyreach/pkg/eventloop"
	"github.com/entrhq/keyreach/pkg/logging"
	"github.com/entrhq/keyreach/pkg/storage"
	"github.com/entrhq/keyreach/pkg/types"
)

// run wires the store, cache, browser page and engine, then serves stdin
// commands until quit, EOF or cancellation.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	logger := logging.MustLogger("keyreach")
	defer logger.Close()
	logger.Infof("starting keyreach v%s (store=%s, variant=%s)", version, cfg.Storage.Backend, cfg.Picker.Variant)

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path, storage.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	loop := eventloop.New(logger)
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	bindings := cache.New(store, logger)
	bindings.Start(ctx)

	disp, err := dispatch.New(cfg.RestrictedURLs, logger)
	if err != nil {
		return err
	}

	manager := browser.NewSessionManager()
	if err := manager.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	}()

	session, err := manager.StartSession("main", browser.SessionOptions{
		Headless: cfg.Browser.Headless,
		Timeout:  cfg.Browser.Timeout,
	})
	if err != nil {
		return err
	}

	page, err := browser.Attach(session, loop, logger)
	if err != nil {
		return err
	}

	announcer := announce.New(page, loop, cfg.Feedback.AnnounceDelay, logger)
	eng := engine.New(page, bindings, store, loop, announcer, engine.FromConfig(cfg), logger)
	page.Bind(eng)
	page.OnLoad(func() {
		eng.PageChanged()
		disp.PageLoaded(ctx, page)
	})

	go printEvents(ctx, eng.Events(), out)

	if err := session.Navigate(cfg.Browser.StartURL); err != nil {
		logger.Warnf("failed to open %s: %v", cfg.Browser.StartURL, err)
		fmt.Fprintf(out, "could not open %s: %v\n", cfg.Browser.StartURL, err)
	}

	fmt.Fprintln(out, "keyreach ready. Commands: pick, read, list, close, open <url>, quit")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-loopDone:
			if ctx.Err() != nil {
				return nil
			}
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleCommand(ctx, line, disp, page, session, out); quit {
				return nil
			}
		}
	}
}

// handleCommand runs one stdin command. It reports whether to exit.
func handleCommand(ctx context.Context, line string, disp *dispatch.Dispatcher, page dispatch.Tab, nav navigator, out io.Writer) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "pick":
		disp.Command(ctx, page, dispatch.CommandTogglePickMode)
	case "read":
		disp.Command(ctx, page, dispatch.CommandReadLastMessage)
	case "list":
		disp.Command(ctx, page, dispatch.CommandReadAllShortcuts)
	case "close":
		disp.PopupClosed(ctx, page)
	case "open":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: open <url>")
			return false
		}
		if err := nav.Navigate(fields[1]); err != nil {
			fmt.Fprintf(out, "could not open %s: %v\n", fields[1], err)
		}
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(out, "unknown command %q\n", fields[0])
	}
	return false
}

type navigator interface {
	Navigate(url string) error
}

func printEvents(ctx context.Context, events <-chan types.Event, out io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if line := formatEvent(ev); line != "" {
				fmt.Fprintln(out, line)
			}
		}
	}
}

// formatEvent renders an engine event for the terminal. State changes
// are not printed.
func formatEvent(ev types.Event) string {
	switch ev.Type {
	case types.EventTypeClicked:
		return fmt.Sprintf("clicked %s (%s)", ev.Selector, ev.Chord)
	case types.EventTypeSelectorMiss:
		return fmt.Sprintf("not found: %s (%s)", ev.Selector, ev.Chord)
	case types.EventTypeElementSelected:
		return fmt.Sprintf("selected %s on %s", ev.Selector, ev.Domain)
	case types.EventTypeChordCancelled:
		return fmt.Sprintf("assignment for %s cancelled (%s)", ev.Selector, ev.Message)
	case types.EventTypeBindingSaved:
		verb := "saved"
		if ev.Replaced {
			verb = "replaced"
		}
		key := ev.Chord
		if key == "" {
			key = "no key"
		}
		return fmt.Sprintf("%s: %s clicks %s", verb, key, ev.Selector)
	case types.EventTypeSaveFailed:
		return fmt.Sprintf("save failed: %v", ev.Error)
	case types.EventTypeToast:
		return "toast: " + ev.Message
	default:
		return ""
	}
}
