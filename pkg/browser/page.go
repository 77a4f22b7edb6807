package browser

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/keyreach/pkg/dom"
	"github.com/entrhq/keyreach/pkg/eventloop"
	"github.com/entrhq/keyreach/pkg/logging"
	"github.com/entrhq/keyreach/pkg/types"
)

//go:embed bridge.js
var bridgeScript string

const bindingName = "__keyreachEvent"

// ErrNotAttached is returned when a signal arrives before a handler is bound.
var ErrNotAttached = errors.New("page handler not attached")

// Page adapts a session's Playwright page to dom.Document. Its methods
// block on the browser and are meant to run on the event loop.
type Page struct {
	session *Session
	sched   eventloop.Scheduler
	logger  *logging.Logger

	mu      sync.RWMutex
	handler Handler
	onLoad  []func()
}

// Attach injects the bridge into the session's page, now and on every
// future navigation, and routes its events onto sched.
func Attach(session *Session, sched eventloop.Scheduler, logger *logging.Logger) (*Page, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	p := &Page{session: session, sched: sched, logger: logger}
	pg := session.Page

	err := pg.ExposeBinding(bindingName, func(_ *playwright.BindingSource, args ...interface{}) interface{} {
		if len(args) == 0 {
			return nil
		}
		raw, ok := args[0].(string)
		if !ok {
			return nil
		}
		p.receive(raw)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expose bridge binding: %w", err)
	}

	if err := pg.AddInitScript(playwright.Script{Content: playwright.String(bridgeScript)}); err != nil {
		return nil, fmt.Errorf("failed to add bridge script: %w", err)
	}
	// The init script only covers future documents.
	if _, err := pg.Evaluate("src => { (0, eval)(src); }", bridgeScript); err != nil {
		logger.Warnf("bridge not injected into current document, waiting for next load: %v", err)
	}

	pg.OnLoad(func(playwright.Page) {
		p.mu.RLock()
		hooks := append([]func(){}, p.onLoad...)
		p.mu.RUnlock()
		for _, fn := range hooks {
			sched.Post(fn)
		}
	})

	return p, nil
}

// Bind routes page events and signals to h.
func (p *Page) Bind(h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = h
}

// OnLoad registers fn to run on the loop after every page load.
func (p *Page) OnLoad(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onLoad = append(p.onLoad, fn)
}

func (p *Page) receive(raw string) {
	p.mu.RLock()
	h := p.handler
	p.mu.RUnlock()
	if h == nil {
		return
	}
	ev, err := decodeBridgeEvent(raw)
	if err != nil {
		p.logger.Warnf("dropping bridge event: %v", err)
		return
	}
	p.sched.Post(func() {
		route(ev, h, p.take, p.logger)
	})
}

// take fetches the element the bridge remembered under ref.
func (p *Page) take(ref int) dom.Element {
	handle, err := p.session.Page.EvaluateHandle("id => window.__keyreach && window.__keyreach.take(id)", ref)
	if err != nil {
		p.logger.Warnf("failed to fetch element %d: %v", ref, err)
		return nil
	}
	el := handle.AsElement()
	if el == nil {
		return nil
	}
	return &Element{handle: el}
}

// URL returns the page's current URL.
func (p *Page) URL() string {
	return p.session.URL()
}

// Send delivers sig to the bound handler on the loop.
func (p *Page) Send(_ context.Context, sig types.Signal) error {
	p.mu.RLock()
	h := p.handler
	p.mu.RUnlock()
	if h == nil {
		return ErrNotAttached
	}
	p.sched.Post(func() { h.HandleSignal(sig) })
	return nil
}

// Hostname returns location.hostname.
func (p *Page) Hostname() string {
	res, err := p.session.Page.Evaluate("() => location.hostname")
	if err != nil {
		p.logger.Warnf("failed to read hostname: %v", err)
		return ""
	}
	host, _ := res.(string)
	return host
}

// QuerySelector returns the first element matching selector, or nil.
func (p *Page) QuerySelector(selector string) (dom.Element, error) {
	handle, err := p.session.Page.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	if handle == nil {
		return nil, nil
	}
	return &Element{handle: handle}, nil
}

// SetCursor sets the body cursor style.
func (p *Page) SetCursor(cursor string) error {
	return p.call("setCursor", cursor)
}

// SetLiveText replaces the live region text.
func (p *Page) SetLiveText(text string) error {
	return p.call("setLiveText", text)
}

// ShowToast shows a transient notification on the page.
func (p *Page) ShowToast(text string) error {
	return p.call("showToast", text)
}

// Intercept pushes the interception state to the bridge.
func (p *Page) Intercept(state dom.Interception) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode interception: %w", err)
	}
	return p.call("setInterception", string(data))
}

func (p *Page) call(method, arg string) error {
	expr := fmt.Sprintf("arg => window.__keyreach && window.__keyreach.%s(arg)", method)
	if _, err := p.session.Page.Evaluate(expr, arg); err != nil {
		return fmt.Errorf("bridge %s failed: %w", method, err)
	}
	return nil
}
