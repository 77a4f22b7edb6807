package browser

import (
	"encoding/json"
	"fmt"

	"github.com/entrhq/keyreach/pkg/chord"
	"github.com/entrhq/keyreach/pkg/dom"
	"github.com/entrhq/keyreach/pkg/logging"
	"github.com/entrhq/keyreach/pkg/types"
)

// Handler receives page events and signals on the loop.
type Handler interface {
	HandleKeyDown(ev chord.KeyEvent, editable bool) bool
	HandleMouseOver(el dom.Element)
	HandleClick(el dom.Element) bool
	HandleSignal(sig types.Signal)
}

// bridgeEvent is one event reported by the injected bridge.
type bridgeEvent struct {
	Type string `json:"type"`
	chord.KeyEvent
	Editable bool `json:"editable"`
	Ref      int  `json:"ref"`
}

func decodeBridgeEvent(raw string) (bridgeEvent, error) {
	var ev bridgeEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return ev, fmt.Errorf("invalid bridge payload: %w", err)
	}
	switch ev.Type {
	case "keydown":
		if ev.Key == "" {
			return ev, fmt.Errorf("keydown without key")
		}
	case "mouseover", "click":
		if ev.Ref <= 0 {
			return ev, fmt.Errorf("%s without element reference", ev.Type)
		}
	default:
		return ev, fmt.Errorf("unknown bridge event %q", ev.Type)
	}
	return ev, nil
}

// route hands ev to h, fetching the referenced element when needed.
func route(ev bridgeEvent, h Handler, take func(ref int) dom.Element, logger *logging.Logger) {
	switch ev.Type {
	case "keydown":
		h.HandleKeyDown(ev.KeyEvent, ev.Editable)
	case "mouseover", "click":
		el := take(ev.Ref)
		if el == nil {
			logger.Debugf("element %d for %s is gone", ev.Ref, ev.Type)
			return
		}
		if ev.Type == "click" {
			h.HandleClick(el)
		} else {
			h.HandleMouseOver(el)
		}
	}
}
