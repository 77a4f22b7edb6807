package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Element is a dom.Element backed by a Playwright element handle. Reads
// go to the live element.
type Element struct {
	handle playwright.ElementHandle
}

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	v, err := e.handle.GetAttribute(name)
	if err != nil {
		return ""
	}
	return v
}

// Classes returns the class list in document order.
func (e *Element) Classes() []string {
	res, err := e.handle.Evaluate("el => Array.from(el.classList)")
	if err != nil {
		return nil
	}
	items, _ := res.([]interface{})
	classes := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			classes = append(classes, s)
		}
	}
	return classes
}

// TagName returns the tag name as the page reports it.
func (e *Element) TagName() string {
	return e.evalString("el => el.tagName")
}

// Outline returns the inline outline style.
func (e *Element) Outline() string {
	return e.evalString("el => el.style.outline")
}

// SetOutline sets the inline outline style.
func (e *Element) SetOutline(value string) error {
	if _, err := e.handle.Evaluate("(el, v) => { el.style.outline = v; }", value); err != nil {
		return fmt.Errorf("set outline: %w", err)
	}
	return nil
}

// Click dispatches a synthetic click, like HTMLElement.click.
func (e *Element) Click() error {
	if _, err := e.handle.Evaluate("el => el.click()"); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

// Focus moves keyboard focus to the element.
func (e *Element) Focus() error {
	if err := e.handle.Focus(); err != nil {
		return fmt.Errorf("focus: %w", err)
	}
	return nil
}

// Release disposes the element handle in the driver.
func (e *Element) Release() {
	_ = e.handle.Dispose()
}

func (e *Element) evalString(expr string) string {
	res, err := e.handle.Evaluate(expr)
	if err != nil {
		return ""
	}
	s, _ := res.(string)
	return s
}
