package htmldoc

import (
	"strings"

	"golang.org/x/net/html"
)

// Element wraps an element node of a Document.
type Element struct {
	node *html.Node
	doc  *Document
}

// Same reports whether e and other wrap the same node.
func (e *Element) Same(other *Element) bool {
	return other != nil && e.node == other.node
}

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

func (e *Element) setAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			if value == "" {
				e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			} else {
				e.node.Attr[i].Val = value
			}
			return
		}
	}
	if value != "" {
		e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
	}
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	return strings.Fields(e.Attr("class"))
}

// TagName returns the uppercase tag name, as browsers report it.
func (e *Element) TagName() string {
	return strings.ToUpper(e.node.Data)
}

// Outline returns the inline outline declaration.
func (e *Element) Outline() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, decl := range styleDecls(e.Attr("style")) {
		if decl[0] == "outline" {
			return decl[1]
		}
	}
	return ""
}

// SetOutline rewrites the inline outline declaration.
func (e *Element) SetOutline(value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var parts []string
	for _, decl := range styleDecls(e.Attr("style")) {
		if decl[0] != "outline" {
			parts = append(parts, decl[0]+": "+decl[1])
		}
	}
	if value != "" {
		parts = append(parts, "outline: "+value)
	}
	e.setAttr("style", strings.Join(parts, "; "))
	return nil
}

// Click records a click on the element.
func (e *Element) Click() error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.clicks = append(e.doc.clicks, e)
	return nil
}

// Focus makes the element the focused element.
func (e *Element) Focus() error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.focused = e
	return nil
}

// Release records that the holder is done with e. Nodes stay valid.
func (e *Element) Release() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.released = append(e.doc.released, e)
}

// IsEditable reports whether keyboard input to e edits content.
func (e *Element) IsEditable() bool {
	switch strings.ToLower(e.node.Data) {
	case "input", "textarea":
		return true
	}
	for _, a := range e.node.Attr {
		if a.Key == "contenteditable" && a.Val != "false" {
			return true
		}
	}
	return false
}

// styleDecls splits an inline style attribute into property/value pairs.
func styleDecls(style string) [][2]string {
	var decls [][2]string
	for _, part := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		decls = append(decls, [2]string{prop, strings.TrimSpace(val)})
	}
	return decls
}
