package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/entrhq/keyreach/pkg/binding"
	"github.com/entrhq/keyreach/pkg/dom"
)

// Status is the outcome for one binding.
type Status string

const (
	StatusFound      Status = "found"
	StatusMissing    Status = "missing"
	StatusInvalid    Status = "invalid selector"
	StatusShadowed   Status = "shadowed"
	StatusUnassigned Status = "no key"
	StatusEmptySlot  Status = "empty slot"
)

// Result describes one binding that applies to the page's domain.
type Result struct {
	Index   int
	Binding binding.Binding
	Status  Status
	Detail  string
}

// Check evaluates every binding in scope on doc's domain, in list order.
func Check(list binding.List, doc dom.Document) []Result {
	domain := doc.Hostname()
	var results []Result

	for i, b := range list {
		if !b.AppliesTo(domain) {
			continue
		}
		r := Result{Index: i, Binding: b}

		switch {
		case b.IsEmptySlot():
			r.Status = StatusEmptySlot
		case b.Key == "":
			r.Status = StatusUnassigned
		default:
			if first := binding.ResolveIndex(b.Key, domain, list); first != i {
				r.Status = StatusShadowed
				r.Detail = fmt.Sprintf("%s resolves to entry %d (%s)", b.Key, first+1, describeSelector(list[first].Selector))
				break
			}
			el, err := doc.QuerySelector(b.Selector)
			switch {
			case err != nil:
				r.Status = StatusInvalid
				r.Detail = err.Error()
			case el == nil:
				r.Status = StatusMissing
			default:
				r.Status = StatusFound
				r.Detail = el.TagName()
				el.Release()
			}
		}
		results = append(results, r)
	}
	return results
}

// Missing counts active bindings whose element could not be located.
func Missing(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Status == StatusMissing || r.Status == StatusInvalid {
			n++
		}
	}
	return n
}

// Report writes results as a table.
func Report(w io.Writer, domain string, results []Result) {
	if len(results) == 0 {
		fmt.Fprintf(w, "No shortcuts apply to %s.\n", domain)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKEY\tSCOPE\tSELECTOR\tSTATUS\tDETAIL")
	for _, r := range results {
		key := r.Binding.Key
		if key == "" {
			key = "-"
		}
		scope := r.Binding.Domain
		if r.Binding.IsGlobal() {
			scope = "all sites"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", r.Index, key, scope, describeSelector(r.Binding.Selector), r.Status, r.Detail)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d shortcuts apply to %s, %d missing.\n", len(results), domain, Missing(results))
}

func describeSelector(sel string) string {
	if sel == "" {
		return "(empty)"
	}
	return sel
}
