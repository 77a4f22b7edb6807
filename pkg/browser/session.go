package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(url string) error {
	_, err := s.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(s.timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// URL returns the page's current URL.
func (s *Session) URL() string {
	return s.Page.URL()
}

// close releases the session's Playwright resources. Every step runs even
// when an earlier one fails.
func (s *Session) close() error {
	var errs []error
	if err := s.Page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing session %q: %v", s.Name, errs)
	}
	return nil
}
