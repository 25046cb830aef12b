package extractor

import "fmt"

// DocumentError reports a failure to open, parse, render or recognize a
// document. Page is the 1-based page being processed, or 0 when the failure
// is not tied to a page.
type DocumentError struct {
	Path string
	Page int
	Err  error
}

func (e *DocumentError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("extracting PDF info from %s (page %d): %v", e.Path, e.Page, e.Err)
	}
	return fmt.Sprintf("extracting PDF info from %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }
