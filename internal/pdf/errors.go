package pdf

import "fmt"

// RenderError reports a structural failure while painting or serialising a
// document. No output accompanies it.
type RenderError struct {
	Op   string
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("pdf: %s page %d: %v", e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("pdf: %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// PersistError reports that a rendered document could not be stored. The
// bytes in the accompanying Result are complete and valid.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("pdf: persist %q: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
