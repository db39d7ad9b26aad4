package page

import "errors"

var (
	// ErrNotFound means the page does not exist on the wiki.
	ErrNotFound = errors.New("page does not exist")
	// ErrInvalidTitle means the title cannot name a page at all.
	ErrInvalidTitle = errors.New("invalid page title")
	// ErrNoData means the API response was structurally incomplete.
	ErrNoData = errors.New("incomplete revision data")
	// ErrNoCode is a precondition violation: an operation that needs the
	// page's wikitext ran before any fetch populated it.
	ErrNoCode = errors.New("page code not loaded")
)
