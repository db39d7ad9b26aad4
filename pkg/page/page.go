// Package page owns a talk page's current wikitext and revision metadata,
// derives topic placement facts from it, and computes mutated page code for
// new comments.
package page

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/feldtn/wikitalk/internal/utils"
)

// Revision is what the fetch collaborator returns for one page.
type Revision struct {
	PageID         int64
	Code           string
	RevisionID     int64
	RedirectTarget string
	QueryTimestamp string
}

// Fetcher is the external collaborator that performs the actual HTTP call.
type Fetcher interface {
	FetchPageRevision(ctx context.Context, title string) (*Revision, error)
}

// Code models one wiki page's code and metadata. Name and Namespace are
// set at construction from pure title parsing and never change. Fetch
// fields are filled by Load and go stale after any successful edit; the
// caller refetches to get fresh code. Derived placement fields are filled
// at most once per fetched code.
type Code struct {
	Name      string
	RealName  string
	Namespace int

	PageID         int64
	RevisionID     int64
	RedirectTarget string
	QueryTimestamp string

	code   string
	loaded bool

	newTopicsOnTop    *bool
	firstSectionStart int
}

// canonical English namespace prefixes, discussion namespaces odd
var namespacesByPrefix = map[string]int{
	"talk":           1,
	"user":           2,
	"user talk":      3,
	"wikipedia":      4,
	"wikipedia talk": 5,
	"project":        4,
	"project talk":   5,
	"file":           6,
	"file talk":      7,
	"mediawiki":      8,
	"mediawiki talk": 9,
	"template":       10,
	"template talk":  11,
	"help":           12,
	"help talk":      13,
	"category":       14,
	"category talk":  15,
}

const titleBlacklist = "<>[]|{}#"

// New parses title into a page model without any I/O. It fails only when
// the title cannot name a page.
func New(title string) (*Code, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.ContainsAny(title, titleBlacklist) {
		return nil, ErrInvalidTitle
	}

	// wikis case-normalize the first letter of the page name part
	namespace := 0
	name := title
	if i := strings.Index(title, ":"); i > 0 {
		prefix := strings.ToLower(strings.TrimSpace(title[:i]))
		if ns, ok := namespacesByPrefix[prefix]; ok {
			namespace = ns
			name = title[:i+1] + utils.UpperFirst(title[i+1:])
		}
	}
	if namespace == 0 {
		name = utils.UpperFirst(name)
	}

	return &Code{
		Name:              name,
		RealName:          name,
		Namespace:         namespace,
		firstSectionStart: -1,
	}, nil
}

// Load fetches the page's current code and revision metadata through the
// collaborator. On success RealName resolves to the redirect target when
// one exists, else the requested name. A reload resets the derived
// placement fields along with the code.
func (c *Code) Load(ctx context.Context, fetcher Fetcher) error {
	rev, err := fetcher.FetchPageRevision(ctx, c.Name)
	if err != nil {
		return err
	}
	if rev == nil || rev.RevisionID == 0 {
		return ErrNoData
	}

	c.PageID = rev.PageID
	c.RevisionID = rev.RevisionID
	c.RedirectTarget = rev.RedirectTarget
	c.QueryTimestamp = rev.QueryTimestamp
	c.code = rev.Code
	c.loaded = true
	c.newTopicsOnTop = nil
	c.firstSectionStart = -1

	if rev.RedirectTarget != "" {
		c.RealName = rev.RedirectTarget
	} else {
		c.RealName = c.Name
	}

	log.Debugf("Loaded %q: revision %d, %d bytes", c.RealName, c.RevisionID, len(c.code))
	return nil
}

// SeedLocal fills the model from wikitext the caller already holds,
// standing in for the fetch collaborator in offline paths and tests.
func (c *Code) SeedLocal(code string) {
	c.code = code
	c.loaded = true
	c.newTopicsOnTop = nil
	c.firstSectionStart = -1
}

// Wikitext returns the fetched page code. ok is false before any Load.
func (c *Code) Wikitext() (string, bool) {
	return c.code, c.loaded
}

// MarkStale drops the fetched code after a successful edit so a later
// read cannot observe pre-edit text.
func (c *Code) MarkStale() {
	c.code = ""
	c.loaded = false
	c.newTopicsOnTop = nil
	c.firstSectionStart = -1
}
