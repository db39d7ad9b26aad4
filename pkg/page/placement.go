package page

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/feldtn/wikitalk/pkg/config"
	"github.com/feldtn/wikitalk/pkg/timestamp"
	"github.com/feldtn/wikitalk/pkg/wikitext"
)

// Override answers whether new topics go on top for a given page name.
// ok=false means no opinion and the chronology scan decides.
type Override func(name string) (onTop bool, ok bool)

// ConfigOverride builds an Override from the per-site prefix lists.
func ConfigOverride(cfg config.PlacementConfig) Override {
	return func(name string) (bool, bool) {
		for _, p := range cfg.TopPrefixes {
			if strings.HasPrefix(name, p) {
				return true, true
			}
		}
		for _, p := range cfg.BottomPrefixes {
			if strings.HasPrefix(name, p) {
				return false, true
			}
		}
		return false, false
	}
}

// AnalyzePlacement determines whether new topics are conventionally added
// at the top of this page. Policy, in order: the per-site override; the
// signed chronology tally over consecutive top-level sections; namespace
// parity as the tie-break. The first section's offset is recorded for the
// mutator. Calling this before Load is a programming error.
func (c *Code) AnalyzePlacement(parser *timestamp.Parser, override Override) (bool, error) {
	if !c.loaded {
		return false, ErrNoCode
	}
	if c.newTopicsOnTop != nil {
		return *c.newTopicsOnTop, nil
	}

	onTop, decided := false, false
	if override != nil {
		onTop, decided = override(c.RealName)
		if decided {
			log.Debugf("Placement of %q decided by site override: top=%v", c.RealName, onTop)
		}
	}

	sections := sectionDates(c.code, parser)
	if !decided {
		tally := chronologyTally(sections)
		switch {
		case tally > 0:
			onTop = true
		case tally < 0:
			onTop = false
		default:
			// no signal, including zero or one section; discussion
			// namespaces pair oddly with their subject namespace
			onTop = c.Namespace%2 == 0
		}
		log.Debugf("Placement of %q: tally over %d sections, top=%v", c.RealName, len(sections), onTop)
	}

	c.newTopicsOnTop = &onTop
	if len(sections) > 0 {
		c.firstSectionStart = sections[0].start
	}
	return onTop, nil
}

// NewTopicsOnTop reports the derived placement. ok is false before
// AnalyzePlacement has run on the current code.
func (c *Code) NewTopicsOnTop() (bool, bool) {
	if c.newTopicsOnTop == nil {
		return false, false
	}
	return *c.newTopicsOnTop, true
}

// FirstSectionStart returns the recorded offset of the first top-level
// section heading, or -1 when the page has none or placement has not been
// analyzed yet.
func (c *Code) FirstSectionStart() int {
	return c.firstSectionStart
}

type sectionDate struct {
	start int
	date  *time.Time
}

// sectionDates pairs every top-level section with the first timestamp
// found inside it, in document order. The timestamp search runs over the
// comment-masked text so a signature inside <!-- --> cannot vote.
func sectionDates(code string, parser *timestamp.Parser) []sectionDate {
	masked := wikitext.HideComments(code)
	var out []sectionDate
	for _, s := range wikitext.Sections(code) {
		sd := sectionDate{start: s.Start}
		if info, _, ok := parser.Find(masked[:s.End], s.InnerEnd); ok {
			d := info.Date
			sd.date = &d
		}
		out = append(out, sd)
	}
	return out
}

// chronologyTally accumulates +1 for every consecutive section pair whose
// dates run newest-to-oldest, -1 for oldest-to-newest, 0 when a pair is
// incomparable.
func chronologyTally(sections []sectionDate) int {
	tally := 0
	for i := 1; i < len(sections); i++ {
		a, b := sections[i-1].date, sections[i].date
		if a == nil || b == nil {
			continue
		}
		if a.After(*b) {
			tally++
		} else if a.Before(*b) {
			tally--
		}
	}
	return tally
}
