// Package timestamp converts localized signature date strings found in page
// text into canonical UTC instants, and back.
package timestamp

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Info is one parsed timestamp. Immutable once parsed.
type Info struct {
	RawText       string
	Date          time.Time // UTC-normalized
	MatchedFormat string
}

// Format pairs a Go reference layout with its derived anchored pattern.
type Format struct {
	Name    string
	Layout  string
	pattern *regexp.Regexp
}

// utcSuffix is the wiki convention for the zone part of a signature:
// "(UTC)", "(UTC+2)", "(UTC-5:30)" and so on.
const utcSuffix = ` \(UTC(?:([+-])(\d{1,2})(?::(\d{2}))?)?\)`

// memoKeyLen bounds the cache key; no supported layout plus zone suffix
// comes anywhere near this length.
const memoKeyLen = 96

// Parser scans text for signature timestamps against an ordered format set.
// Parse is pure: identical input always yields an identical result, which
// placement detection relies on when it runs the parser across a whole page.
type Parser struct {
	formats []Format
	memo    *lru.Cache[string, memoEntry]
}

type memoEntry struct {
	info Info
	ok   bool
}

// DefaultLayouts cover the common English signature conventions.
var DefaultLayouts = []struct{ Name, Layout string }{
	{"dmy-hm", "15:04, 2 January 2006"},
	{"mdy-hm", "15:04, January 2, 2006"},
	{"ymd-hm", "15:04, 2006 January 2"},
}

// NewParser builds a parser for the given layouts, most specific first.
// With no layouts it falls back to DefaultLayouts.
func NewParser(layouts map[string]string) (*Parser, error) {
	p := &Parser{}
	if len(layouts) == 0 {
		for _, d := range DefaultLayouts {
			f, err := compileFormat(d.Name, d.Layout)
			if err != nil {
				return nil, err
			}
			p.formats = append(p.formats, f)
		}
	} else {
		names := make([]string, 0, len(layouts))
		for name := range layouts {
			names = append(names, name)
		}
		// deterministic format order; ties between formats that match the
		// same length are broken by name
		sort.Strings(names)
		for _, name := range names {
			f, err := compileFormat(name, layouts[name])
			if err != nil {
				return nil, err
			}
			p.formats = append(p.formats, f)
		}
	}
	memo, err := lru.New[string, memoEntry](4096)
	if err != nil {
		return nil, err
	}
	p.memo = memo
	return p, nil
}

func compileFormat(name, layout string) (Format, error) {
	pat, err := layoutPattern(layout)
	if err != nil {
		return Format{}, fmt.Errorf("layout %q: %w", layout, err)
	}
	re, err := regexp.Compile(`^` + pat + utcSuffix)
	if err != nil {
		return Format{}, fmt.Errorf("layout %q: %w", layout, err)
	}
	return Format{Name: name, Layout: layout, pattern: re}, nil
}

// layoutPattern derives a matching regexp from a Go reference layout.
// Replacement order matters: longer tokens first so "2006" is consumed
// before "2" and "January" before "Jan".
func layoutPattern(layout string) (string, error) {
	type token struct{ ref, pat string }
	tokens := []token{
		{"January", `[A-Z][a-z]+`},
		{"2006", `\d{4}`},
		{"Jan", `[A-Z][a-z]{2}`},
		{"15", `\d{2}`},
		{"04", `\d{2}`},
		{"05", `\d{2}`},
		{"02", `\d{2}`},
		{"2", `\d{1,2}`},
	}

	var b strings.Builder
	rest := layout
	for len(rest) > 0 {
		matched := false
		for _, tk := range tokens {
			if strings.HasPrefix(rest, tk.ref) {
				b.WriteString(tk.pat)
				rest = rest[len(tk.ref):]
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		b.WriteString(regexp.QuoteMeta(rest[:1]))
		rest = rest[1:]
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("empty layout")
	}
	return b.String(), nil
}

// Parse matches text against every configured format at position 0 and
// keeps the longest (most specific) hit. Returns false when no format
// matches at the start of text; callers pre-locate candidate substrings.
func (p *Parser) Parse(text string) (Info, bool) {
	key := text
	if len(key) > memoKeyLen {
		key = key[:memoKeyLen]
	}
	if e, ok := p.memo.Get(key); ok {
		return e.info, e.ok
	}

	info, ok := p.parse(text)
	p.memo.Add(key, memoEntry{info: info, ok: ok})
	return info, ok
}

func (p *Parser) parse(text string) (Info, bool) {
	var (
		best    []string
		bestIdx []int
		bestFmt Format
	)
	for _, f := range p.formats {
		m := f.pattern.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		if best == nil || m[1] > bestIdx[1] {
			best = f.pattern.FindStringSubmatch(text)
			bestIdx = m
			bestFmt = f
		}
	}
	if best == nil {
		return Info{}, false
	}

	raw := best[0]
	offset, suffixLen := parseOffset(best)
	datePart := raw[:len(raw)-suffixLen]

	t, err := time.Parse(bestFmt.Layout, datePart)
	if err != nil {
		return Info{}, false
	}
	// The layout carries no zone, so Parse yields the wall time in UTC;
	// subtracting the signature's own offset normalizes the instant.
	t = t.Add(-offset).UTC()

	return Info{RawText: raw, Date: t, MatchedFormat: bestFmt.Name}, true
}

// parseOffset reads the captured "(UTC±h:mm)" groups and reports the zone
// offset plus the byte length of the whole suffix including leading space.
func parseOffset(groups []string) (time.Duration, int) {
	raw := groups[0]
	suffixLen := len(raw) - strings.LastIndex(raw, " (UTC")
	if groups[1] == "" {
		return 0, suffixLen
	}
	hours, _ := strconv.Atoi(groups[2])
	var minutes int
	if groups[3] != "" {
		minutes, _ = strconv.Atoi(groups[3])
	}
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if groups[1] == "-" {
		d = -d
	}
	return d, suffixLen
}

// FormatUTC renders a UTC instant back into the first configured layout
// with the standard "(UTC)" suffix.
func (p *Parser) FormatUTC(t time.Time) string {
	layout := DefaultLayouts[0].Layout
	if len(p.formats) > 0 {
		layout = p.formats[0].Layout
	}
	return t.UTC().Format(layout) + " (UTC)"
}

// Find locates the first parseable timestamp at or after position from in
// text, returning the Info and its byte offset, or ok=false. It walks
// candidate positions cheaply by only attempting a full parse where a
// two-digit hour could begin.
func (p *Parser) Find(text string, from int) (Info, int, bool) {
	for i := from; i < len(text)-1; i++ {
		if !isDigit(text[i]) || !isDigit(text[i+1]) {
			continue
		}
		// skip mid-number positions
		if i > 0 && isDigit(text[i-1]) {
			continue
		}
		if info, ok := p.Parse(text[i:]); ok {
			return info, i, true
		}
	}
	return Info{}, -1, false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
