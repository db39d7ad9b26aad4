package wikitext

import (
	"regexp"
	"strings"
)

// Section is a structured match span for one top-level (level 2) section.
// Offsets index the original, unmasked string.
type Section struct {
	Start      int    // offset of the heading line's first byte
	InnerStart int    // offset of the heading text
	InnerEnd   int    // offset just past the heading text
	End        int    // offset of the next section's Start, or len(code)
	Heading    string // trimmed heading text, sliced from the original
}

// headingLine matches a candidate level-2 heading line. Deeper levels are
// rejected afterwards by inspecting the inner text, which is simpler than
// encoding "exactly two equals on each side" in the pattern itself.
var headingLine = regexp.MustCompile(`(?m)^==([^\n]*?)==[ \t]*$`)

// Sections scans code for top-level section boundaries. The scan runs
// against a copy with comments and templates masked out, so a
// commented-out heading or a "==" inside a template argument never
// counts, but all spans slice the original string. Each call uses a
// fresh scan with no shared state.
func Sections(code string) []Section {
	masked := HideTemplates(HideComments(code))

	var sections []Section
	for _, m := range headingLine.FindAllStringSubmatchIndex(masked, -1) {
		inner := masked[m[2]:m[3]]
		// "=== x ===" and deeper produce inner text that still touches
		// an equals sign; those are subsection headings, not topics.
		if strings.HasPrefix(inner, "=") || strings.HasSuffix(inner, "=") {
			continue
		}
		if strings.TrimSpace(code[m[2]:m[3]]) == "" {
			continue
		}
		sections = append(sections, Section{
			Start:      m[0],
			InnerStart: m[2],
			InnerEnd:   m[3],
			Heading:    strings.TrimSpace(code[m[2]:m[3]]),
		})
	}

	for i := range sections {
		if i+1 < len(sections) {
			sections[i].End = sections[i+1].Start
		} else {
			sections[i].End = len(code)
		}
	}
	return sections
}

// FirstSectionStart returns the offset of the first top-level section
// heading, or -1 when the page has none.
func FirstSectionStart(code string) int {
	sections := Sections(code)
	if len(sections) == 0 {
		return -1
	}
	return sections[0].Start
}
