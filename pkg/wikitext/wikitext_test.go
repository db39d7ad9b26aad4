package wikitext

import (
	"strings"
	"testing"
)

func TestHideComments(t *testing.T) {
	testCases := []struct {
		input       string
		description string
	}{
		{"plain text, nothing to hide", "no comments"},
		{"before <!-- hidden --> after", "one comment"},
		{"<!-- a --><!-- b -->middle", "adjacent comments"},
		{"start <!-- never closed", "unterminated comment"},
		{"<!---->", "empty comment"},
		{"", "empty string"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			out := HideComments(tc.input)
			if len(out) != len(tc.input) {
				t.Errorf("length changed: %d -> %d", len(tc.input), len(out))
			}
		})
	}
}

// every character outside a comment span must survive untouched
func TestHideCommentsPreservesOutside(t *testing.T) {
	in := "keep1 <!-- drop --> keep2 <!-- drop2 --> keep3"
	out := HideComments(in)

	for _, want := range []string{"keep1 ", " keep2 ", " keep3"} {
		if !strings.Contains(out, want) {
			t.Errorf("non-comment text %q missing from %q", want, out)
		}
	}
	if strings.Contains(out, "drop") {
		t.Errorf("comment text leaked into %q", out)
	}
}

func TestHideCommentsUnterminated(t *testing.T) {
	in := "visible <!-- everything after this is gone == no heading =="
	out := HideComments(in)

	if !strings.HasPrefix(out, "visible ") {
		t.Errorf("prefix altered: %q", out)
	}
	if strings.Contains(out, "heading") {
		t.Errorf("unterminated comment did not hide to EOF: %q", out)
	}
}

func TestSections(t *testing.T) {
	code := "intro\n== First ==\nbody one\n=== sub ===\nmore\n== Second ==\nbody two\n"

	sections := Sections(code)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Heading != "First" || sections[1].Heading != "Second" {
		t.Errorf("wrong headings: %q, %q", sections[0].Heading, sections[1].Heading)
	}
	if code[sections[0].Start:sections[0].Start+2] != "==" {
		t.Errorf("section start %d does not point at a heading line", sections[0].Start)
	}
	if sections[0].End != sections[1].Start {
		t.Errorf("first section should end where second starts: %d != %d", sections[0].End, sections[1].Start)
	}
	if sections[1].End != len(code) {
		t.Errorf("last section should end at EOF: %d != %d", sections[1].End, len(code))
	}
}

func TestSectionsSkipCommentedHeading(t *testing.T) {
	code := "<!--\n== Not a topic ==\n-->\n== Real ==\ntext\n"

	sections := Sections(code)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Heading != "Real" {
		t.Errorf("got heading %q", sections[0].Heading)
	}
}

func TestHideTemplates(t *testing.T) {
	in := "before {{outer|{{inner}}|arg}} after"
	out := HideTemplates(in)

	if len(out) != len(in) {
		t.Errorf("length changed: %d -> %d", len(in), len(out))
	}
	if !strings.HasPrefix(out, "before ") || !strings.HasSuffix(out, " after") {
		t.Errorf("text outside templates altered: %q", out)
	}
	if strings.Contains(out, "inner") || strings.Contains(out, "outer") {
		t.Errorf("template text leaked into %q", out)
	}
}

func TestSectionsSkipHeadingInsideTemplate(t *testing.T) {
	code := "{{quote|\n== Not a topic ==\n}}\n== Real ==\ntext\n"

	sections := Sections(code)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Heading != "Real" {
		t.Errorf("got heading %q", sections[0].Heading)
	}
}

func TestSectionsHeadingContainingTemplate(t *testing.T) {
	code := "== Status of {{tl|merge}} ==\ntext\n"

	sections := Sections(code)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Heading != "Status of {{tl|merge}}" {
		t.Errorf("heading must slice the original text, got %q", sections[0].Heading)
	}
}

func TestSectionsIgnoreDeeperLevels(t *testing.T) {
	testCases := []struct {
		code        string
		want        int
		description string
	}{
		{"=== deep ===\n", 0, "level 3 only"},
		{"==== deeper ====\n", 0, "level 4 only"},
		{"== top ==\n=== deep ===\n", 1, "mixed levels"},
		{"== a ==\n== b ==\n", 2, "two top level"},
		{"====\n", 0, "bare equals line"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			if got := len(Sections(tc.code)); got != tc.want {
				t.Errorf("expected %d sections, got %d", tc.want, got)
			}
		})
	}
}

func TestFirstSectionStart(t *testing.T) {
	code := "preamble\n== Topic ==\n"
	if got := FirstSectionStart(code); got != len("preamble\n") {
		t.Errorf("expected %d, got %d", len("preamble\n"), got)
	}
	if got := FirstSectionStart("no sections here"); got != -1 {
		t.Errorf("expected -1 for sectionless page, got %d", got)
	}
}
