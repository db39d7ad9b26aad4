package page

import (
	"strings"

	"github.com/feldtn/wikitalk/pkg/wikitext"
)

// Placement says where a new topic is inserted on the page.
type Placement int

const (
	PlacementBottom Placement = iota
	PlacementTop
)

func (p Placement) String() string {
	if p == PlacementTop {
		return "top"
	}
	return "bottom"
}

// Mutation is the result of inserting a comment into page code.
type Mutation struct {
	NewCode             string
	CodeBeforeInsertion string
}

// ComputeNewCode inserts commentCode into existingCode at the given
// placement. Pure given its inputs: no network, no model mutation.
//
// Top placement splits existingCode at the first top-level section
// boundary (found against the comment-masked text, sliced from the
// original) and inserts the comment plus one newline before it. Bottom
// placement trims leading whitespace, ensures exactly one newline before
// the comment, and appends.
func ComputeNewCode(existingCode, commentCode string, placement Placement) Mutation {
	if placement == PlacementTop {
		idx := wikitext.FirstSectionStart(existingCode)
		if idx < 0 {
			idx = len(existingCode)
		}
		before := existingCode[:idx]
		return Mutation{
			NewCode:             before + commentCode + "\n" + existingCode[idx:],
			CodeBeforeInsertion: before,
		}
	}

	base := strings.TrimLeft(existingCode, " \t\r\n")
	if base != "" {
		base = strings.TrimRight(base, "\n") + "\n"
	}
	return Mutation{
		NewCode:             base + commentCode,
		CodeBeforeInsertion: base,
	}
}

// InsertComment applies ComputeNewCode to the loaded page code, choosing
// top placement from the derived placement fact. AnalyzePlacement must
// have run first when the caller wants top placement detection.
func (c *Code) InsertComment(commentCode string) (Mutation, error) {
	if !c.loaded {
		return Mutation{}, ErrNoCode
	}
	placement := PlacementBottom
	if onTop, ok := c.NewTopicsOnTop(); ok && onTop {
		placement = PlacementTop
	}
	return ComputeNewCode(c.code, commentCode, placement), nil
}
