package page

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffStats summarizes one mutation in characters.
type DiffStats struct {
	Inserted  int
	Deleted   int
	Unchanged int
}

// Stats diffs old against new page code.
func Stats(oldCode, newCode string) DiffStats {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldCode, newCode, false)

	var s DiffStats
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Inserted += len(d.Text)
		case diffmatchpatch.DiffDelete:
			s.Deleted += len(d.Text)
		case diffmatchpatch.DiffEqual:
			s.Unchanged += len(d.Text)
		}
	}
	return s
}

// VerifyInsertOnly checks that a mutation never removed existing content.
// Whitespace deletions are fine (bottom placement trims blank padding),
// anything else would corrupt unrelated text and callers refuse to submit
// such code.
func VerifyInsertOnly(oldCode, newCode string) bool {
	dmp := diffmatchpatch.New()
	for _, d := range dmp.DiffMain(oldCode, newCode, false) {
		if d.Type == diffmatchpatch.DiffDelete && strings.TrimSpace(d.Text) != "" {
			log.Warnf("Mutation deletes %d chars of existing page code", len(d.Text))
			return false
		}
	}
	return true
}
