package autocomplete

import (
	"github.com/feldtn/wikitalk/internal/utils"
)

// Search filters list down to case-insensitive containment matches of
// text, with every entry whose match starts at position 0 placed before
// all others. Relative order inside each group is preserved; tests depend
// on that stability.
func Search(text string, list []string) []string {
	var starts, contains []string
	for _, item := range list {
		idx := utils.IndexIgnoreCase(item, text)
		switch {
		case idx == 0:
			starts = append(starts, item)
		case idx > 0:
			contains = append(contains, item)
		}
	}
	return append(starts, contains...)
}
