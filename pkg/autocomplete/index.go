package autocomplete

import (
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Index is a channel's roster-seeded default candidate set, a patricia
// trie keyed by the lowercased name so prefix retrieval stays cheap while
// the stored item keeps original casing.
type Index struct {
	trie *patricia.Trie
	size int
}

// NewIndex returns an empty candidate index.
func NewIndex() *Index {
	return &Index{trie: patricia.NewTrie()}
}

// Add inserts one candidate name.
func (ix *Index) Add(name string) {
	if name == "" {
		return
	}
	if ix.trie.Insert(patricia.Prefix(lower(name)), name) {
		ix.size++
	}
}

// Prefix returns up to limit candidates whose lowercased name starts with
// the lowercased prefix, in trie (lexicographic) order.
func (ix *Index) Prefix(prefix string, limit int) []string {
	var out []string
	err := ix.trie.VisitSubtree(patricia.Prefix(lower(prefix)), func(p patricia.Prefix, item patricia.Item) error {
		if limit > 0 && len(out) >= limit {
			return nil
		}
		name, ok := item.(string)
		if !ok {
			log.Errorf("Unknown item type: %T for key %s", item, p)
			return nil
		}
		out = append(out, name)
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting candidate trie: %v", err)
	}
	return out
}

// Len reports how many candidates are indexed.
func (ix *Index) Len() int {
	return ix.size
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
