package autocomplete

import (
	"reflect"
	"testing"
)

func TestSearch(t *testing.T) {
	testCases := []struct {
		text        string
		list        []string
		want        []string
		description string
	}{
		{
			"house",
			[]string{"housekeeper", "built the house", "mouse"},
			[]string{"housekeeper", "built the house"},
			"prefix match before mid-string match, non-matches dropped",
		},
		{
			"ja",
			[]string{"Jack", "Benja", "Jan", "Mo"},
			[]string{"Jack", "Jan", "Benja"},
			"case-insensitive, stable within each group",
		},
		{
			"zzz",
			[]string{"Jack", "Jan"},
			nil,
			"no matches",
		},
		{
			"a",
			[]string{"aa", "ba", "ab", "bb"},
			[]string{"aa", "ab", "ba"},
			"single-char query",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := Search(tc.text, tc.list)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Search(%q, %v) = %v, want %v", tc.text, tc.list, got, tc.want)
			}
		})
	}
}
