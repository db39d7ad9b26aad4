package page

import (
	"context"
	"errors"
	"testing"
)

type fakeFetcher struct {
	rev   *Revision
	err   error
	calls int
}

func (f *fakeFetcher) FetchPageRevision(ctx context.Context, title string) (*Revision, error) {
	f.calls++
	return f.rev, f.err
}

func TestNewTitleParsing(t *testing.T) {
	testCases := []struct {
		title       string
		wantNS      int
		description string
	}{
		{"Talk:Example", 1, "talk namespace"},
		{"User talk:Someone", 3, "user talk namespace"},
		{"Example", 0, "main namespace"},
		{"Template:Cite web", 10, "template namespace"},
		{"2001: A Space Odyssey", 0, "colon without a namespace prefix"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			pc, err := New(tc.title)
			if err != nil {
				t.Fatalf("New(%q): %v", tc.title, err)
			}
			if pc.Namespace != tc.wantNS {
				t.Errorf("expected namespace %d, got %d", tc.wantNS, pc.Namespace)
			}
			if pc.RealName != tc.title {
				t.Errorf("RealName should equal Name before any fetch: %q", pc.RealName)
			}
		})
	}
}

func TestNewNormalizesFirstLetter(t *testing.T) {
	pc, err := New("Talk:archive policy")
	if err != nil {
		t.Fatal(err)
	}
	if pc.Name != "Talk:Archive policy" {
		t.Errorf("page name part not case-normalized: %q", pc.Name)
	}

	pc, err = New("sandbox")
	if err != nil {
		t.Fatal(err)
	}
	if pc.Name != "Sandbox" {
		t.Errorf("mainspace title not case-normalized: %q", pc.Name)
	}
}

func TestNewRejectsBadTitles(t *testing.T) {
	for _, title := range []string{"", "   ", "a[b]", "x|y", "{{t}}"} {
		if _, err := New(title); !errors.Is(err, ErrInvalidTitle) {
			t.Errorf("New(%q): expected ErrInvalidTitle, got %v", title, err)
		}
	}
}

func TestLoad(t *testing.T) {
	pc, _ := New("Talk:Loaded")
	f := &fakeFetcher{rev: &Revision{
		PageID:         42,
		Code:           "== T ==\nbody\n",
		RevisionID:     1001,
		QueryTimestamp: "2021-05-10T15:24:00Z",
	}}

	if err := pc.Load(context.Background(), f); err != nil {
		t.Fatalf("Load: %v", err)
	}
	code, ok := pc.Wikitext()
	if !ok || code != "== T ==\nbody\n" {
		t.Errorf("code not populated: %q, %v", code, ok)
	}
	if pc.RevisionID != 1001 || pc.PageID != 42 {
		t.Errorf("metadata not populated: rev=%d page=%d", pc.RevisionID, pc.PageID)
	}
	if pc.RealName != "Talk:Loaded" {
		t.Errorf("RealName should stay the requested name without a redirect: %q", pc.RealName)
	}
}

func TestLoadResolvesRedirect(t *testing.T) {
	pc, _ := New("Talk:Old name")
	f := &fakeFetcher{rev: &Revision{
		Code:           "x",
		RevisionID:     7,
		RedirectTarget: "Talk:New name",
	}}

	if err := pc.Load(context.Background(), f); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pc.RealName != "Talk:New name" {
		t.Errorf("RealName should resolve to the redirect target: %q", pc.RealName)
	}
	if pc.Name != "Talk:Old name" {
		t.Errorf("Name must stay the requested title: %q", pc.Name)
	}
}

func TestLoadFailures(t *testing.T) {
	testCases := []struct {
		fetcher     *fakeFetcher
		wantErr     error
		description string
	}{
		{&fakeFetcher{err: ErrNotFound}, ErrNotFound, "missing page"},
		{&fakeFetcher{err: ErrInvalidTitle}, ErrInvalidTitle, "invalid title"},
		{&fakeFetcher{rev: &Revision{}}, ErrNoData, "structurally incomplete response"},
		{&fakeFetcher{rev: nil}, ErrNoData, "nil revision"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			pc, _ := New("Talk:Failing")
			if err := pc.Load(context.Background(), tc.fetcher); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if _, ok := pc.Wikitext(); ok {
				t.Error("failed load must not populate code")
			}
		})
	}
}

func TestMarkStale(t *testing.T) {
	parser := newTestParser(t)
	pc := talkPage(t, "Talk:Stale", "== T ==\nbody\n")
	if _, err := pc.AnalyzePlacement(parser, nil); err != nil {
		t.Fatalf("AnalyzePlacement: %v", err)
	}

	pc.MarkStale()
	if _, ok := pc.Wikitext(); ok {
		t.Error("stale page still exposes code")
	}
	if _, ok := pc.NewTopicsOnTop(); ok {
		t.Error("stale page still exposes derived placement")
	}
}
