package edit

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeParser struct {
	html  string
	err   error
	calls int
}

func (f *fakeParser) ParseWikitextFragment(ctx context.Context, wikitext string) (string, error) {
	f.calls++
	return f.html, f.err
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		raw         *RawFailure
		wantKind    Kind
		wantInMsg   string
		description string
	}{
		{
			&RawFailure{Code: "spamblacklist", SpamBlacklistMatches: []string{"http://x"}},
			KindSpamBlacklist,
			"http://x",
			"spam blacklist embeds the matched pattern",
		},
		{
			&RawFailure{Code: "titleblacklist-forbidden"},
			KindTitleBlacklist,
			"blacklisted",
			"title blacklist",
		},
		{
			&RawFailure{Code: "editconflict"},
			KindEditConflict,
			"edited the page",
			"edit conflict",
		},
		{
			&RawFailure{Code: "blocked", Info: "blocked by admin"},
			KindBlocked,
			"blocked",
			"blocked user",
		},
		{
			&RawFailure{Code: "autoblocked"},
			KindBlocked,
			"blocked",
			"autoblock maps to the same kind",
		},
		{
			&RawFailure{Code: "missingtitle"},
			KindPageDeleted,
			"deleted",
			"page deleted during edit",
		},
		{
			&RawFailure{Code: "ratelimited", Info: "You have exceeded your rate limit"},
			KindUnknown,
			"You have exceeded your rate limit",
			"unrecognized code embeds the collaborator info",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			f, err := Classify(context.Background(), tc.raw, nil)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if f.Kind != tc.wantKind {
				t.Errorf("expected kind %s, got %s", tc.wantKind, f.Kind)
			}
			if !strings.Contains(f.Message, tc.wantInMsg) {
				t.Errorf("message %q does not mention %q", f.Message, tc.wantInMsg)
			}
			if f.LogMessage == "" {
				t.Error("every failure needs a diagnostic log payload")
			}
		})
	}
}

// a transport failure is re-raised verbatim, never wrapped
func TestClassifyNetworkReRaises(t *testing.T) {
	netErr := errors.New("connection refused")
	f, err := Classify(context.Background(), &RawFailure{NetworkErr: netErr}, nil)
	if f != nil {
		t.Errorf("network failure must not classify: %+v", f)
	}
	if !errors.Is(err, netErr) {
		t.Errorf("expected the transport error verbatim, got %v", err)
	}
}

func TestClassifyAbuseFilterRendered(t *testing.T) {
	parser := &fakeParser{html: "<b>No swearing</b>"}
	raw := &RawFailure{Code: "abusefilter-disallowed", AbuseFilterDescription: "'''No swearing'''"}

	f, err := Classify(context.Background(), raw, parser)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if f.Kind != KindAbuseFilterDisallowed {
		t.Errorf("expected abuse-filter-disallowed, got %s", f.Kind)
	}
	if !f.IsRawMessage || f.Message != "<b>No swearing</b>" {
		t.Errorf("expected the rendered description, got %q (raw=%v)", f.Message, f.IsRawMessage)
	}
	if parser.calls != 1 {
		t.Errorf("expected one secondary parse, got %d", parser.calls)
	}
}

// the secondary parse failing must fall back to the plain description
func TestClassifyAbuseFilterParseFallback(t *testing.T) {
	parser := &fakeParser{err: errors.New("parse service down")}
	raw := &RawFailure{Code: "abusefilter-warning", AbuseFilterDescription: "plain description"}

	f, err := Classify(context.Background(), raw, parser)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if f.Kind != KindAbuseFilterWarning {
		t.Errorf("expected abuse-filter-warning, got %s", f.Kind)
	}
	if f.IsRawMessage || f.Message != "plain description" {
		t.Errorf("expected plain-text fallback, got %q (raw=%v)", f.Message, f.IsRawMessage)
	}
}
