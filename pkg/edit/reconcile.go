// Package edit turns raw wiki edit failures into a typed, user-actionable
// classification, and carries the outcome of successful submissions.
package edit

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/feldtn/wikitalk/internal/utils"
)

// Kind is the failure taxonomy for edit submissions.
type Kind string

const (
	KindSpamBlacklist         Kind = "spam-blacklist"
	KindTitleBlacklist        Kind = "title-blacklist"
	KindAbuseFilterWarning    Kind = "abuse-filter-warning"
	KindAbuseFilterDisallowed Kind = "abuse-filter-disallowed"
	KindEditConflict          Kind = "edit-conflict"
	KindBlocked               Kind = "blocked"
	KindPageDeleted           Kind = "page-deleted"
	KindNetwork               Kind = "network"
	KindUnknown               Kind = "unknown"
)

// Success is the outcome of a completed edit.
type Success struct {
	NewTimestamp string
}

// Failure is one classified edit failure. Constructed once per attempt,
// never mutated. Message is for the user; LogMessage is the diagnostic
// payload; IsRawMessage marks Message as pre-rendered rich text.
type Failure struct {
	Kind         Kind
	Message      string
	IsRawMessage bool
	LogMessage   string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("edit failed (%s): %s", f.Kind, f.Message)
}

// RawFailure is the machine-readable payload the edit collaborator hands
// back. NetworkErr set means the request itself failed.
type RawFailure struct {
	Code                   string
	Info                   string
	SpamBlacklistMatches   []string
	AbuseFilterDescription string
	NetworkErr             error
}

// FragmentParser renders a wikitext fragment to HTML; used for abuse
// filter descriptions, which filters author in wikitext.
type FragmentParser interface {
	ParseWikitextFragment(ctx context.Context, wikitext string) (string, error)
}

// Classify maps a raw edit failure to the taxonomy. A transport failure is
// re-raised verbatim, never wrapped: no recovery message applies to it.
// Classify performs no retries; retry policy belongs to the caller.
func Classify(ctx context.Context, raw *RawFailure, parser FragmentParser) (*Failure, error) {
	if raw.NetworkErr != nil {
		return nil, raw.NetworkErr
	}

	switch raw.Code {
	case "spamblacklist":
		matches := strings.Join(raw.SpamBlacklistMatches, ", ")
		return &Failure{
			Kind:       KindSpamBlacklist,
			Message:    fmt.Sprintf("The text you tried to save matches the spam blacklist: %s. Remove the link to proceed.", matches),
			LogMessage: "spamblacklist: " + matches,
		}, nil

	case "titleblacklist", "titleblacklist-forbidden", "titleblacklist-forbidden-edit":
		return &Failure{
			Kind:       KindTitleBlacklist,
			Message:    "This page title is blacklisted and cannot be edited.",
			LogMessage: "titleblacklist: " + raw.Info,
		}, nil

	case "abusefilter-warning":
		msg, rich := renderFilterDescription(ctx, raw, parser)
		return &Failure{
			Kind:         KindAbuseFilterWarning,
			Message:      msg,
			IsRawMessage: rich,
			LogMessage:   "abusefilter-warning: " + raw.AbuseFilterDescription,
		}, nil

	case "abusefilter-disallowed":
		msg, rich := renderFilterDescription(ctx, raw, parser)
		return &Failure{
			Kind:         KindAbuseFilterDisallowed,
			Message:      msg,
			IsRawMessage: rich,
			LogMessage:   "abusefilter-disallowed: " + raw.AbuseFilterDescription,
		}, nil

	case "editconflict":
		return &Failure{
			Kind:       KindEditConflict,
			Message:    "Someone else edited the page while you were writing. Reload and try again.",
			LogMessage: "editconflict",
		}, nil

	case "blocked", "autoblocked":
		return &Failure{
			Kind:       KindBlocked,
			Message:    "Your account is blocked from editing this page.",
			LogMessage: raw.Code + ": " + raw.Info,
		}, nil

	case "missingtitle", "pagedeleted":
		return &Failure{
			Kind:       KindPageDeleted,
			Message:    "The page was deleted while you were editing it.",
			LogMessage: raw.Code,
		}, nil

	default:
		return &Failure{
			Kind:       KindUnknown,
			Message:    fmt.Sprintf("The edit could not be saved: %s", utils.FirstLineOf(raw.Info)),
			LogMessage: raw.Code + ": " + raw.Info,
		}, nil
	}
}

// renderFilterDescription runs the filter's own wikitext description
// through the parse collaborator, falling back to plain text when the
// secondary parse fails.
func renderFilterDescription(ctx context.Context, raw *RawFailure, parser FragmentParser) (string, bool) {
	desc := raw.AbuseFilterDescription
	if desc == "" {
		desc = raw.Info
	}
	if parser == nil {
		return desc, false
	}
	html, err := parser.ParseWikitextFragment(ctx, desc)
	if err != nil {
		log.Debugf("Filter description parse failed, using plain text: %v", err)
		return desc, false
	}
	return html, true
}
