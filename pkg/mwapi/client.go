// Package mwapi implements the collaborator contracts the core consumes
// against a MediaWiki Action API endpoint: revision fetch, edit
// submission, fragment parsing and name lookups.
package mwapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/feldtn/wikitalk/pkg/config"
	"github.com/feldtn/wikitalk/pkg/edit"
	"github.com/feldtn/wikitalk/pkg/page"
)

// Client talks to one wiki's api.php.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client

	// Token authorizes edits; "+\\" is the anonymous token.
	Token string
}

// NewClient builds a client from API config.
func NewClient(cfg config.APIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:  cfg.URL,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: timeout},
		Token:     `+\`,
	}
}

func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

func (c *Client) post(ctx context.Context, form url.Values, out interface{}) error {
	form.Set("format", "json")
	form.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

type queryResponse struct {
	CurTimestamp string `json:"curtimestamp"`
	Query        struct {
		Redirects []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"redirects"`
		Pages []struct {
			PageID    int64  `json:"pageid"`
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Invalid   bool   `json:"invalid"`
			Revisions []struct {
				RevID int64 `json:"revid"`
				Slots struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// FetchPageRevision fetches the current revision of a page, following
// redirects. Missing pages map to page.ErrNotFound, unusable titles to
// page.ErrInvalidTitle, and structurally incomplete responses to
// page.ErrNoData.
func (c *Client) FetchPageRevision(ctx context.Context, title string) (*page.Revision, error) {
	params := url.Values{
		"action":       {"query"},
		"titles":       {title},
		"prop":         {"revisions"},
		"rvprop":       {"ids|content"},
		"rvslots":      {"main"},
		"redirects":    {"1"},
		"curtimestamp": {"1"},
	}

	var resp queryResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Query.Pages) == 0 {
		return nil, page.ErrNoData
	}

	p := resp.Query.Pages[0]
	if p.Invalid {
		return nil, page.ErrInvalidTitle
	}
	if p.Missing {
		return nil, page.ErrNotFound
	}
	if len(p.Revisions) == 0 {
		return nil, page.ErrNoData
	}

	redirectTarget := ""
	for _, r := range resp.Query.Redirects {
		if r.From == title {
			redirectTarget = r.To
		}
	}

	return &page.Revision{
		PageID:         p.PageID,
		Code:           p.Revisions[0].Slots.Main.Content,
		RevisionID:     p.Revisions[0].RevID,
		RedirectTarget: redirectTarget,
		QueryTimestamp: resp.CurTimestamp,
	}, nil
}

type editResponse struct {
	Edit struct {
		Result       string `json:"result"`
		PageID       int64  `json:"pageid"`
		NewTimestamp string `json:"newtimestamp"`
	} `json:"edit"`
	Error *struct {
		Code        string `json:"code"`
		Info        string `json:"info"`
		AbuseFilter *struct {
			Description string `json:"description"`
		} `json:"abusefilter"`
		SpamBlacklist *struct {
			Matches []string `json:"matches"`
		} `json:"spamblacklist"`
	} `json:"error"`
}

// SubmitEdit submits new page code. On success it returns the edit
// outcome with the new revision timestamp; otherwise a raw failure
// payload for edit.Classify. Transport errors ride in the payload's
// NetworkErr field so the reconciler can re-raise them verbatim.
func (c *Client) SubmitEdit(ctx context.Context, title, newCode, baseTimestamp, summary string) (*edit.Success, *edit.RawFailure) {
	form := url.Values{
		"action":         {"edit"},
		"title":          {title},
		"text":           {newCode},
		"summary":        {summary},
		"basetimestamp":  {baseTimestamp},
		"starttimestamp": {baseTimestamp},
		"token":          {c.Token},
	}

	var resp editResponse
	if err := c.post(ctx, form, &resp); err != nil {
		return nil, &edit.RawFailure{NetworkErr: err}
	}

	if resp.Error != nil {
		raw := &edit.RawFailure{
			Code: resp.Error.Code,
			Info: resp.Error.Info,
		}
		if resp.Error.AbuseFilter != nil {
			raw.AbuseFilterDescription = resp.Error.AbuseFilter.Description
		}
		if resp.Error.SpamBlacklist != nil {
			raw.SpamBlacklistMatches = resp.Error.SpamBlacklist.Matches
		}
		return nil, raw
	}
	if resp.Edit.Result != "Success" {
		return nil, &edit.RawFailure{Code: "unknown", Info: resp.Edit.Result}
	}

	log.Debugf("Edit saved on %q at %s", title, resp.Edit.NewTimestamp)
	return &edit.Success{NewTimestamp: resp.Edit.NewTimestamp}, nil
}

type parseResponse struct {
	Parse struct {
		Text string `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// ParseWikitextFragment renders a wikitext fragment to HTML.
func (c *Client) ParseWikitextFragment(ctx context.Context, wikitext string) (string, error) {
	form := url.Values{
		"action":             {"parse"},
		"text":               {wikitext},
		"contentmodel":       {"wikitext"},
		"prop":               {"text"},
		"disablelimitreport": {"1"},
	}

	var resp parseResponse
	if err := c.post(ctx, form, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("parse failed: %s (%s)", resp.Error.Info, resp.Error.Code)
	}
	return resp.Parse.Text, nil
}

type allUsersResponse struct {
	Query struct {
		AllUsers []struct {
			Name string `json:"name"`
		} `json:"allusers"`
	} `json:"query"`
}

// LookupUserNames returns user names starting with prefix.
func (c *Client) LookupUserNames(ctx context.Context, prefix string) ([]string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"allusers"},
		"auprefix": {prefix},
		"aulimit":  {"10"},
	}

	var resp allUsersResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Query.AllUsers))
	for _, u := range resp.Query.AllUsers {
		names = append(names, u.Name)
	}
	return names, nil
}

type prefixSearchResponse struct {
	Query struct {
		PrefixSearch []struct {
			Title string `json:"title"`
		} `json:"prefixsearch"`
	} `json:"query"`
}

func (c *Client) prefixSearch(ctx context.Context, prefix, namespace string) ([]string, error) {
	params := url.Values{
		"action":      {"query"},
		"list":        {"prefixsearch"},
		"pssearch":    {prefix},
		"psnamespace": {namespace},
		"pslimit":     {"10"},
	}

	var resp prefixSearchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Query.PrefixSearch))
	for _, p := range resp.Query.PrefixSearch {
		titles = append(titles, p.Title)
	}
	return titles, nil
}

// LookupPageTitles returns mainspace titles starting with prefix.
func (c *Client) LookupPageTitles(ctx context.Context, prefix string) ([]string, error) {
	return c.prefixSearch(ctx, prefix, "0")
}

// LookupTemplateTitles returns template names starting with prefix, with
// the namespace prefix stripped the way "{{" completion inserts them.
func (c *Client) LookupTemplateTitles(ctx context.Context, prefix string) ([]string, error) {
	titles, err := c.prefixSearch(ctx, prefix, "10")
	if err != nil {
		return nil, err
	}
	for i, t := range titles {
		titles[i] = strings.TrimPrefix(t, "Template:")
	}
	return titles, nil
}
