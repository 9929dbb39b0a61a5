package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// CoauthorSource selects where a profile's coauthors are read from.
type CoauthorSource string

const (
	// SourceColleagues reads the profile's public colleagues list.
	SourceColleagues CoauthorSource = "colleagues"
	// SourcePublications collects author names from the publication list.
	SourcePublications CoauthorSource = "publications"
)

// Scholar client defaults.
const (
	DefaultBaseURL   = "https://scholar.google.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultTimeout   = 30 * time.Second
)

// StatusError is returned when the profile site answers with a non-200
// status.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scholar: %s returned %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// ScholarOptions configures a ScholarClient. Zero values fall back to the
// package defaults.
type ScholarOptions struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	Source     CoauthorSource
	HTTPClient *http.Client
}

// ScholarClient fetches public academic profile pages and extracts the
// profile fields and coauthor names from their HTML.
type ScholarClient struct {
	baseURL    string
	userAgent  string
	source     CoauthorSource
	httpClient *http.Client
}

// NewScholarClient returns a client for the given options.
func NewScholarClient(opts ScholarOptions) (*ScholarClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Source == "" {
		opts.Source = SourceColleagues
	}
	if opts.Source != SourceColleagues && opts.Source != SourcePublications {
		return nil, fmt.Errorf("scholar: unknown coauthor source %q", opts.Source)
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("scholar: invalid base URL: %w", err)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &ScholarClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		source:     opts.Source,
		httpClient: hc,
	}, nil
}

// Fetch retrieves the profile with the given scholar ID.
func (c *ScholarClient) Fetch(ctx context.Context, id string) (*Record, error) {
	params := url.Values{"user": {id}, "hl": {"en"}}
	if c.source == SourcePublications {
		params.Set("cstart", "0")
		params.Set("pagesize", "100")
	}
	doc, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	rec, err := parseProfile(doc)
	if err != nil {
		return nil, fmt.Errorf("scholar: parse profile %s: %w", id, err)
	}
	rec.ScholarID = id

	switch c.source {
	case SourcePublications:
		rec.Coauthors = parsePublicationAuthors(doc, rec.Name)
	default:
		colleagues, err := c.get(ctx, url.Values{
			"user": {id}, "hl": {"en"}, "view_op": {"list_colleagues"},
		})
		if err != nil {
			return nil, fmt.Errorf("scholar: colleagues of %s: %w", id, err)
		}
		rec.Coauthors = parseColleagues(colleagues, rec.Name)
	}

	slog.Debug("scholar: parsed profile",
		"scholar_id", id, "name", rec.Name, "source", string(c.source),
		"coauthors", len(rec.Coauthors))
	return rec, nil
}

func (c *ScholarClient) get(ctx context.Context, params url.Values) (*html.Node, error) {
	u := c.baseURL + "/citations?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("scholar: create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scholar: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: u, Body: string(body)}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scholar: parse html: %w", err)
	}
	return doc, nil
}
