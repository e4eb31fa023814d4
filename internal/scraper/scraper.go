package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/golf-results/internal/result"
)

const (
	BaseURL   = "https://www.espn.com"
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	Timeout   = 10 * time.Second

	resultsPath = "/golf/player/results/_/id/%d/season/%d"
)

// Fetcher returns the normalized result rows for one player and season
type Fetcher interface {
	FetchResults(ctx context.Context, playerID, season int) ([]*result.Row, error)
}

// FetchError reports a network failure, timeout or unexpected HTTP status
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Options configures a Scraper. Zero values fall back to the package defaults.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Scraper handles fetching and parsing ESPN golf pages
type Scraper struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// New creates a new Scraper instance with the default settings
func New() *Scraper {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Scraper from opts
func NewWithOptions(opts Options) *Scraper {
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}

	return &Scraper{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
	}
}

// ResultsURL returns the season results page for an ESPN player id
func (s *Scraper) ResultsURL(playerID, season int) string {
	return s.baseURL + fmt.Sprintf(resultsPath, playerID, season)
}

// FetchPage returns the raw markup of a player's season results page
func (s *Scraper) FetchPage(ctx context.Context, playerID, season int) ([]byte, error) {
	return s.get(ctx, s.ResultsURL(playerID, season))
}

// FetchResults fetches and parses a player's results for one season.
// A page without a results table yields no rows and no error.
func (s *Scraper) FetchResults(ctx context.Context, playerID, season int) ([]*result.Row, error) {
	page, err := s.FetchPage(ctx, playerID, season)
	if err != nil {
		return nil, err
	}
	return parseResults(bytes.NewReader(page))
}

func (s *Scraper) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}

// parseResults extracts result rows from every results table in the page
func parseResults(r io.Reader) ([]*result.Row, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	rows := make([]*result.Row, 0)
	doc.Find("table.Table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := rowCells(tr)
			if row, ok := result.Extract(cells); ok {
				rows = append(rows, row)
			}
		})
	})

	return rows, nil
}

// rowCells returns the text of each td in a row. The tournament cell keeps its
// text nodes separated so the course name survives.
func rowCells(tr *goquery.Selection) []string {
	tds := tr.Find("td")
	cells := make([]string, 0, tds.Length())
	tds.Each(func(i int, td *goquery.Selection) {
		sep := ""
		if i == 1 {
			sep = result.NameSeparator
		}
		cells = append(cells, cellText(td, sep))
	})
	return cells
}

// cellText joins the trimmed, non-empty text nodes under sel with sep
func cellText(sel *goquery.Selection, sep string) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, sep)
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*parts = append(*parts, text)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
