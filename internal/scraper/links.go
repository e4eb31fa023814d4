package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jszwec/csvutil"
)

const statsPath = "/golf/stats/player"

var playerHrefPattern = regexp.MustCompile(`/golf/player/_/id/(\d+)/([^?#]+)`)

// PlayerLink is a player profile found on the ESPN golf stats page
type PlayerLink struct {
	Name string `json:"player_name" csv:"player_name"`
	ID   int    `json:"player_id" csv:"player_id"`
	URL  string `json:"player_url" csv:"player_url"`
}

// FetchPlayerLinks fetches the golf stats page and returns the player profiles
// it links to, one per player id, sorted by name
func (s *Scraper) FetchPlayerLinks(ctx context.Context) ([]PlayerLink, error) {
	page, err := s.get(ctx, s.baseURL+statsPath)
	if err != nil {
		return nil, err
	}
	return s.parsePlayerLinks(bytes.NewReader(page))
}

func (s *Scraper) parsePlayerLinks(r io.Reader) ([]PlayerLink, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	links := make([]PlayerLink, 0)
	seen := make(map[int]bool)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := playerHrefPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}

		name := strings.TrimSpace(a.Text())
		if name == "" {
			return
		}

		id, err := strconv.Atoi(m[1])
		if err != nil || seen[id] {
			return
		}
		seen[id] = true

		links = append(links, PlayerLink{
			Name: name,
			ID:   id,
			URL:  fmt.Sprintf("%s/golf/player/_/id/%d/%s", s.baseURL, id, m[2]),
		})
	})

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Name < links[j].Name
	})

	return links, nil
}

// WritePlayerLinksCSV writes links as CSV with a player_name,player_id,player_url header
func WritePlayerLinksCSV(w io.Writer, links []PlayerLink) error {
	data, err := csvutil.Marshal(links)
	if err != nil {
		return fmt.Errorf("encoding CSV: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}
