package scraper

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const statsPage = `
<html>
	<body>
		<a class="AnchorLink" href="/golf/player/_/id/9478/scottie-scheffler">Scottie Scheffler</a>
		<a class="AnchorLink" href="https://www.espn.com/golf/player/_/id/8793/rory-mcilroy?src=stats">Rory McIlroy</a>
		<a href="/golf/player/_/id/9478/scottie-scheffler">Scottie Scheffler</a>
		<a href="/golf/player/_/id/5467/jordan-spieth"><img src="x.png"/></a>
		<a href="/golf/leaderboard">Leaderboard</a>
		<a href="/golf/player/_/id/10404/xander-schauffele"> Xander Schauffele </a>
	</body>
</html>
`

func TestFetchPlayerLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/golf/stats/player" {
			t.Errorf("request path = %q, want /golf/stats/player", r.URL.Path)
		}
		w.Write([]byte(statsPage))
	}))
	defer server.Close()

	s := NewWithOptions(Options{BaseURL: server.URL})
	links, err := s.FetchPlayerLinks(context.Background())
	if err != nil {
		t.Fatalf("FetchPlayerLinks() error: %v", err)
	}

	want := []PlayerLink{
		{Name: "Rory McIlroy", ID: 8793, URL: server.URL + "/golf/player/_/id/8793/rory-mcilroy"},
		{Name: "Scottie Scheffler", ID: 9478, URL: server.URL + "/golf/player/_/id/9478/scottie-scheffler"},
		{Name: "Xander Schauffele", ID: 10404, URL: server.URL + "/golf/player/_/id/10404/xander-schauffele"},
	}

	if len(links) != len(want) {
		t.Fatalf("FetchPlayerLinks() returned %d links, want %d: %+v", len(links), len(want), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %+v, want %+v", i, links[i], want[i])
		}
	}
}

func TestWritePlayerLinksCSV(t *testing.T) {
	var buf bytes.Buffer
	links := []PlayerLink{
		{Name: "Scottie Scheffler", ID: 9478, URL: "https://www.espn.com/golf/player/_/id/9478/scottie-scheffler"},
	}

	if err := WritePlayerLinksCSV(&buf, links); err != nil {
		t.Fatalf("WritePlayerLinksCSV() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("CSV has %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if lines[0] != "player_name,player_id,player_url" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "Scottie Scheffler,9478,https://www.espn.com/golf/player/_/id/9478/scottie-scheffler" {
		t.Errorf("row = %q", lines[1])
	}
}
