// Package scraper provides HTTP fetching and HTML parsing for ESPN golf player pages.
//
// The scraper fetches a player's season results page, walks every results table
// and hands each row's cell texts to the result extractor. The combined
// tournament/course cell keeps its text nodes apart with result.NameSeparator so
// the course name can be split off later. The package also collects player
// profile links from the ESPN golf stats page.
package scraper
