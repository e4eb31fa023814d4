// Package cli implements the command-line interface for golf-results.
//
// The cli package provides the Cobra-based commands: scrape runs the importer
// over the configured roster and seasons, players collects player links from
// ESPN's stats page, db inspects or clears the database, and backup export
// converts a JSON backup to CSV or XLSX. Configuration and logging are set up
// once in the root command before any subcommand runs.
package cli
