// Package backup provides JSON file backups of a player's scraped results.
//
// Each player gets one file, <name>_<espn id>.json, holding the rows found
// for every season that had results. Backups are written whether or not a
// database is configured, so a run without credentials still leaves its data
// on disk. The default location is ./data.
package backup
