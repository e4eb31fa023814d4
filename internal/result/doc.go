// Package result turns scraped ESPN results-table rows into typed tournament results.
//
// A row is an ordered slice of cell texts. Extract admits or rejects the row,
// reads the fixed-position fields (date range, tournament and course name,
// finishing position) and then classifies the trailing cells into a score,
// an earnings figure and per-round stroke totals. Fields that cannot be
// derived are left absent rather than zeroed.
package result
