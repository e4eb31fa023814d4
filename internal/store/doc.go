// Package store persists normalized tournament results.
//
// Two backends implement Store: PostgresStore talks to the hosted database
// through a pgx pool, and SQLiteStore keeps the same four tables in a local
// file. Both resolve tournaments by (name, season) and guard against
// inserting the same (player, tournament name, season) result twice.
//
// Every failure is returned as a *StoreError so callers can tell a rejected
// write apart from other errors with errors.As.
package store
