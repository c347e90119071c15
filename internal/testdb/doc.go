// Package testdb provides helpers for PostgreSQL integration tests.
//
// Tests obtain a connection with GetTestDBWithT, which skips the test when
// DATABASE_URL is unset, applies the embedded goose migrations, and closes
// the connection on cleanup. Reset empties every table so each test starts
// from a known state.
package testdb
