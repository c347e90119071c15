// Package migrations holds the goose SQL migrations for the PostgreSQL schema.
package migrations

import "embed"

// FS contains every *.sql migration in this directory.
//
//go:embed *.sql
var FS embed.FS

// TableName is the goose version table.
const TableName = "schema_migrations"
