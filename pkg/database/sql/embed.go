// Package sql embeds the schema files applied at startup.
package sql

import "embed"

// Postgres holds the PostgreSQL schema, applied in lexical file order.
//
//go:embed schema/*.sql
var Postgres embed.FS

// ClickHouse holds the ClickHouse analytics schema.
//
//go:embed clickhouse/*.sql
var ClickHouse embed.FS
