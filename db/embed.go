// Package db embeds the database schema applied on startup.
package db

import _ "embed"

// Schema contains the DDL for the cart persistence tables.
//
//go:embed migrations/001_schema.sql
var Schema string
