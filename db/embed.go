// Package db carries the SQL migration files that define the warehouse
// schema. The files are embedded so a production binary can migrate a
// database without shipping the migrations directory alongside it.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
