package migrations

import "embed"

// Files exposes embedded SQL migration files, one tree per database engine.
//
//go:embed postgres/*.sql sqlite/*.sql
var Files embed.FS
