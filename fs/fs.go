package appfs

import "embed"

// FS holds the files shipped inside the binaries: SQL migrations and the initial page seeds.
//
//go:embed migrations/*.sql seeds/*.yaml
var FS embed.FS

const (
	MigrationsDir = "migrations"
	SeedsPattern  = "seeds/*.yaml"
)
