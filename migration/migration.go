package migration

import "context"

// Migrators maps a version string to the migrator bringing the database to
// that version. Versions must be applied in order on an existing database; a
// fresh database only needs the latest 0000 plus the seed.
var Migrators = map[string]func(context.Context) error{
	"0000": migrate0000,
	"0001": migrate0001,
}
