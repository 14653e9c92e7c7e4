// Package migrations embeds the displayhub schema into the binary so the
// service can migrate its database without SQL files on disk.
package migrations

import (
	"embed"

	"github.com/nerrad567/displayhub/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
