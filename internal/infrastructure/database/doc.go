// Package database provides SQLite connectivity for displayhub.
//
// This package manages:
//   - Database connection with WAL mode and foreign keys enabled
//   - Embedded, versioned schema migrations
//   - Classification of driver constraint errors (IsUniqueViolation)
//   - A per-call query deadline shared by every repository
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql, and each runs in its own transaction.
package database
