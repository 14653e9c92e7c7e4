package database

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrConstraintViolation is returned (wrapped) by repositories when a write
// is rejected by a UNIQUE or FOREIGN KEY constraint they do not translate
// into a domain error of their own.
var ErrConstraintViolation = errors.New("database: constraint violation")

// IsUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY
// constraint failure anywhere in its chain.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// IsForeignKeyViolation reports whether err is a SQLite FOREIGN KEY failure.
func IsForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// IsUniqueViolationOn reports whether err is a UNIQUE or PRIMARY KEY failure
// on the given "table.column", as named in SQLite's error message.
func IsUniqueViolationOn(err error, column string) bool {
	if !IsUniqueViolation(err) {
		return false
	}
	var sqliteErr sqlite3.Error
	errors.As(err, &sqliteErr)
	return strings.Contains(sqliteErr.Error(), column)
}
