package gorm

import (
	"errors"
	"strings"

	pgconnv4 "github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// sqlStateError is implemented by the PgError of both pgconn generations:
// gorm.io/driver/postgres v1.4 runs on pgx v4, the pool probe on pgx v5.
type sqlStateError interface {
	error
	SQLState() string
}

// sqlState returns the SQLSTATE carried by err, if any
func sqlState(err error) (string, bool) {
	var stateErr sqlStateError
	if errors.As(err, &stateErr) {
		return stateErr.SQLState(), true
	}
	return "", false
}

// isUniqueViolation reports whether err comes from a unique index. Drivers
// with an error translator return gorm.ErrDuplicatedKey; raw postgres and
// sqlite errors are recognised as well.
func isUniqueViolation(err error) bool {
	return violates(err, gorm.ErrDuplicatedKey, pgUniqueViolation, "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return violates(err, gorm.ErrForeignKeyViolated, pgForeignKeyViolation, "FOREIGN KEY constraint failed")
}

func isCheckViolation(err error) bool {
	return violates(err, gorm.ErrCheckConstraintViolated, pgCheckViolation, "CHECK constraint failed")
}

func violates(err, translated error, code, sqliteMessage string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, translated) {
		return true
	}
	if state, ok := sqlState(err); ok {
		return state == code
	}
	return strings.Contains(err.Error(), sqliteMessage)
}

// violatedConstraint returns the constraint name of a postgres error, or the
// message of an untranslated sqlite error, which names the column.
func violatedConstraint(err error) string {
	var v5Err *pgconn.PgError
	if errors.As(err, &v5Err) {
		return v5Err.ConstraintName
	}
	var v4Err *pgconnv4.PgError
	if errors.As(err, &v4Err) {
		return v4Err.ConstraintName
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ""
	}
	return err.Error()
}
