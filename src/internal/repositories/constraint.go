package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrNotFound is returned by point lookups when no row matches
var ErrNotFound = errors.New("record not found")

// ConstraintKind tags a store failure by the constraint that rejected it
type ConstraintKind int

const (
	// ConstraintNone means the failure was not a constraint violation
	ConstraintNone ConstraintKind = iota
	// ConstraintUnique is a unique or primary key violation
	ConstraintUnique
	// ConstraintForeignKey is a missing referenced row, or a parent that still has children
	ConstraintForeignKey
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintUnique:
		return "unique"
	case ConstraintForeignKey:
		return "foreign_key"
	default:
		return "none"
	}
}

// StoreError is the tagged result of a failed statement
type StoreError struct {
	Kind   ConstraintKind
	Op     string
	Entity string
	Err    error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Kind == ConstraintNone {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("%s %s: %s violation: %v", e.Op, e.Entity, e.Kind, e.Err)
}

// Unwrap returns the driver error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsUnique reports whether err is a unique violation
func IsUnique(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == ConstraintUnique
}

// IsForeignKey reports whether err is a foreign key violation
func IsForeignKey(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == ConstraintForeignKey
}

// wrapError classifies err and tags it with the operation and table
func wrapError(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Kind: Classify(err), Op: op, Entity: entity, Err: err}
}

// Classify maps a driver error to the constraint that caused it
func Classify(err error) ConstraintKind {
	if err == nil {
		return ConstraintNone
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ConstraintUnique
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ConstraintUnique
		case "23503":
			return ConstraintForeignKey
		}
		return ConstraintNone
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return ConstraintUnique
		case 1451, 1452:
			return ConstraintForeignKey
		}
		return ConstraintNone
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ConstraintUnique
		case sqlite3.ErrConstraintForeignKey:
			return ConstraintForeignKey
		}
		return ConstraintNone
	}

	// The pure-Go sqlite driver only exposes the message text
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return ConstraintUnique
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ConstraintForeignKey
	}
	return ConstraintNone
}
