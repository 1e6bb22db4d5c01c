package database

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// FailureClass partitions store errors into the categories the
// reconciliation controller makes decisions on. NotFound, SchemaMismatch and
// Transient are recoverable (the write is redirected to the fallback cache);
// Forbidden, Conflict and Unknown are surfaced and reconciled by reload.
type FailureClass string

const (
	FailureNone           FailureClass = "none"
	FailureNotFound       FailureClass = "not_found"       // relation absent: store not provisioned
	FailureSchemaMismatch FailureClass = "schema_mismatch" // expected column absent
	FailureForbidden      FailureClass = "forbidden"       // policy/ownership violation
	FailureConflict       FailureClass = "conflict"        // constraint violation, missing referenced row
	FailureTransient      FailureClass = "transient"       // network, timeout, lock contention
	FailureUnknown        FailureClass = "unknown"
)

// Recoverable reports whether the class redirects writes to the fallback
// cache instead of surfacing an error.
func (f FailureClass) Recoverable() bool {
	switch f {
	case FailureNotFound, FailureSchemaMismatch, FailureTransient:
		return true
	}
	return false
}

// ErrInvalidStatus is returned when a write carries a status outside the UI
// vocabulary. Classified as a Conflict.
var ErrInvalidStatus = errors.New("invalid reading status")

// ErrEntryNotFound is returned when an update or remove targets an entry id
// the store has no row for.
var ErrEntryNotFound = errors.New("reading list entry not found")

// Classify maps a store error onto its failure class.
func Classify(err error) FailureClass {
	if err == nil {
		return FailureNone
	}

	if errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) {
		return FailureConflict
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FailureTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureTransient
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrInterrupt, sqlite3.ErrIoErr:
			return FailureTransient
		case sqlite3.ErrConstraint:
			return FailureConflict
		case sqlite3.ErrAuth, sqlite3.ErrPerm, sqlite3.ErrReadonly:
			return FailureForbidden
		case sqlite3.ErrError:
			return classifyMessage(sqliteErr.Error())
		}
		return FailureUnknown
	}

	// Errors that cross process boundaries (or are produced by gorm's
	// statement builder) lose their type; fall back on the message.
	if class := classifyMessage(err.Error()); class != FailureUnknown {
		return class
	}

	return FailureUnknown
}

func classifyMessage(msg string) FailureClass {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "no such table"):
		return FailureNotFound
	case strings.Contains(msg, "no such column"):
		return FailureSchemaMismatch
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "timeout"):
		return FailureTransient
	case strings.Contains(msg, "constraint"):
		return FailureConflict
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "access denied"):
		return FailureForbidden
	}
	return FailureUnknown
}
