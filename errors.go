package mysqlreconnect

import (
	"errors"
	"strings"
)

// ErrorFamily tells the core which broad kind of database failure an error
// represents. Errors outside every family are never retried, no matter what
// their message says.
type ErrorFamily int

const (
	FamilyNone ErrorFamily = iota
	FamilyStatementInvalid
	FamilyDriver
	FamilyConnectionNotEstablished
)

func (f ErrorFamily) String() string {
	switch f {
	case FamilyStatementInvalid:
		return "statement_invalid"
	case FamilyDriver:
		return "driver"
	case FamilyConnectionNotEstablished:
		return "connection_not_established"
	default:
		return "none"
	}
}

// TransientClass is the verdict of message-fingerprint classification.
type TransientClass int

const (
	NotTransient TransientClass = iota
	// TransientReadOnly errors are safe to retry only for read statements:
	// the server may have executed part of the statement before the
	// connection dropped.
	TransientReadOnly
	// TransientReadWrite errors are safe to retry for any statement kind
	// because they occur before the statement reaches the server.
	TransientReadWrite
)

func (c TransientClass) String() string {
	switch c {
	case TransientReadOnly:
		return "transient_read_only"
	case TransientReadWrite:
		return "transient_read_write"
	default:
		return "not_transient"
	}
}

// Fingerprints are literal substrings matched against error messages
// (case-sensitive). They are data, not code: extending either set via
// AddReadOnlyFingerprint / AddReadWriteFingerprint changes classification
// without touching any decision logic.
var (
	readOnlyFingerprints = map[string]string{
		"lost_connection_during_query": "Lost connection to MySQL server during query",
	}

	readWriteFingerprints = map[string]string{
		"server_gone_away":      "MySQL server has gone away",
		"server_shutdown":       "Server shutdown in progress",
		"closed_connection":     "closed MySQL connection",
		"cannot_connect":        "Can't connect to MySQL server",
		"cannot_connect_socket": "Can't connect to local MySQL server",
		"query_interrupted":     "Query execution was interrupted",
		"access_denied":         "Access denied for user",
		"read_only_option":      "The MySQL server is running with the --read-only option",
		"unknown_host":          "Unknown MySQL server host",
		"lost_connection_at":    "Lost connection to MySQL server at",
		"connection_killed":     "Connection was killed",
	}
)

// AddReadOnlyFingerprint registers an error-message substring that marks a
// failure as retryable for read statements only.
// Not concurrent-safe; register in init() before any retry runs.
func AddReadOnlyFingerprint(name, substring string) {
	readOnlyFingerprints[name] = substring
}

// AddReadWriteFingerprint registers an error-message substring that marks a
// failure as retryable regardless of statement kind.
// Not concurrent-safe; register in init() before any retry runs.
func AddReadWriteFingerprint(name, substring string) {
	readWriteFingerprints[name] = substring
}

// FamilyFunc maps an error (one link of an Unwrap chain) onto an ErrorFamily.
// Returning FamilyNone means "not mine"; the next registered function is
// consulted.
type FamilyFunc func(error) ErrorFamily

var familyFuncs []FamilyFunc

// RegisterFamilyFunc appends a family classifier. Functions are called in
// FIFO order for every link of the error's Unwrap chain until one claims it.
// Not concurrent-safe; register in init().
func RegisterFamilyFunc(fn FamilyFunc) {
	familyFuncs = append(familyFuncs, fn)
}

// familyOf walks the Unwrap chain looking for a registered family.
func familyOf(err error) ErrorFamily {
	for e := err; e != nil; e = errors.Unwrap(e) {
		for _, fn := range familyFuncs {
			if f := fn(e); f != FamilyNone {
				return f
			}
		}
	}
	return FamilyNone
}

// classifyMessage matches msg against the fingerprint sets. Read-write
// membership is checked first so a message matching both sets yields the more
// permissive verdict.
func classifyMessage(msg string) TransientClass {
	for _, sub := range readWriteFingerprints {
		if strings.Contains(msg, sub) {
			return TransientReadWrite
		}
	}
	for _, sub := range readOnlyFingerprints {
		if strings.Contains(msg, sub) {
			return TransientReadOnly
		}
	}
	return NotTransient
}

// Classify reports whether err is a transient database failure and how safely
// it may be retried. Errors outside every registered family are NotTransient.
func Classify(err error) TransientClass {
	if err == nil || familyOf(err) == FamilyNone {
		return NotTransient
	}
	return classifyMessage(err.Error())
}

// IsTransient reports whether err would be retried for a read statement.
func IsTransient(err error) bool {
	return Classify(err) != NotTransient
}
