package mysqlreconnect

import "context"

// Decision is the outcome of a retry-policy evaluation.
type Decision int

const (
	Propagate Decision = iota
	Retry
)

func (d Decision) String() string {
	if d == Retry {
		return "retry"
	}
	return "propagate"
}

// attempt carries the per-invocation inputs to the executor and the policy.
// It is built fresh for every Run call and discarded afterwards.
type attempt struct {
	sql     string
	conn    *ConnectionDescriptor
	onError func(error)
	mode    RetryMode
	modeSet bool
}

func (at *attempt) effectiveMode(cfg *Config) RetryMode {
	if at.modeSet {
		return at.mode
	}
	return cfg.Mode
}

// decide evaluates whether err may be retried. The steps are ordered so the
// cheap context-free filters (suppression, allow-list) run before any message
// matching, and so the write-safety rule is the last gate before Retry.
func decide(ctx context.Context, cfg *Config, err error, at *attempt) Decision {
	if retryDisabled(ctx) {
		return Propagate
	}
	if at.conn != nil && len(cfg.AllowList) > 0 && !allowListed(cfg.AllowList, at.conn) {
		return Propagate
	}
	if familyOf(err) == FamilyNone {
		return Propagate
	}
	class := classifyMessage(err.Error())
	if class == NotTransient {
		return Propagate
	}
	if at.sql != "" && !isReadSQL(at.sql) {
		switch at.effectiveMode(cfg) {
		case ModeReadOnly:
			return Propagate
		case ModeReadWrite:
			// A write statement cannot be replayed for an error that may
			// have interrupted a statement already in flight.
			if class == TransientReadOnly {
				return Propagate
			}
		case ModeForce:
			// Bypasses the write-safety rule entirely.
		}
	}
	return Retry
}

func allowListed(patterns []DatabasePattern, conn *ConnectionDescriptor) bool {
	for _, p := range patterns {
		if p.match(conn.Host, conn.Database) {
			return true
		}
	}
	return false
}
