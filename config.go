package mysqlreconnect

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// RetryMode selects how aggressively write statements may be retried.
type RetryMode int

const (
	// ModeReadOnly retries only read statements (SELECT/SHOW/SET).
	ModeReadOnly RetryMode = iota
	// ModeReadWrite also retries writes, but only for errors that are known
	// to occur before the statement reaches the server.
	ModeReadWrite
	// ModeForce retries everything, including writes after ambiguous partial
	// failures. Dangerous; intended for idempotent workloads only.
	ModeForce
)

func (m RetryMode) String() string {
	switch m {
	case ModeReadOnly:
		return "r"
	case ModeReadWrite:
		return "rw"
	case ModeForce:
		return "force"
	default:
		return fmt.Sprintf("RetryMode(%d)", int(m))
	}
}

func (m RetryMode) valid() bool {
	return m == ModeReadOnly || m == ModeReadWrite || m == ModeForce
}

// ParseRetryMode parses the symbolic mode names "r", "rw" and "force".
func ParseRetryMode(s string) (RetryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r":
		return ModeReadOnly, nil
	case "rw":
		return ModeReadWrite, nil
	case "force":
		return ModeForce, nil
	default:
		return 0, fmt.Errorf("invalid retry mode %q (want r, rw or force)", s)
	}
}

// DatabasePattern is one compiled allow-list entry. Both expressions must
// match for the entry to admit a connection.
type DatabasePattern struct {
	Host     *regexp.Regexp
	Database *regexp.Regexp
}

func (p DatabasePattern) match(host, database string) bool {
	return p.Host.MatchString(host) && p.Database.MatchString(database)
}

// ParseRetryDatabase compiles an allow-list entry. The form "host:database"
// applies LIKE globs to both sides; a bare name is shorthand for that exact
// database on any host.
func ParseRetryDatabase(s string) (DatabasePattern, error) {
	hostGlob, dbGlob := "%", s
	if i := strings.LastIndex(s, ":"); i >= 0 {
		hostGlob, dbGlob = s[:i], s[i+1:]
	}
	host, err := CompileLikePattern(hostGlob)
	if err != nil {
		return DatabasePattern{}, fmt.Errorf("retry database %q: %w", s, err)
	}
	db, err := CompileLikePattern(dbGlob)
	if err != nil {
		return DatabasePattern{}, fmt.Errorf("retry database %q: %w", s, err)
	}
	return DatabasePattern{Host: host, Database: db}, nil
}

// Config is an immutable snapshot of the retry settings. The live snapshot is
// replaced wholesale on every setter call, so concurrent readers observe
// either the old or the new configuration, never a mix.
type Config struct {
	// Enabled gates the whole engine; when false every error propagates.
	Enabled bool
	// MaxAttempts bounds the number of invocations; 0 means unbounded.
	MaxAttempts int
	// BackoffUnit is multiplied by the attempt number to get each wait.
	BackoffUnit time.Duration
	// Mode is the process-wide retry mode; overridable per call.
	Mode RetryMode
	// AllowList restricts retries to matching host/database pairs when
	// non-empty and connection metadata is available.
	AllowList []DatabasePattern
}

const (
	DefaultMaxAttempts = 100
	DefaultBackoffUnit = 500 * time.Millisecond
)

var current atomic.Pointer[Config]

func init() {
	current.Store(&Config{
		MaxAttempts: DefaultMaxAttempts,
		BackoffUnit: DefaultBackoffUnit,
		Mode:        ModeReadOnly,
	})
}

// CurrentConfig returns a copy of the live snapshot.
func CurrentConfig() Config {
	return *current.Load()
}

// Configure validates cfg and installs it as the live snapshot.
func Configure(cfg Config) error {
	if cfg.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must be non-negative, got %d", cfg.MaxAttempts)
	}
	if cfg.BackoffUnit <= 0 {
		return fmt.Errorf("backoff unit must be positive, got %v", cfg.BackoffUnit)
	}
	if !cfg.Mode.valid() {
		return fmt.Errorf("invalid retry mode %v", cfg.Mode)
	}
	current.Store(&cfg)
	return nil
}

// mutate copies the live snapshot, applies fn, and swaps the copy in.
func mutate(fn func(*Config)) {
	cfg := CurrentConfig()
	fn(&cfg)
	current.Store(&cfg)
}

// SetEnabled turns automatic retry on or off.
func SetEnabled(enabled bool) {
	mutate(func(c *Config) { c.Enabled = enabled })
}

// Enabled reports whether automatic retry is on.
func Enabled() bool { return CurrentConfig().Enabled }

// SetMaxAttempts sets the attempt bound; 0 means retry until success.
func SetMaxAttempts(n int) error {
	if n < 0 {
		return fmt.Errorf("max attempts must be non-negative, got %d", n)
	}
	mutate(func(c *Config) { c.MaxAttempts = n })
	return nil
}

// MaxAttempts returns the current attempt bound.
func MaxAttempts() int { return CurrentConfig().MaxAttempts }

// SetBackoffUnit sets the linear backoff unit.
func SetBackoffUnit(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("backoff unit must be positive, got %v", d)
	}
	mutate(func(c *Config) { c.BackoffUnit = d })
	return nil
}

// BackoffUnit returns the current backoff unit.
func BackoffUnit() time.Duration { return CurrentConfig().BackoffUnit }

// SetMode sets the process-wide retry mode. Invalid modes fail here, never at
// decision time.
func SetMode(m RetryMode) error {
	if !m.valid() {
		return fmt.Errorf("invalid retry mode %v", m)
	}
	mutate(func(c *Config) { c.Mode = m })
	return nil
}

// Mode returns the current retry mode.
func Mode() RetryMode { return CurrentConfig().Mode }

// SetRetryDatabases compiles the allow-list eagerly and installs it. An empty
// list removes the restriction.
func SetRetryDatabases(entries ...string) error {
	patterns := make([]DatabasePattern, 0, len(entries))
	for _, e := range entries {
		p, err := ParseRetryDatabase(e)
		if err != nil {
			return err
		}
		patterns = append(patterns, p)
	}
	mutate(func(c *Config) { c.AllowList = patterns })
	return nil
}

// Environment variables read by ConfigureFromEnv.
const (
	envEnabled   = "MYSQL_RECONNECT_ENABLED"
	envTries     = "MYSQL_RECONNECT_TRIES"
	envWait      = "MYSQL_RECONNECT_WAIT"
	envMode      = "MYSQL_RECONNECT_MODE"
	envDatabases = "MYSQL_RECONNECT_DATABASES"
)

// ConfigureFromEnv applies any MYSQL_RECONNECT_* variables present in the
// environment on top of the live snapshot. Unset variables leave the
// corresponding setting untouched.
func ConfigureFromEnv() error {
	if v, ok := os.LookupEnv(envEnabled); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", envEnabled, v, err)
		}
		SetEnabled(b)
	}
	if v, ok := os.LookupEnv(envTries); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", envTries, v, err)
		}
		if err := SetMaxAttempts(n); err != nil {
			return fmt.Errorf("%s: %w", envTries, err)
		}
	}
	if v, ok := os.LookupEnv(envWait); ok {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", envWait, v, err)
		}
		if err := SetBackoffUnit(time.Duration(secs * float64(time.Second))); err != nil {
			return fmt.Errorf("%s: %w", envWait, err)
		}
	}
	if v, ok := os.LookupEnv(envMode); ok {
		m, err := ParseRetryMode(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envMode, err)
		}
		if err := SetMode(m); err != nil {
			return fmt.Errorf("%s: %w", envMode, err)
		}
	}
	if v, ok := os.LookupEnv(envDatabases); ok {
		var entries []string
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				entries = append(entries, e)
			}
		}
		if err := SetRetryDatabases(entries...); err != nil {
			return fmt.Errorf("%s: %w", envDatabases, err)
		}
	}
	return nil
}
