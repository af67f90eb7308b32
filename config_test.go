package mysqlreconnect

import (
	"sync"
	"testing"
	"time"
)

// resetConfig restores the live snapshot after a test that mutates it.
func resetConfig(t *testing.T) {
	t.Helper()
	old := CurrentConfig()
	t.Cleanup(func() { current.Store(&old) })
}

func TestConfig_Defaults(t *testing.T) {
	resetConfig(t)
	current.Store(&Config{MaxAttempts: DefaultMaxAttempts, BackoffUnit: DefaultBackoffUnit, Mode: ModeReadOnly})

	cfg := CurrentConfig()
	if cfg.Enabled {
		t.Fatalf("retry must be off by default")
	}
	if cfg.MaxAttempts != 100 || cfg.BackoffUnit != 500*time.Millisecond || cfg.Mode != ModeReadOnly {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.AllowList) != 0 {
		t.Fatalf("allow-list must start empty")
	}
}

func TestSetMode_RejectsInvalid(t *testing.T) {
	resetConfig(t)
	if err := SetMode(RetryMode(42)); err == nil {
		t.Fatalf("invalid mode must fail at assignment time")
	}
	if err := SetMode(ModeForce); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if Mode() != ModeForce {
		t.Fatalf("mode not applied")
	}
}

func TestParseRetryMode(t *testing.T) {
	cases := map[string]RetryMode{"r": ModeReadOnly, "RW": ModeReadWrite, " force ": ModeForce}
	for in, want := range cases {
		m, err := ParseRetryMode(in)
		if err != nil {
			t.Fatalf("ParseRetryMode(%q): %v", in, err)
		}
		if m != want {
			t.Fatalf("ParseRetryMode(%q)=%v want %v", in, m, want)
		}
	}
	if _, err := ParseRetryMode("aggressive"); err == nil {
		t.Fatalf("unknown mode must be rejected")
	}
}

func TestSetMaxAttempts_Validation(t *testing.T) {
	resetConfig(t)
	if err := SetMaxAttempts(-1); err == nil {
		t.Fatalf("negative attempts must be rejected")
	}
	if err := SetMaxAttempts(0); err != nil {
		t.Fatalf("0 (unbounded) must be accepted: %v", err)
	}
	if MaxAttempts() != 0 {
		t.Fatalf("attempts not applied")
	}
}

func TestSetBackoffUnit_Validation(t *testing.T) {
	resetConfig(t)
	if err := SetBackoffUnit(0); err == nil {
		t.Fatalf("non-positive unit must be rejected")
	}
	if err := SetBackoffUnit(250 * time.Millisecond); err != nil {
		t.Fatalf("SetBackoffUnit: %v", err)
	}
	if BackoffUnit() != 250*time.Millisecond {
		t.Fatalf("unit not applied")
	}
}

func TestSetRetryDatabases_CompilesEagerly(t *testing.T) {
	resetConfig(t)
	if err := SetRetryDatabases(`bad\`); err == nil {
		t.Fatalf("bad glob must fail at assignment time")
	}
	if err := SetRetryDatabases("replica%:app%", "staging"); err != nil {
		t.Fatalf("SetRetryDatabases: %v", err)
	}
	list := CurrentConfig().AllowList
	if len(list) != 2 {
		t.Fatalf("len(allowlist)=%d", len(list))
	}
	if !list[0].match("replica-3", "app_db") {
		t.Fatalf("host:database glob entry should match")
	}
	if list[0].match("primary", "app_db") {
		t.Fatalf("host side must be enforced")
	}
	// bare shorthand: exact database, any host
	if !list[1].match("anything.example.com", "staging") {
		t.Fatalf("bare shorthand should admit any host")
	}
	if list[1].match("anything.example.com", "staging2") {
		t.Fatalf("bare shorthand must stay anchored to the database name")
	}
}

func TestConfigure_ReplacesSnapshotWholesale(t *testing.T) {
	resetConfig(t)
	err := Configure(Config{Enabled: true, MaxAttempts: 3, BackoffUnit: time.Second, Mode: ModeReadWrite})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	cfg := CurrentConfig()
	if !cfg.Enabled || cfg.MaxAttempts != 3 || cfg.Mode != ModeReadWrite {
		t.Fatalf("snapshot not replaced: %+v", cfg)
	}
	if err := Configure(Config{Mode: RetryMode(9), MaxAttempts: 1, BackoffUnit: time.Second}); err == nil {
		t.Fatalf("invalid snapshot must be rejected")
	}
}

func TestConfig_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	resetConfig(t)
	_ = Configure(Config{Enabled: true, MaxAttempts: 1, BackoffUnit: time.Millisecond, Mode: ModeReadOnly})

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			// Writers replace wholesale; a reader must never see a torn mix.
			cfg := CurrentConfig()
			if (cfg.MaxAttempts == 1) != (cfg.BackoffUnit == time.Millisecond) {
				t.Error("observed torn configuration")
				return
			}
		}
	}()
	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			_ = Configure(Config{Enabled: true, MaxAttempts: 1, BackoffUnit: time.Millisecond, Mode: ModeReadOnly})
		} else {
			_ = Configure(Config{Enabled: true, MaxAttempts: 7, BackoffUnit: time.Second, Mode: ModeReadWrite})
		}
	}
	close(stop)
	wg.Wait()
}

func TestConfigureFromEnv(t *testing.T) {
	resetConfig(t)
	t.Setenv("MYSQL_RECONNECT_ENABLED", "true")
	t.Setenv("MYSQL_RECONNECT_TRIES", "5")
	t.Setenv("MYSQL_RECONNECT_WAIT", "0.25")
	t.Setenv("MYSQL_RECONNECT_MODE", "rw")
	t.Setenv("MYSQL_RECONNECT_DATABASES", "replica%:app, staging")

	if err := ConfigureFromEnv(); err != nil {
		t.Fatalf("ConfigureFromEnv: %v", err)
	}
	cfg := CurrentConfig()
	if !cfg.Enabled || cfg.MaxAttempts != 5 || cfg.BackoffUnit != 250*time.Millisecond || cfg.Mode != ModeReadWrite {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if len(cfg.AllowList) != 2 {
		t.Fatalf("env allow-list not applied")
	}
}

func TestConfigureFromEnv_InvalidValues(t *testing.T) {
	resetConfig(t)
	t.Setenv("MYSQL_RECONNECT_MODE", "sometimes")
	if err := ConfigureFromEnv(); err == nil {
		t.Fatalf("invalid env mode must be rejected")
	}
}
