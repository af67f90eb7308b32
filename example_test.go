package mysqlreconnect_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	reconnect "github.com/SimpleNexus/activerecord-mysql-reconnect"
)

func ExampleRunValue() {
	// Retry warnings go to stdout by default; keep the example output clean.
	reconnect.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	reconnect.SetEnabled(true)
	_ = reconnect.SetMaxAttempts(3)
	_ = reconnect.SetBackoffUnit(time.Millisecond)

	calls := 0
	rows, err := reconnect.RunValue(context.Background(), func() (int, error) {
		calls++
		if calls == 1 {
			return 0, &mysql.MySQLError{Number: 2006, Message: "MySQL server has gone away"}
		}
		return 42, nil
	}, reconnect.WithSQL("SELECT COUNT(*) FROM users"))

	fmt.Println(rows, err, calls)
	// Output: 42 <nil> 2
}

func ExampleWithoutRetry() {
	reconnect.SetEnabled(true)

	err := reconnect.WithoutRetry(context.Background(), func(ctx context.Context) error {
		// Operations run with ctx here propagate failures immediately,
		// no matter how the engine is configured.
		return reconnect.Run(ctx, func() error {
			return &mysql.MySQLError{Number: 2006, Message: "MySQL server has gone away"}
		})
	})

	fmt.Println(err != nil)
	// Output: true
}
