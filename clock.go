package mysqlreconnect

import (
	"context"
	"time"
)

// clock abstracts the backoff sleep so executor tests can observe waits
// without real delays.
type clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	}
}

var clk clock = realClock{}
