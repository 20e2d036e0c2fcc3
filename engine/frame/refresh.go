package frame

import (
	"context"
	"time"
)

// RefreshSource paces the Frame Scheduler, standing in for the display's refresh callback.
type RefreshSource interface {
	// Next blocks until the next refresh and returns the time elapsed since the source started.
	// Successive values are monotonically increasing.
	//
	// Parameters:
	//   - ctx: cancels the wait
	//
	// Returns:
	//   - time.Duration: the refresh timestamp
	//   - error: ctx.Err() if the context is done
	Next(ctx context.Context) (time.Duration, error)

	// Stop releases the source's timer.
	Stop()
}

type tickerRefresh struct {
	ticker *time.Ticker
	start  time.Time
	last   time.Duration
}

var _ RefreshSource = &tickerRefresh{}

// NewTickerRefresh creates a RefreshSource firing hz times per second.
//
// Parameters:
//   - hz: refresh rate (defaults to 60 if <= 0)
//
// Returns:
//   - RefreshSource: the refresh source
func NewTickerRefresh(hz float64) RefreshSource {
	if hz <= 0 {
		hz = 60
	}
	return &tickerRefresh{
		ticker: time.NewTicker(time.Duration(float64(time.Second) / hz)),
		start:  time.Now(),
	}
}

func (r *tickerRefresh) Next(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return r.last, err
	}
	select {
	case <-ctx.Done():
		return r.last, ctx.Err()
	case now := <-r.ticker.C:
		ts := now.Sub(r.start)
		if ts <= r.last {
			ts = r.last + 1
		}
		r.last = ts
		return ts, nil
	}
}

func (r *tickerRefresh) Stop() {
	r.ticker.Stop()
}
