package ozon

import (
	"context"
	"sync"
	"time"
)

// quietGate keeps a corridor of silence around draft and supply create calls.
// Before a create fires, other requests must have been quiet for beforeWin;
// after it fires, everything pauses for afterWin. The seller API throttles
// these endpoints aggressively and stray traffic around them trips it.
type quietGate struct {
	mu        sync.Mutex
	beforeWin time.Duration
	afterWin  time.Duration

	lastRequest time.Time
	quietUntil  time.Time
}

func newQuietGate(beforeSec, afterSec float64) *quietGate {
	return &quietGate{
		beforeWin: time.Duration(beforeSec * float64(time.Second)),
		afterWin:  time.Duration(afterSec * float64(time.Second)),
	}
}

// wait blocks ordinary requests while a post-create quiet window is open,
// then records the request time.
func (g *quietGate) wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		now := time.Now()
		if now.After(g.quietUntil) {
			g.lastRequest = now
			g.mu.Unlock()
			return nil
		}
		d := g.quietUntil.Sub(now)
		g.mu.Unlock()
		if err := sleepCtx(ctx, d); err != nil {
			return err
		}
	}
}

// enterBeforeCreate waits until both the post-create window and the
// pre-create silence requirement are satisfied, then opens the next
// post-create window.
func (g *quietGate) enterBeforeCreate(ctx context.Context) error {
	for {
		g.mu.Lock()
		now := time.Now()
		ready := now.After(g.quietUntil)
		var d time.Duration
		if ready {
			if since := now.Sub(g.lastRequest); since < g.beforeWin {
				ready = false
				d = g.beforeWin - since
			}
		} else {
			d = g.quietUntil.Sub(now)
		}
		if ready {
			g.lastRequest = now
			g.quietUntil = now.Add(g.afterWin)
			g.mu.Unlock()
			return nil
		}
		g.mu.Unlock()
		if err := sleepCtx(ctx, d); err != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
