package supply

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// draftGate paces draft create calls across all tasks. Two rules apply: a
// minimum spacing between consecutive drafts, and a shared cooldown raised
// whenever the endpoint answers 429.
type draftGate struct {
	mu         sync.Mutex
	minSpacing time.Duration

	nextAllowed   time.Time
	cooldownUntil time.Time
}

func newDraftGate(minSpacingSeconds int) *draftGate {
	return &draftGate{minSpacing: time.Duration(minSpacingSeconds) * time.Second}
}

// Reserve returns zero and claims the next draft slot, or the wait before the
// caller may try again.
func (g *draftGate) Reserve(now time.Time) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if now.Before(g.cooldownUntil) {
		return g.cooldownUntil.Sub(now)
	}
	if now.Before(g.nextAllowed) {
		return g.nextAllowed.Sub(now)
	}
	g.nextAllowed = now.Add(g.minSpacing)
	return 0
}

// SetCooldown blocks all draft creates for the base wait plus a small jitter.
func (g *draftGate) SetCooldown(now time.Time, baseWait time.Duration) {
	sec := baseWait + time.Duration((0.2+rand.Float64()*0.9)*float64(time.Second))
	if sec < time.Second {
		sec = time.Second
	}

	g.mu.Lock()
	g.cooldownUntil = now.Add(sec)
	g.mu.Unlock()

	zap.L().Info("draft cooldown set", zap.Duration("wait", sec))
}
