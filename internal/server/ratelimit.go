package server

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RateLimiter tracks per-client request rates and daily quotas.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	requestsPerHour   int
	maxRequestsPerDay int
	maxDataPerDay     int64 // bytes

	clients map[string]*ClientUsage
	now     func() time.Time
}

// ClientUsage is the usage recorded for one client.
type ClientUsage struct {
	RequestsLastMinute int
	RequestsLastHour   int
	RequestsToday      int
	DataToday          int64

	minuteStart time.Time
	hourStart   time.Time
	dayStart    time.Time
	lastSeen    time.Time
}

// NewRateLimiter creates a rate limiter. Zero disables the corresponding
// limit.
func NewRateLimiter(requestsPerMinute, requestsPerHour, maxRequestsPerDay int, maxDataPerDay int64) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		maxRequestsPerDay: maxRequestsPerDay,
		maxDataPerDay:     maxDataPerDay,
		clients:           make(map[string]*ClientUsage),
		now:               time.Now,
	}
}

// CheckRateLimit records a request of dataSize bytes from clientID, or
// returns a *RateLimitError or *QuotaExceededError without recording it.
func (rl *RateLimiter) CheckRateLimit(clientID string, dataSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	usage := rl.usageFor(clientID, now)
	resetWindows(usage, now)

	if rl.requestsPerMinute > 0 && usage.RequestsLastMinute >= rl.requestsPerMinute {
		return &RateLimitError{
			Type:       "minute",
			Limit:      rl.requestsPerMinute,
			RetryAfter: usage.minuteStart.Add(time.Minute).Sub(now),
		}
	}
	if rl.requestsPerHour > 0 && usage.RequestsLastHour >= rl.requestsPerHour {
		return &RateLimitError{
			Type:       "hour",
			Limit:      rl.requestsPerHour,
			RetryAfter: usage.hourStart.Add(time.Hour).Sub(now),
		}
	}

	resets := nextMidnight(now)
	if rl.maxRequestsPerDay > 0 && usage.RequestsToday >= rl.maxRequestsPerDay {
		return &QuotaExceededError{
			Type:   "requests",
			Limit:  int64(rl.maxRequestsPerDay),
			Used:   int64(usage.RequestsToday),
			Resets: resets,
		}
	}
	if rl.maxDataPerDay > 0 && usage.DataToday+dataSize > rl.maxDataPerDay {
		return &QuotaExceededError{
			Type:   "data",
			Limit:  rl.maxDataPerDay,
			Used:   usage.DataToday,
			Resets: resets,
		}
	}

	usage.RequestsLastMinute++
	usage.RequestsLastHour++
	usage.RequestsToday++
	usage.DataToday += dataSize
	usage.lastSeen = now
	return nil
}

// resetWindows starts fresh fixed windows once the current ones expired.
func resetWindows(usage *ClientUsage, now time.Time) {
	if now.Sub(usage.minuteStart) >= time.Minute {
		usage.RequestsLastMinute = 0
		usage.minuteStart = now
	}
	if now.Sub(usage.hourStart) >= time.Hour {
		usage.RequestsLastHour = 0
		usage.hourStart = now
	}
	if !sameDay(now, usage.dayStart) {
		usage.RequestsToday = 0
		usage.DataToday = 0
		usage.dayStart = now
	}
}

func (rl *RateLimiter) usageFor(clientID string, now time.Time) *ClientUsage {
	usage, ok := rl.clients[clientID]
	if !ok {
		usage = &ClientUsage{minuteStart: now, hourStart: now, dayStart: now, lastSeen: now}
		rl.clients[clientID] = usage
	}
	return usage
}

// Usage returns a copy of the usage recorded for clientID.
func (rl *RateLimiter) Usage(clientID string) ClientUsage {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if usage, ok := rl.clients[clientID]; ok {
		return *usage
	}
	return ClientUsage{}
}

// Prune forgets clients that have not been seen for longer than idle.
func (rl *RateLimiter) Prune(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for id, usage := range rl.clients {
		if now.Sub(usage.lastSeen) > idle {
			delete(rl.clients, id)
			removed++
		}
	}
	return removed
}

// StartPruning calls Prune(idle) every interval until the returned stop
// function is called. stop is safe to call more than once.
func (rl *RateLimiter) StartPruning(interval, idle time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := rl.Prune(idle); n > 0 {
					slog.Debug("Pruned idle rate limit clients", "removed", n)
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func nextMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Type       string        // "minute" or "hour"
	Limit      int           // the limit that was exceeded
	RetryAfter time.Duration // how long to wait before retrying
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}

// QuotaExceededError represents a quota violation.
type QuotaExceededError struct {
	Type   string    // "requests" or "data"
	Limit  int64     // the limit that was exceeded
	Used   int64     // current usage
	Resets time.Time // when the quota resets
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
