// Package ratelimit tracks per-client request budgets with token
// buckets. Buckets are created lazily and evicted after a period of
// inactivity so the registry does not grow with churned clients.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	sweepInterval = 5 * time.Minute
	idleEviction  = 10 * time.Minute
)

type clientBucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter is a registry of token buckets keyed by client identifier.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*clientBucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewLimiter allows up to maxRequests per window for each client. burst
// caps how many of those may arrive back to back; zero or negative means
// the full window budget is available at once.
func NewLimiter(maxRequests int, window time.Duration, burst int) *Limiter {
	if burst <= 0 {
		burst = maxRequests
	}
	return &Limiter{
		buckets:   make(map[string]*clientBucket),
		limit:     rate.Limit(float64(maxRequests) / window.Seconds()),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether the client may proceed and consumes one token
// when it may.
func (l *Limiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked()
	return l.bucketLocked(clientID).limiter.Allow()
}

// RetryAfter returns the number of whole seconds until the client's
// bucket holds a full token again. Zero means the client may retry
// immediately.
func (l *Limiter) RetryAfter(clientID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	tokens := l.bucketLocked(clientID).limiter.Tokens()
	if tokens >= 1 {
		return 0
	}
	return int(math.Ceil((1 - tokens) / float64(l.limit)))
}

func (l *Limiter) bucketLocked(clientID string) *clientBucket {
	bucket, ok := l.buckets[clientID]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[clientID] = bucket
	}
	bucket.lastAccess = l.now()
	return bucket
}

func (l *Limiter) sweepLocked() {
	now := l.now()
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	for clientID, bucket := range l.buckets {
		if now.Sub(bucket.lastAccess) > idleEviction {
			delete(l.buckets, clientID)
		}
	}
}
