// Package ratelimit limits requests per agent with token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	// RatePerMinute is the sustained request rate for one key.
	RatePerMinute int
	// Burst is the bucket capacity; zero uses RatePerMinute.
	Burst int
	// CleanupInterval is how often idle buckets are dropped.
	CleanupInterval time.Duration
	// IdleTimeout is how long a bucket may go unused before cleanup drops it.
	IdleTimeout time.Duration
}

// DefaultConfig returns a limiter config with the given rate and burst.
func DefaultConfig(ratePerMinute, burst int) *Config {
	return &Config{
		Enabled:         ratePerMinute > 0,
		RatePerMinute:   ratePerMinute,
		Burst:           burst,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
	}
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter manages one token bucket per key.
type Limiter struct {
	config  *Config
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
// A nil config disables limiting.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{}
	}
	l := &Limiter{
		config:  config,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanup()
	}
	return l
}

// Allow consumes a token for key if one is available.
func (l *Limiter) Allow(key string) (bool, Info) {
	if !l.config.Enabled || l.config.RatePerMinute <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	b := l.bucket(key, now)
	burst := b.limiter.Burst()

	r := b.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, Info{Limit: burst, RetryAfter: delay}
	}
	remaining := int(b.limiter.TokensAt(now))
	return true, Info{Allowed: true, Limit: burst, Remaining: max(remaining, 0)}
}

func (l *Limiter) bucket(key string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		burst := l.config.Burst
		if burst <= 0 {
			burst = l.config.RatePerMinute
		}
		every := time.Minute / time.Duration(l.config.RatePerMinute)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), burst)}
		l.buckets[key] = b
	}
	b.lastAccess = now
	return b
}

// cleanup removes old unused buckets to prevent memory leaks.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupBuckets()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets idle for longer than IdleTimeout.
func (l *Limiter) cleanupBuckets() {
	idle := l.config.IdleTimeout
	if idle <= 0 {
		idle = time.Hour
	}
	cutoff := l.now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
