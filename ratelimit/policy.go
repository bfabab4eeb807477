package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultInitialBackoff       = time.Second
	DefaultMaxBackoff           = time.Minute
	DefaultMaxAttemptsRateLimit = 5
	DefaultMaxAttemptsTransient = 2
)

// Policy computes retry delays for throttled and transient failures:
// fixed base delay, doubling per attempt, capped maximum. A server-supplied
// Retry-After hint takes precedence over the computed backoff.
type Policy struct {
	InitialBackoff       time.Duration
	MaxBackoff           time.Duration
	MaxAttemptsRateLimit int
	MaxAttemptsTransient int
	Jitter               func(time.Duration) time.Duration
}

func NewPolicy() *Policy {
	return &Policy{
		InitialBackoff:       DefaultInitialBackoff,
		MaxBackoff:           DefaultMaxBackoff,
		MaxAttemptsRateLimit: DefaultMaxAttemptsRateLimit,
		MaxAttemptsTransient: DefaultMaxAttemptsTransient,
	}
}

// Backoff returns the delay before the given retry attempt, 1-based.
func (p *Policy) Backoff(attempt int) time.Duration {
	initial := DefaultInitialBackoff
	maximum := DefaultMaxBackoff
	if p != nil && p.InitialBackoff > 0 {
		initial = p.InitialBackoff
	}
	if p != nil && p.MaxBackoff > 0 {
		maximum = p.MaxBackoff
	}
	if attempt <= 0 {
		return p.jitter(initial)
	}
	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maximum {
			delay = maximum
			break
		}
	}
	if delay > maximum {
		delay = maximum
	}
	return p.jitter(delay)
}

// Delay resolves the wait before the given retry attempt, preferring the
// response's Retry-After hint when one is present.
func (p *Policy) Delay(attempt int, headers map[string]string, now time.Time) time.Duration {
	if hint, ok := RetryAfter(headers, now); ok {
		return hint
	}
	return p.Backoff(attempt)
}

func (p *Policy) AttemptsRateLimit() int {
	if p != nil && p.MaxAttemptsRateLimit > 0 {
		return p.MaxAttemptsRateLimit
	}
	return DefaultMaxAttemptsRateLimit
}

func (p *Policy) AttemptsTransient() int {
	if p != nil && p.MaxAttemptsTransient > 0 {
		return p.MaxAttemptsTransient
	}
	return DefaultMaxAttemptsTransient
}

func (p *Policy) jitter(delay time.Duration) time.Duration {
	if p == nil || p.Jitter == nil {
		return delay
	}
	jittered := p.Jitter(delay)
	if jittered <= 0 {
		return delay
	}
	return jittered
}

// RetryAfter parses a Retry-After header in either integer-seconds or
// HTTP-date form.
func RetryAfter(headers map[string]string, now time.Time) (time.Duration, bool) {
	raw := HeaderValue(headers, "retry-after")
	if raw == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if retryAt, err := httpDate(raw); err == nil {
		if retryAt.After(now) {
			return retryAt.Sub(now), true
		}
	}
	return 0, false
}

// HeaderValue performs a case-insensitive header lookup over a flattened
// header map.
func HeaderValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func httpDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("ratelimit: empty date")
	}
	if parsed, err := time.Parse(time.RFC1123, value); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(time.RFC1123Z, value); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("ratelimit: invalid http date")
}
