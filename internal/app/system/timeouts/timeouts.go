// Package timeouts provides centralized timeout values for handler and
// service operations.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries and moderate writes
//   - GraphCall: one outbound Graph API request (deadline per external call)
package timeouts

import (
	"sync"
	"time"
)

const (
	DefaultPing      = 2 * time.Second
	DefaultShort     = 5 * time.Second
	DefaultMedium    = 10 * time.Second
	DefaultGraphCall = 15 * time.Second
)

var (
	mu        sync.RWMutex
	ping      = DefaultPing
	short     = DefaultShort
	medium    = DefaultMedium
	graphCall = DefaultGraphCall
)

// Configure overrides the timeout values at startup. Zero values keep the
// current setting.
func Configure(pingT, shortT, mediumT, graphT time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	if pingT > 0 {
		ping = pingT
	}
	if shortT > 0 {
		short = shortT
	}
	if mediumT > 0 {
		medium = mediumT
	}
	if graphT > 0 {
		graphCall = graphT
	}
}

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for simple single-document operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list queries and moderate writes.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// GraphCall returns the per-request deadline for outbound Graph API calls,
// so a hung upstream surfaces as a platform-scoped error instead of
// blocking a sync indefinitely.
func GraphCall() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return graphCall
}
