package utils

import (
	"context"
	"time"
)

// WithProviderTimeout bounds an upstream provider call. Expiry is reported to
// the caller as a provider failure.
func WithProviderTimeout(parent context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		seconds = 60
	}
	return context.WithTimeout(parent, time.Duration(seconds)*time.Second)
}
