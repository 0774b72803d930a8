package redis

import "github.com/redis/rueidis"

// NewBackendForTest creates a Backend with the provided rueidis client (test-only).
func NewBackendForTest(c rueidis.Client, keyPrefix, healthIndex string) *Backend {
	return &Backend{client: c, keyPrefix: keyPrefix, healthIndex: healthIndex}
}
