package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketAllowsUpToCapacity(t *testing.T) {
	bucket := NewTokenBucket(3, 0)

	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())
}

func TestTokenBucketRefills(t *testing.T) {
	// 100 tokens/second so the bucket refills within the test
	bucket := NewTokenBucket(1, 100)

	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())

	time.Sleep(50 * time.Millisecond)

	assert.True(t, bucket.Allow())
}

func TestTokenBucketAllowN(t *testing.T) {
	bucket := NewTokenBucket(5, 0)

	assert.True(t, bucket.AllowN(3))
	assert.False(t, bucket.AllowN(3))
	assert.True(t, bucket.AllowN(2))
}

func TestIPRateLimiterTracksPerIP(t *testing.T) {
	limiter := NewIPRateLimiter(1, 0)
	defer limiter.Stop()

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	// a different client gets its own bucket
	assert.True(t, limiter.Allow("10.0.0.2"))
}
