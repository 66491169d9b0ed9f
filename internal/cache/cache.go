// Package cache stores generated report summaries so identical inputs do
// not trigger repeated LLM calls.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for summary caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from input record content bytes
func Key(content []byte) string {
	hash := sha256.Sum256(content)
	return "hkp:v1:" + hex.EncodeToString(hash[:])
}
