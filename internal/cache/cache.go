package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching document line records
type Cache interface {
	Get(key string) ([]string, bool)
	Set(key string, lines []string, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from a normalized page id
func CacheKey(pageID string) string {
	hash := sha256.Sum256([]byte(pageID))
	return "fever:v1:" + hex.EncodeToString(hash[:])
}
