package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey maps an arbitrary client identifier to a fixed-length hex string
// suitable for storage keys and filenames. 128 bits of SHA256 output keeps
// keys short while avoiding collisions.
func HashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}
