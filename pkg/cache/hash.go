package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds "kind:sha256(json(parts))". Key options are plain structs,
// so their JSON encoding is stable.
func hashKey(kind string, parts ...any) string {
	return kind + ":" + Fingerprint(parts)
}

// Hash returns the hex SHA-256 of data. Datasets use it as their content
// hash.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint hashes the JSON encoding of v. Values that fail to encode
// (channels, funcs) all fingerprint to the hash of "null".
func Fingerprint(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte("null")
	}
	return Hash(data)
}
