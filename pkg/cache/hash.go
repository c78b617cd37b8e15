package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. Inputs are identified by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the Hash of the JSON encoding of v. Map keys are
// encoded in sorted order, so equal values hash equally.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}

// hashKey returns "kind:" followed by the HashJSON of parts. Key option
// structs always encode, so the error is not reachable.
func hashKey(kind string, parts ...any) string {
	h, _ := HashJSON(parts)
	return kind + ":" + h
}
