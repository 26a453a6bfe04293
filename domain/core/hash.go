package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough for display
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// DatasetHash fingerprints a loaded dataset
type DatasetHash Hash

func (h DatasetHash) String() string { return Hash(h).String() }

// Short returns the display prefix of the fingerprint
func (h DatasetHash) Short() string { return Hash(h).Short() }

// ComputeDatasetHash hashes the ordered field values of each record.
// Record order matters: filtered series preserve dataset order.
func ComputeDatasetHash(records [][]interface{}) DatasetHash {
	var data strings.Builder
	for _, fields := range records {
		for _, f := range fields {
			data.WriteString(fmt.Sprintf("%v|", f))
		}
		data.WriteString("\n")
	}
	return DatasetHash(NewHash([]byte(data.String())))
}
