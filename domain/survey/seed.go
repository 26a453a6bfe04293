package survey

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed seed.json
var seedJSON []byte

// Seed returns a fresh copy of the bundled survey data set
func Seed() (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(seedJSON, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode seed dataset: %w", err)
	}
	return &ds, nil
}

// SeedJSON exposes the raw bundled data set for loaders and tests
func SeedJSON() []byte {
	out := make([]byte, len(seedJSON))
	copy(out, seedJSON)
	return out
}
