package memory

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"bedside/internal/domain"
)

// Seed is the startup document the store is built from. The importer
// writes the same shape back out after enriching measures.
type Seed struct {
	Facilities []domain.Facility  `json:"facilities"`
	Clinicians []domain.Clinician `json:"clinicians"`
	Reviews    []domain.Review    `json:"reviews,omitempty"`
}

//go:embed seed.json
var embeddedSeed []byte

// LoadSeed reads the seed document from path, or the embedded sample data
// when path is empty.
func LoadSeed(path string) (Seed, error) {
	raw := embeddedSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Seed{}, fmt.Errorf("read seed file: %w", err)
		}
		raw = b
	}
	var s Seed
	if err := json.Unmarshal(raw, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return s, nil
}

// WriteSeed writes the document back out, pretty-printed for diffability.
func WriteSeed(path string, s Seed) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
