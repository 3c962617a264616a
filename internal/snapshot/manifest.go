package snapshot

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Manifest records where a snapshot came from and what it holds.
type Manifest struct {
	ID        string         `yaml:"id"`
	Source    string         `yaml:"source"`
	CreatedAt time.Time      `yaml:"created_at"`
	Files     []string       `yaml:"files"`
	Counts    map[string]int `yaml:"counts"`
}

// NewManifest starts a manifest with a fresh random ID.
func NewManifest(source string, createdAt time.Time) Manifest {
	return Manifest{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: createdAt.UTC(),
		Counts:    make(map[string]int),
	}
}

// ReadManifest reads a manifest file. A missing file is ErrNotFound.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return m, fmt.Errorf("failed to read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		return m, fmt.Errorf("invalid manifest id %q: %w", m.ID, err)
	}
	return m, nil
}

// WriteManifest writes m as YAML.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
