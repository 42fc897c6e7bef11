package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	domain "github.com/feiramap/feiramap/pkg/types"
)

// FileSource reads offers from a JSON file on disk. Useful for local
// development and for the rank/layers CLI commands.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed catalog source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads and decodes the offer file. The file holds either a bare
// JSON array of offers or a snapshot object with an "offers" field.
func (s *FileSource) Fetch(_ context.Context) ([]domain.Offer, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading offer file: %w", err)
	}

	var offers []domain.Offer
	if err := json.Unmarshal(data, &offers); err == nil {
		return offers, nil
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing offer file %s: %w", s.path, err)
	}
	return snap.Offers, nil
}

// Name identifies the source in logs.
func (s *FileSource) Name() string {
	return "file:" + s.path
}
