package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	apperrors "github.com/sinai-nexus/scheduling/pkg/errors"
)

// JSONHierarchySource reads the location prefix configuration from a JSON file.
type JSONHierarchySource struct {
	path string
}

// NewJSONHierarchySource creates a source for the JSON file at path.
func NewJSONHierarchySource(path string) *JSONHierarchySource {
	return &JSONHierarchySource{path: path}
}

// LoadHierarchy decodes the file. Unknown fields are rejected so typos in
// hand-edited configuration surface at startup.
func (s *JSONHierarchySource) LoadHierarchy(ctx context.Context) (*entities.HierarchyConfig, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("failed to open location hierarchy %s", s.path), err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()

	var cfg entities.HierarchyConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("failed to parse location hierarchy %s", s.path), err)
	}
	return &cfg, nil
}
