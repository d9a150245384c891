package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

// JSONJournalStore keeps the override journal in one JSON file. Saves write
// a temporary file in the same directory and rename it over the target.
type JSONJournalStore struct {
	path string
}

// NewJSONJournalStore creates a store for the file at path.
func NewJSONJournalStore(path string) *JSONJournalStore {
	return &JSONJournalStore{path: path}
}

// Load returns the stored journal; a missing file yields an empty journal.
func (s *JSONJournalStore) Load(ctx context.Context) (*entities.JournalState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entities.NewJournalState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read journal %s: %w", s.path, err)
	}

	state := entities.NewJournalState()
	if len(data) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse journal %s: %w", s.path, err)
	}
	if state.DisabledExams == nil {
		state.DisabledExams = []entities.DisabledExam{}
	}
	if state.LocationNotes == nil {
		state.LocationNotes = []entities.LocationNote{}
	}
	return state, nil
}

// Save serializes the whole journal and replaces the file atomically.
func (s *JSONJournalStore) Save(ctx context.Context, state *entities.JournalState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode journal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".journal-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp journal: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp journal: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp journal: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp journal: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace journal %s: %w", s.path, err)
	}
	return nil
}
