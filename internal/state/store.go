// Package state persists per-check snapshots between runs.
//
// The store is deliberately forgiving: a monitor must never crash because
// its own bookkeeping file is absent or damaged. Reads fall back to the
// all-OK default and writes are best-effort.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"statuswatch/internal/model"
)

// FileStore keeps one JSON snapshot file per check under a directory.
// Concurrent runs of the same check are excluded by the scheduler, not by
// this store; distinct checks never share a file.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		dir:    dir,
		logger: logger.With().Str("component", "state-store").Logger(),
	}
}

// path returns the snapshot file path for a check.
func (s *FileStore) path(check string) string {
	return filepath.Join(s.dir, check+"_state.json")
}

// Load reads the previous snapshot for a check. A missing or corrupt file
// yields the all-OK default so a first run (or a damaged file) simply
// re-establishes the baseline.
func (s *FileStore) Load(check string) model.CheckState {
	path := s.path(check)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug().Str("check", check).Str("path", path).Msg("no previous state, using default")
		} else {
			s.logger.Warn().Err(err).Str("check", check).Str("path", path).Msg("could not read state file, using default")
		}
		return model.DefaultCheckState()
	}

	var st model.CheckState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn().Err(err).Str("check", check).Str("path", path).Msg("corrupt state file, using default")
		return model.DefaultCheckState()
	}

	return st
}

// Save overwrites the snapshot for a check.
func (s *FileStore) Save(check string, st model.CheckState) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(s.path(check), data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	s.logger.Debug().Str("check", check).Str("level", st.Level.String()).Msg("state persisted")
	return nil
}
