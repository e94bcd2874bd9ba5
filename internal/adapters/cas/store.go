// Package cas persists execution history records, one JSON file per task.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.ExecutionHistoryStore using a file-per-task strategy.
type Store struct{}

// NewStore creates a new ExecutionHistoryStore. Records live below the
// project root passed to each call.
func NewStore() *Store {
	return &Store{}
}

// Load retrieves the record of the last execution of taskName.
func (s *Store) Load(root, taskName string) (*domain.AfterPreviousExecutionState, error) {
	filename := s.filename(root, taskName)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrHistoryReadFailed.Error()), "task", taskName)
	}

	var state domain.AfterPreviousExecutionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrHistoryUnmarshalFailed.Error()), "task", taskName)
	}

	return &state, nil
}

// Store replaces the record of state.TaskName. The file is written next to
// its final location and renamed, so readers never observe a partial record.
func (s *Store) Store(root string, state *domain.AfterPreviousExecutionState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrHistoryMarshalFailed.Error())
	}

	filename := s.filename(root, state.TaskName)
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrHistoryCreateFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, ".record-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrHistoryWriteFailed.Error())
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrHistoryWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrHistoryWriteFailed.Error())
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrHistoryWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrHistoryWriteFailed.Error()), "task", state.TaskName)
	}

	return nil
}

// Clear removes all records below root.
func (s *Store) Clear(root string) error {
	if err := os.RemoveAll(filepath.Join(root, domain.DefaultHistoryPath())); err != nil {
		return zerr.Wrap(err, domain.ErrHistoryClearFailed.Error())
	}
	return nil
}

func (s *Store) filename(root, taskName string) string {
	hash := sha256.Sum256([]byte(taskName))
	return filepath.Join(root, domain.DefaultHistoryPath(), hex.EncodeToString(hash[:])+".json")
}
