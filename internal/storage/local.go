package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ideaforge/internal/app/model"
)

const historyFileName = "history.json"

var _ Archiver = (*LocalStorage)(nil)

type LocalStorage struct {
	outputDir string
}

func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{outputDir: outputDir}
}

func (s *LocalStorage) EnsureDirectories() error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func (s *LocalStorage) Save(_ context.Context, batch *model.Batch) (string, error) {
	data, err := encodeBatch(batch)
	if err != nil {
		return "", err
	}

	if err := s.EnsureDirectories(); err != nil {
		return "", err
	}

	path := filepath.Join(s.outputDir, batchFileName(batch))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write batch file: %w", err)
	}

	return path, nil
}

func (s *LocalStorage) Load(path string) (*model.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var batch model.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	return &batch, nil
}

// ListBatches returns the batch files written by Save, sorted by name. Other
// JSON files in the directory are ignored.
func (s *LocalStorage) ListBatches() ([]string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var batches []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == historyFileName {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(s.outputDir, entry.Name())
		if s.ownsBatchFile(path) {
			batches = append(batches, path)
		}
	}

	sort.Strings(batches)
	return batches, nil
}

// ownsBatchFile reports whether path holds a batch whose own name maps to
// that file name.
func (s *LocalStorage) ownsBatchFile(path string) bool {
	batch, err := s.Load(path)
	if err != nil || batch.ID == "" {
		return false
	}
	return batchFileName(batch) == filepath.Base(path)
}

func (s *LocalStorage) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove batch file: %w", err)
	}
	return nil
}

func (s *LocalStorage) HistoryPath() string {
	return filepath.Join(s.outputDir, historyFileName)
}
