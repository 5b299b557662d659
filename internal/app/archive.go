package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ideaforge/internal/app/model"
	"ideaforge/internal/storage"
)

var ErrRemoteDisabled = errors.New("GCS upload requires gcs.enabled and GCS_BUCKET")

type ArchiveOptions struct {
	Local  bool
	Remote bool
}

type ArchiveResult struct {
	Batch     *model.Batch
	Path      string
	RemoteURI string
}

// Archive stores a finished generation locally, remotely or both, and
// records it in the history.
func (s *Service) Archive(ctx context.Context, topic string, ideas []model.Idea, opts ArchiveOptions) (*ArchiveResult, error) {
	if !opts.Local && !opts.Remote {
		return nil, nil
	}
	if opts.Remote && s.remote == nil {
		return nil, ErrRemoteDisabled
	}

	batch := newBatch(topic, s.provider, s.Model(), ideas, time.Now())
	result := &ArchiveResult{Batch: batch}

	if opts.Local {
		path, err := saveBatch(ctx, s.local, batch)
		if err != nil {
			return nil, fmt.Errorf("save batch: %w", err)
		}
		result.Path = path
	}

	if opts.Remote {
		uri, err := saveBatch(ctx, s.remote, batch)
		if err != nil {
			s.discardLocal(result.Path)
			return nil, fmt.Errorf("upload batch: %w", err)
		}
		result.RemoteURI = uri
	}

	evicted, err := s.history.Add(storage.Entry{
		ID:        batch.ID,
		Name:      batch.Name,
		Topic:     batch.Topic,
		Provider:  batch.Provider,
		Ideas:     len(batch.Ideas),
		Path:      result.Path,
		RemoteURI: result.RemoteURI,
		CreatedAt: batch.CreatedAt,
	})
	if err != nil {
		s.discardLocal(result.Path)
		return nil, fmt.Errorf("record history: %w", err)
	}
	s.removeLocal(evicted)

	return result, nil
}

func saveBatch(ctx context.Context, archiver storage.Archiver, batch *model.Batch) (string, error) {
	location, err := archiver.Save(ctx, batch)
	if err != nil {
		return "", err
	}
	slog.Info("Archived batch", "location", location)
	return location, nil
}

// ClearHistory empties the history and deletes the archived local files.
func (s *Service) ClearHistory() (int, error) {
	cleared, err := s.history.Clear()
	if err != nil {
		return 0, err
	}
	s.removeLocal(cleared)

	// Batch files left behind by an older or corrupt history.
	paths, err := s.local.ListBatches()
	if err != nil {
		return len(cleared), err
	}
	for _, path := range paths {
		if err := s.local.Remove(path); err != nil {
			slog.Warn("Failed to remove batch", "path", path, "error", err)
		}
	}
	return len(cleared), nil
}

func (s *Service) removeLocal(entries []storage.Entry) {
	for _, entry := range entries {
		s.discardLocal(entry.Path)
	}
}

func (s *Service) discardLocal(path string) {
	if path == "" {
		return
	}
	if err := s.local.Remove(path); err != nil {
		slog.Warn("Failed to remove batch", "path", path, "error", err)
	}
}
