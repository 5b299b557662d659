package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"ideaforge/internal/app/model"
)

// Archiver persists a finished batch and returns where it was written.
type Archiver interface {
	Save(ctx context.Context, batch *model.Batch) (string, error)
}

func encodeBatch(batch *model.Batch) ([]byte, error) {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	return data, nil
}

func batchFileName(batch *model.Batch) string {
	name := batch.Name
	if name == "" {
		name = batch.ID
	}
	return name + ".json"
}
