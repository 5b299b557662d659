package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ideaforge/internal/app/model"
)

func testBatch(name string) *model.Batch {
	return &model.Batch{
		ID:        "id-" + name,
		Name:      name,
		Topic:     "machine learning",
		Provider:  "openai",
		Model:     "gpt-3.5-turbo",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Ideas: []model.Idea{
			{Copy: "Post one", ImageDescription: "Image one"},
			{Copy: "Post two", ImageDescription: "Image two"},
		},
	}
}

func TestLocalStorageSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	s := NewLocalStorage(dir)

	batch := testBatch("20250301_120000_machine_learning")
	path, err := s.Save(context.Background(), batch)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if path != filepath.Join(dir, "20250301_120000_machine_learning.json") {
		t.Errorf("Save() path = %q", path)
	}

	loaded, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Topic != batch.Topic || len(loaded.Ideas) != 2 {
		t.Errorf("Load() = %+v", loaded)
	}
	if loaded.Ideas[1].ImageDescription != "Image two" {
		t.Errorf("Load() ideas = %+v", loaded.Ideas)
	}
}

func TestLocalStorageSaveFallsBackToID(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	batch := testBatch("")
	path, err := s.Save(context.Background(), batch)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if filepath.Base(path) != "id-.json" {
		t.Errorf("Save() path = %q", path)
	}
}

func TestLocalStorageLoad(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missingFile", path: filepath.Join(dir, "missing.json")},
		{name: "invalidJSON", path: invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Load(tt.path); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestLocalStorageListBatches(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	for _, name := range []string{"b_second", "a_first"} {
		if _, err := s.Save(context.Background(), testBatch(name)); err != nil {
			t.Fatal(err)
		}
	}
	_ = os.WriteFile(filepath.Join(dir, historyFileName), []byte("[]"), 0644)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	_ = os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"app","version":"1.0.0"}`), 0644)
	_ = os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)
	_ = os.WriteFile(filepath.Join(dir, "renamed.json"), []byte(`{"id":"x","name":"other"}`), 0644)
	_ = os.Mkdir(filepath.Join(dir, "sub.json"), 0755)

	batches, err := s.ListBatches()
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a_first.json"), filepath.Join(dir, "b_second.json")}
	if len(batches) != len(want) {
		t.Fatalf("ListBatches() = %v, want %v", batches, want)
	}
	for i := range want {
		if batches[i] != want[i] {
			t.Errorf("ListBatches()[%d] = %q, want %q", i, batches[i], want[i])
		}
	}
}

func TestLocalStorageListBatchesMissingDir(t *testing.T) {
	s := NewLocalStorage(filepath.Join(t.TempDir(), "absent"))
	batches, err := s.ListBatches()
	if err != nil {
		t.Errorf("ListBatches() error = %v", err)
	}
	if len(batches) != 0 {
		t.Errorf("ListBatches() = %v, want empty", batches)
	}
}

func TestLocalStorageRemove(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	path, err := s.Save(context.Background(), testBatch("to_remove"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(path); err != nil {
		t.Errorf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists after Remove()")
	}
	if err := s.Remove(path); err != nil {
		t.Errorf("Remove() of missing file error = %v", err)
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history.json")
	h := NewHistory(file, 2)

	var evicted []Entry
	for _, id := range []string{"one", "two", "three"} {
		out, err := h.Add(Entry{ID: id})
		if err != nil {
			t.Fatalf("Add(%s) error = %v", id, err)
		}
		evicted = append(evicted, out...)
	}

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	items := h.List()
	if items[0].ID != "two" || items[1].ID != "three" {
		t.Errorf("List() = %+v", items)
	}
	if len(evicted) != 1 || evicted[0].ID != "one" {
		t.Errorf("evicted = %+v, want [one]", evicted)
	}
}

func TestHistoryPersists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data", "history.json")
	h := NewHistory(file, 5)

	if _, err := h.Add(Entry{ID: "a", Topic: "robots", Ideas: 3}); err != nil {
		t.Fatal(err)
	}

	reloaded := NewHistory(file, 5)
	items := reloaded.List()
	if len(items) != 1 || items[0].Topic != "robots" || items[0].Ideas != 3 {
		t.Errorf("reloaded List() = %+v", items)
	}
}

func TestHistoryTrimsOnLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history.json")
	h := NewHistory(file, 10)
	for _, id := range []string{"1", "2", "3", "4"} {
		if _, err := h.Add(Entry{ID: id}); err != nil {
			t.Fatal(err)
		}
	}

	smaller := NewHistory(file, 2)
	items := smaller.List()
	if len(items) != 2 || items[0].ID != "3" || items[1].ID != "4" {
		t.Errorf("List() = %+v", items)
	}
}

func TestHistoryClear(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history.json")
	h := NewHistory(file, 5)
	_, _ = h.Add(Entry{ID: "x"})
	_, _ = h.Add(Entry{ID: "y"})

	cleared, err := h.Clear()
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if len(cleared) != 2 {
		t.Errorf("Clear() returned %d entries, want 2", len(cleared))
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d after Clear()", h.Len())
	}
	if NewHistory(file, 5).Len() != 0 {
		t.Error("cleared history was not persisted")
	}
}

func TestHistoryIgnoresCorruptFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(file, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(file, 5)
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}
