package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Topic     string    `json:"topic"`
	Provider  string    `json:"provider"`
	Ideas     int       `json:"ideas"`
	Path      string    `json:"path,omitempty"`
	RemoteURI string    `json:"remoteUri,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// History is a JSON-backed list of archived batches. When full, adding an
// entry evicts the oldest one.
type History struct {
	items    []Entry
	mu       sync.RWMutex
	dataFile string
	maxSize  int
}

func NewHistory(dataFile string, maxSize int) *History {
	if maxSize <= 0 {
		maxSize = 1
	}
	h := &History{
		items:    make([]Entry, 0, maxSize),
		dataFile: dataFile,
		maxSize:  maxSize,
	}
	h.load()
	return h
}

// Add appends an entry and returns any entries evicted to stay within size.
func (h *History) Add(entry Entry) ([]Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = append(h.items, entry)

	var evicted []Entry
	if overflow := len(h.items) - h.maxSize; overflow > 0 {
		evicted = append(evicted, h.items[:overflow]...)
		h.items = append([]Entry(nil), h.items[overflow:]...)
	}

	return evicted, h.save()
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

func (h *History) List() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]Entry, len(h.items))
	copy(result, h.items)
	return result
}

func (h *History) Clear() ([]Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cleared := h.items
	h.items = make([]Entry, 0, h.maxSize)
	return cleared, h.save()
}

func (h *History) load() {
	data, err := os.ReadFile(h.dataFile)
	if err != nil {
		return
	}

	var items []Entry
	if err := json.Unmarshal(data, &items); err != nil {
		return
	}

	if len(items) > h.maxSize {
		items = items[len(items)-h.maxSize:]
	}
	h.items = items
}

func (h *History) save() error {
	data, err := json.MarshalIndent(h.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(h.dataFile), 0755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	if err := os.WriteFile(h.dataFile, data, 0644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
