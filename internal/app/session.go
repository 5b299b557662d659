package app

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"ideaforge/internal/app/model"
)

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func newBatch(topic, provider, modelName string, ideas []model.Idea, now time.Time) *model.Batch {
	id := uuid.NewString()
	return &model.Batch{
		ID:        id,
		Name:      batchName(now, topic, id),
		Topic:     topic,
		Provider:  provider,
		Model:     modelName,
		CreatedAt: now.UTC(),
		Ideas:     ideas,
	}
}

func batchName(now time.Time, topic, id string) string {
	sanitized := sanitizeForPath(topic)
	if sanitized == "" {
		sanitized = "untitled"
	}
	if len(sanitized) > 50 {
		sanitized = strings.TrimRight(sanitized[:50], "_")
	}

	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_%s_%s", now.Format("20060102_150405"), sanitized, short)
}

func sanitizeForPath(s string) string {
	s = strings.ToLower(s)
	s = sanitizeRegex.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
