package model

import "time"

const (
	StageGeneratingCopy             Stage = "generating_copy"
	StageGeneratingImageDescription Stage = "generating_image_description"
	StageDone                       Stage = "done"
	StageFailed                     Stage = "failed"
)

type Stage string

// Idea is one generated post with the description of its accompanying image.
type Idea struct {
	Copy             string `json:"copy"`
	ImageDescription string `json:"imageDescription"`
}

// Batch is an archived generation result.
type Batch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Topic     string    `json:"topic"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
	Ideas     []Idea    `json:"ideas"`
}

// Progress reports a stage transition for one idea of a batch.
type Progress struct {
	Index int
	Total int
	Stage Stage
	Err   error
}
