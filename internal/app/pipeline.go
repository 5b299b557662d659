package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ideaforge/internal/app/model"
	"ideaforge/internal/llm"
)

type GenerateRequest struct {
	Credential string
	Topic      string
	Quantity   int
}

// Observer receives every stage transition. With parallelism above one it is
// called from several goroutines.
type Observer func(model.Progress)

type Pipeline struct {
	service  *Service
	observer Observer
}

func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service}
}

func (pipeline *Pipeline) WithObserver(observer Observer) *Pipeline {
	pipeline.observer = observer
	return pipeline
}

// Generate produces exactly request.Quantity ideas in order, or fails as a
// whole on the first failed call.
func (pipeline *Pipeline) Generate(ctx context.Context, request GenerateRequest) ([]model.Idea, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}
	topic := strings.TrimSpace(request.Topic)

	client, err := pipeline.service.NewClient(request.Credential)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	parallelism := pipeline.service.Config().Generation.Parallelism
	slog.Debug("Generating ideas", "topic", topic, "quantity", request.Quantity, "parallelism", parallelism)

	if parallelism <= 1 || request.Quantity == 1 {
		return pipeline.generateSequential(ctx, client, topic, request.Quantity)
	}
	return pipeline.generateParallel(ctx, client, topic, request.Quantity, parallelism)
}

func (request GenerateRequest) validate() error {
	if strings.TrimSpace(request.Credential) == "" {
		return ErrMissingCredential
	}
	if strings.TrimSpace(request.Topic) == "" {
		return ErrMissingTopic
	}
	if request.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

func (pipeline *Pipeline) generateSequential(ctx context.Context, client llm.Client, topic string, total int) ([]model.Idea, error) {
	ideas := make([]model.Idea, 0, total)
	for index := range total {
		idea, err := pipeline.generateIdea(ctx, client, topic, index, total)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, idea)
	}
	return ideas, nil
}

func (pipeline *Pipeline) generateParallel(ctx context.Context, client llm.Client, topic string, total, parallelism int) ([]model.Idea, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		index int
		idea  model.Idea
		err   error
	}

	results := make(chan result, total)
	semaphore := make(chan struct{}, parallelism)

	for index := range total {
		go func(i int) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			idea, err := pipeline.generateIdea(ctx, client, topic, i, total)
			results <- result{index: i, idea: idea, err: err}
		}(index)
	}

	ideas := make([]model.Idea, total)
	var firstErr error
	for range total {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		ideas[r.index] = r.idea
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return ideas, nil
}

func (pipeline *Pipeline) generateIdea(ctx context.Context, client llm.Client, topic string, index, total int) (model.Idea, error) {
	fail := func(stage string, err error) (model.Idea, error) {
		pipeline.notify(index, total, model.StageFailed, err)
		return model.Idea{}, fmt.Errorf("idea %d/%d: %s: %w", index+1, total, stage, err)
	}

	if err := ctx.Err(); err != nil {
		return fail("generate copy", err)
	}

	pipeline.notify(index, total, model.StageGeneratingCopy, nil)
	postCopy, err := client.GenerateCopy(ctx, topic)
	if err == nil && strings.TrimSpace(postCopy) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		return fail("generate copy", err)
	}

	pipeline.notify(index, total, model.StageGeneratingImageDescription, nil)
	description, err := client.GenerateImageDescription(ctx, topic, postCopy)
	if err == nil && strings.TrimSpace(description) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		return fail("generate image description", err)
	}

	pipeline.notify(index, total, model.StageDone, nil)
	return model.Idea{Copy: postCopy, ImageDescription: description}, nil
}

func (pipeline *Pipeline) notify(index, total int, stage model.Stage, err error) {
	if pipeline.observer == nil {
		return
	}
	pipeline.observer(model.Progress{Index: index, Total: total, Stage: stage, Err: err})
}
