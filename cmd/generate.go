package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ideaforge/internal/app"
	"ideaforge/internal/app/model"
	"ideaforge/internal/render"
	"ideaforge/pkg/config"
)

var (
	generateTopic       string
	generateCount       int
	generateAPIKey      string
	generateProvider    string
	generateFormat      string
	generateSave        bool
	generateUpload      bool
	generateInteractive bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate post ideas for a topic",
	Long: `Generate one or more post ideas for a topic. Every idea is produced by two
calls to the text-generation service: one for the post copy and one for the
image description. If any call fails, no ideas are shown.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "Topic for the ideas")
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 0, "Number of ideas (defaults to generation.count)")
	generateCmd.Flags().StringVar(&generateAPIKey, "api-key", "", "API key for the text-generation service (defaults to the configured key)")
	generateCmd.Flags().StringVar(&generateProvider, "provider", "", "Provider to use: openai, groq or gemini")
	generateCmd.Flags().StringVar(&generateFormat, "format", "", "Output format: text, markdown or json")
	generateCmd.Flags().BoolVar(&generateSave, "save", false, "Archive the ideas in the output directory")
	generateCmd.Flags().BoolVar(&generateUpload, "upload", false, "Archive the ideas in Google Cloud Storage")
	generateCmd.Flags().BoolVarP(&generateInteractive, "interactive", "i", false, "Enter the API key, topic and quantity in a form")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	format := generateFormat
	if format == "" {
		format = cfg.Output.Format
	}
	if err := checkFormat(format); err != nil {
		return err
	}
	if err := checkUpload(cfg, generateUpload); err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg, app.BuildOptions{
		Provider: generateProvider,
		Remote:   generateUpload,
	})
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	request := app.GenerateRequest{
		Credential: service.Credential(generateAPIKey),
		Topic:      generateTopic,
		Quantity:   cfg.Generation.Count,
	}
	if cmd.Flags().Changed("count") {
		request.Quantity = generateCount
	}

	if generateInteractive {
		if err := runIdeaForm(&request, cfg.Generation.MaxCount); err != nil {
			return err
		}
	}

	if request.Quantity > cfg.Generation.MaxCount {
		return fmt.Errorf("count must be between 1 and %d", cfg.Generation.MaxCount)
	}

	pipeline := app.NewPipeline(service).WithObserver(logProgress)

	ideas, err := generateWithIndicator(ctx, pipeline, request)
	if err != nil {
		return fmt.Errorf("failed to generate content: %w", err)
	}

	if err := render.Render(cmd.OutOrStdout(), format, ideas); err != nil {
		return err
	}

	result, err := service.Archive(ctx, strings.TrimSpace(request.Topic), ideas, app.ArchiveOptions{
		Local:  generateSave,
		Remote: generateUpload,
	})
	if err != nil {
		return err
	}
	if result != nil {
		slog.Info("Archived ideas", "batch", result.Batch.Name, "path", result.Path, "uri", result.RemoteURI)
	}

	return nil
}

// generateWithIndicator shows a spinner while generating when stdout is a
// terminal. Verbose runs skip it so progress logs stay readable.
func generateWithIndicator(ctx context.Context, pipeline *app.Pipeline, request app.GenerateRequest) ([]model.Idea, error) {
	if verbose || !isatty.IsTerminal(os.Stdout.Fd()) {
		return pipeline.Generate(ctx, request)
	}

	var (
		ideas []model.Idea
		err   error
	)
	title := fmt.Sprintf("Generating %d idea(s)...", request.Quantity)
	if spinErr := spinner.New().
		Title(title).
		Action(func() { ideas, err = pipeline.Generate(ctx, request) }).
		Run(); spinErr != nil {
		return nil, spinErr
	}
	return ideas, err
}

func logProgress(progress model.Progress) {
	if progress.Err != nil {
		slog.Debug("Idea failed", "idea", progress.Index+1, "total", progress.Total, "error", progress.Err)
		return
	}
	slog.Debug("Idea progress", "idea", progress.Index+1, "total", progress.Total, "stage", progress.Stage)
}

func checkFormat(format string) error {
	switch format {
	case render.FormatText, render.FormatMarkdown, render.FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// checkUpload rejects --upload before any ideas are generated.
func checkUpload(cfg *config.Config, upload bool) error {
	if upload && (!cfg.GCS.Enabled || cfg.GCSBucket == "") {
		return app.ErrRemoteDisabled
	}
	return nil
}
