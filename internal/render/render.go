package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ideaforge/internal/app/model"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	copyStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	labelStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	descriptionStyle = lipgloss.NewStyle().Italic(true).PaddingLeft(2)
)

// Response is the JSON shape shared by the CLI and the HTTP API.
type Response struct {
	Ideas []model.Idea `json:"ideas"`
}

func Render(w io.Writer, format string, ideas []model.Idea) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, Text(ideas))
		return err
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(ideas))
		return err
	case FormatJSON:
		data, err := JSON(ideas)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func Text(ideas []model.Idea) string {
	var b strings.Builder
	for i, idea := range ideas {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headingStyle.Render(fmt.Sprintf("Idea %d", i+1)))
		b.WriteString("\n")
		b.WriteString(copyStyle.Render(idea.Copy))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Image description"))
		b.WriteString("\n")
		b.WriteString(descriptionStyle.Render(idea.ImageDescription))
		b.WriteString("\n")
	}
	return b.String()
}

func Markdown(ideas []model.Idea) string {
	var b strings.Builder
	for i, idea := range ideas {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "## Idea %d\n\n", i+1)
		b.WriteString(idea.Copy)
		b.WriteString("\n\n### Image description\n\n")
		for _, line := range strings.Split(idea.ImageDescription, "\n") {
			b.WriteString("> ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func JSON(ideas []model.Idea) ([]byte, error) {
	if ideas == nil {
		ideas = []model.Idea{}
	}
	data, err := json.MarshalIndent(Response{Ideas: ideas}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode ideas: %w", err)
	}
	return data, nil
}
