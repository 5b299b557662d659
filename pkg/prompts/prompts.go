package prompts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

//go:embed default.yaml
var defaultPrompts []byte

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Post   PostPrompts   `yaml:"post"`
}

type SystemPrompts struct {
	Default string `yaml:"default"`
}

type PostPrompts struct {
	Copy             string `yaml:"copy"`
	ImageDescription string `yaml:"image_description"`
}

type CopyParams struct {
	Topic string
}

type ImageDescriptionParams struct {
	Topic string
	Copy  string
}

// Load reads prompts.yaml from the working directory and falls back to the
// built-in prompts when the file does not exist.
func Load() (*Prompts, error) {
	p, err := LoadFrom(defaultPromptsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	return p, err
}

func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	p, err := parse(data)
	if err != nil {
		return nil, err
	}

	defaults, err := Default()
	if err != nil {
		return nil, err
	}
	p.fillFrom(defaults)

	return p, nil
}

func Default() (*Prompts, error) {
	return parse(defaultPrompts)
}

func parse(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	return &p, nil
}

func (p *Prompts) fillFrom(defaults *Prompts) {
	if p.System.Default == "" {
		p.System.Default = defaults.System.Default
	}
	if p.Post.Copy == "" {
		p.Post.Copy = defaults.Post.Copy
	}
	if p.Post.ImageDescription == "" {
		p.Post.ImageDescription = defaults.Post.ImageDescription
	}
}

func (p *Prompts) RenderCopy(params CopyParams) (string, error) {
	return render(p.Post.Copy, params)
}

func (p *Prompts) RenderImageDescription(params ImageDescriptionParams) (string, error) {
	return render(p.Post.ImageDescription, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
