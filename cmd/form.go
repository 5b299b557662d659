package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"ideaforge/internal/app"
)

// runIdeaForm asks for the API key, topic and quantity, starting from the
// values already in request.
func runIdeaForm(request *app.GenerateRequest, maxCount int) error {
	quantity := strconv.Itoa(request.Quantity)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API Key").
				EchoMode(huh.EchoModePassword).
				Value(&request.Credential).
				Validate(notBlank(app.ErrMissingCredential)),
			huh.NewInput().
				Title("Topic").
				Placeholder("e.g. Sustainable fashion").
				Value(&request.Topic).
				Validate(notBlank(app.ErrMissingTopic)),
			huh.NewInput().
				Title("Number of Ideas").
				Description(fmt.Sprintf("Between 1 and %d", maxCount)).
				Value(&quantity).
				Validate(func(s string) error {
					_, err := parseQuantity(s, maxCount)
					return err
				}),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	n, err := parseQuantity(quantity, maxCount)
	if err != nil {
		return err
	}
	request.Credential = strings.TrimSpace(request.Credential)
	request.Quantity = n
	return nil
}

func notBlank(err error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return err
		}
		return nil
	}
}

func parseQuantity(s string, maxCount int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > maxCount {
		return 0, fmt.Errorf("enter a whole number between 1 and %d", maxCount)
	}
	return n, nil
}
