package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ideaforge/pkg/config"
)

var (
	authInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	authSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	authErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var providerKeyEnv = map[string]string{
	config.ProviderOpenAI: "OPENAI_API_KEY",
	config.ProviderGroq:   "GROQ_API_KEY",
	config.ProviderGemini: "GEMINI_API_KEY",
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Inspect credentials for external services",
	Long:  `Inspect the API keys and Google Cloud settings loaded from .env, the environment and config.yaml.`,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check which services are configured",
	Long:  `Verify which text-generation providers and Google Cloud services are configured.`,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(authInfoStyle.Render("\nService Authentication Status:\n"))

	for _, provider := range []string{config.ProviderOpenAI, config.ProviderGroq, config.ProviderGemini} {
		active := ""
		if provider == cfg.Provider {
			active = " (active)"
		}
		if cfg.APIKey(provider) != "" {
			fmt.Println(authSuccessStyle.Render(fmt.Sprintf("✓ %s%s: API key configured, model %s", provider, active, cfg.Model(provider))))
		} else if provider == cfg.Provider {
			fmt.Println(authErrorStyle.Render(fmt.Sprintf("✗ %s%s: missing %s", provider, active, providerKeyEnv[provider])))
		} else {
			fmt.Println(authInfoStyle.Render(fmt.Sprintf("○ %s: not configured (optional)", provider)))
		}
	}

	if cfg.GCPProject != "" {
		fmt.Println(authSuccessStyle.Render("✓ Google Cloud: project " + cfg.GCPProject))
	} else {
		fmt.Println(authInfoStyle.Render("○ Google Cloud: GOOGLE_CLOUD_PROJECT not set (optional)"))
	}

	switch {
	case cfg.GCS.Enabled && cfg.GCSBucket != "":
		fmt.Println(authSuccessStyle.Render(fmt.Sprintf("✓ Cloud Storage: gs://%s/%s", cfg.GCSBucket, cfg.GCS.Prefix)))
	case cfg.GCS.Enabled:
		fmt.Println(authErrorStyle.Render("✗ Cloud Storage: enabled but GCS_BUCKET is not set"))
	default:
		fmt.Println(authInfoStyle.Render("○ Cloud Storage: not enabled (optional)"))
	}

	if cfg.Secrets.Enabled {
		fmt.Println(authSuccessStyle.Render("✓ Secret Manager: enabled for " + cfg.Provider))
	} else {
		fmt.Println(authInfoStyle.Render("○ Secret Manager: not enabled (optional)"))
	}

	fmt.Println()
	return nil
}
