package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ideaforge/internal/storage"
	"ideaforge/pkg/config"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var envOrder = []string{
	"OPENAI_API_KEY",
	"GROQ_API_KEY",
	"GEMINI_API_KEY",
	"GOOGLE_CLOUD_PROJECT",
	"GCS_BUCKET",
}

var (
	projectIDPattern  = regexp.MustCompile(`^[a-z][a-z0-9-]{4,28}[a-z0-9]$`)
	bucketNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{1,61}[a-z0-9]$`)
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Ideaforge",
	Long: `Store an API key, create the output directory and optionally connect a
Google Cloud project for archiving in Cloud Storage and keeping the key in
Secret Manager.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fmt.Println(titleStyle.Render("💡 Ideaforge Setup"))

	// A missing secret is expected before the first setup.
	cfg, err := config.Load(ctx)
	if cfg == nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err != nil {
		fmt.Println(warnStyle.Render(err.Error()))
	}

	if err := storage.NewLocalStorage(cfg.Output.Dir).EnsureDirectories(); err != nil {
		return fmt.Errorf("create %s: %w", cfg.Output.Dir, err)
	}
	fmt.Println(successStyle.Render("✓ Created " + cfg.Output.Dir))

	if keep, err := keepExistingEnv(); err != nil || keep {
		return err
	}

	env := make(map[string]string)
	provider, err := askProviderKey(env)
	if err != nil {
		return err
	}

	plan, err := askCloudPlan(ctx)
	if err != nil {
		return err
	}
	if plan != nil {
		plan.apply(ctx, cfg, provider, env)
	}

	if err := os.WriteFile(".env", []byte(renderEnv(env)), 0600); err != nil {
		return fmt.Errorf("write .env: %w", err)
	}
	fmt.Println(successStyle.Render("✓ Created .env file"))
	printNextSteps()
	return nil
}

func keepExistingEnv() (bool, error) {
	if _, err := os.Stat(".env"); err != nil {
		return false, nil
	}
	overwrite := false
	if err := huh.NewConfirm().
		Title("Found existing .env file").
		Description("Overwrite?").
		Value(&overwrite).
		Run(); err != nil {
		return false, err
	}
	if !overwrite {
		fmt.Println(infoStyle.Render("Kept existing .env"))
	}
	return !overwrite, nil
}

var keyLinks = map[string]string{
	config.ProviderOpenAI: "https://platform.openai.com/api-keys",
	config.ProviderGroq:   "https://console.groq.com/keys",
	config.ProviderGemini: "https://aistudio.google.com/apikey",
}

func askProviderKey(env map[string]string) (string, error) {
	var provider, key string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Text-generation provider").
				Options(
					huh.NewOption("OpenAI", config.ProviderOpenAI),
					huh.NewOption("Groq", config.ProviderGroq),
					huh.NewOption("Gemini", config.ProviderGemini),
				).
				Value(&provider),
		),
		huh.NewGroup(
			huh.NewInput().
				TitleFunc(func() string { return providerKeyEnv[provider] }, &provider).
				DescriptionFunc(func() string { return keyLinks[provider] }, &provider).
				EchoMode(huh.EchoModePassword).
				Value(&key).
				Validate(required("API key")),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}

	env[providerKeyEnv[provider]] = strings.TrimSpace(key)
	if provider != config.ProviderOpenAI {
		fmt.Println(infoStyle.Render(fmt.Sprintf("Set provider: %s in config.yaml to use it by default", provider)))
	}
	return provider, nil
}

// cloudPlan collects the Google Cloud answers before anything is created.
type cloudPlan struct {
	gcloud       gcloudCLI
	Project      string
	Bucket       string
	CreateBucket bool
	StoreKey     bool
}

func askCloudPlan(ctx context.Context) (*cloudPlan, error) {
	useCloud := false
	if err := huh.NewConfirm().
		Title("Connect Google Cloud?").
		Description("Needed for --upload and for reading API keys from Secret Manager").
		Value(&useCloud).
		Run(); err != nil || !useCloud {
		return nil, err
	}

	cli, ok := findGcloud()
	if !ok {
		fmt.Println(warnStyle.Render("gcloud CLI not found - install from https://cloud.google.com/sdk/docs/install"))
		return nil, nil
	}

	plan := &cloudPlan{gcloud: cli, Project: cli.activeProject(ctx)}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project ID").
				Description("Defaults to the active gcloud project").
				Value(&plan.Project).
				Validate(validProjectID),
			huh.NewInput().
				Title("Bucket name").
				Description("Leave empty to skip Cloud Storage").
				Value(&plan.Bucket).
				Validate(validBucketName),
			huh.NewConfirm().
				Title("Create the bucket now?").
				Value(&plan.CreateBucket),
			huh.NewConfirm().
				Title("Store the API key in Secret Manager?").
				Description("Keeps the key out of .env").
				Value(&plan.StoreKey),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}

	plan.Project = strings.TrimSpace(plan.Project)
	plan.Bucket = strings.TrimSpace(plan.Bucket)
	return plan, nil
}

// services lists the APIs the plan depends on.
func (p *cloudPlan) services() []string {
	var services []string
	if p.Bucket != "" {
		services = append(services, "storage.googleapis.com")
	}
	if p.StoreKey {
		services = append(services, "secretmanager.googleapis.com")
	}
	return services
}

// apply runs the plan. Failed steps are reported and skipped so the .env
// file is still written.
func (p *cloudPlan) apply(ctx context.Context, cfg *config.Config, provider string, env map[string]string) {
	env["GOOGLE_CLOUD_PROJECT"] = p.Project

	if services := p.services(); len(services) > 0 {
		args := append([]string{"services", "enable"}, services...)
		if err := withSpinner(ctx, "Enabling APIs", func(ctx context.Context) error {
			return p.gcloud.run(ctx, "", append(args, "--project", p.Project)...)
		}); err != nil {
			fmt.Println(warnStyle.Render(err.Error()))
		}
	}

	if p.Bucket != "" {
		p.applyBucket(ctx, env)
	}
	if p.StoreKey {
		p.applySecret(ctx, cfg.SecretName(provider), providerKeyEnv[provider], env)
	}
}

func (p *cloudPlan) applyBucket(ctx context.Context, env map[string]string) {
	uri := "gs://" + p.Bucket
	if p.CreateBucket {
		if err := withSpinner(ctx, "Creating "+uri, func(ctx context.Context) error {
			return p.gcloud.run(ctx, "", "storage", "buckets", "create", uri, "--project", p.Project)
		}); err != nil {
			fmt.Println(warnStyle.Render("Cloud Storage skipped: " + err.Error()))
			return
		}
	}
	env["GCS_BUCKET"] = p.Bucket
	fmt.Println(infoStyle.Render("Set gcs.enabled: true in config.yaml to archive in " + uri))
}

func (p *cloudPlan) applySecret(ctx context.Context, secret, keyEnv string, env map[string]string) {
	err := withSpinner(ctx, "Storing key in secret "+secret, func(ctx context.Context) error {
		return p.gcloud.storeSecret(ctx, p.Project, secret, env[keyEnv])
	})
	if err != nil {
		fmt.Println(warnStyle.Render("Secret Manager skipped: " + err.Error()))
		return
	}
	delete(env, keyEnv)
	fmt.Println(infoStyle.Render("Set secrets.enabled: true in config.yaml to read the key from Secret Manager"))
}

type gcloudCLI struct {
	path string
}

func findGcloud() (gcloudCLI, bool) {
	path, err := exec.LookPath("gcloud")
	return gcloudCLI{path: path}, err == nil
}

func (g gcloudCLI) run(ctx context.Context, stdin string, args ...string) error {
	c := exec.CommandContext(ctx, g.path, args...)
	if stdin != "" {
		c.Stdin = strings.NewReader(stdin)
	}
	if out, err := c.CombinedOutput(); err != nil {
		return fmt.Errorf("gcloud %s: %w: %s", strings.Join(args[:2], " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (g gcloudCLI) activeProject(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, g.path, "config", "get-value", "project").Output()
	if err != nil {
		return ""
	}
	project := strings.TrimSpace(string(out))
	if project == "(unset)" {
		return ""
	}
	return project
}

// storeSecret adds value as the latest version of secret, creating the
// secret on first use.
func (g gcloudCLI) storeSecret(ctx context.Context, project, secret, value string) error {
	if err := g.run(ctx, "", "secrets", "describe", secret, "--project", project); err != nil {
		return g.run(ctx, value, "secrets", "create", secret, "--data-file=-", "--project", project)
	}
	return g.run(ctx, value, "secrets", "versions", "add", secret, "--data-file=-", "--project", project)
}

func withSpinner(ctx context.Context, title string, action func(context.Context) error) error {
	if err := spinner.New().
		Title(title).
		Context(ctx).
		ActionWithErr(action).
		Run(); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}

// renderEnv writes the known keys in a stable order and skips empty values.
func renderEnv(env map[string]string) string {
	var b strings.Builder
	for _, key := range envOrder {
		if value := env[key]; value != "" {
			fmt.Fprintf(&b, "%s=%s\n", key, value)
		}
	}
	return b.String()
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Check your keys: ideaforge auth status")
	fmt.Println("  2. Run: ideaforge generate -t \"your topic\" -n 3")
	fmt.Println("  3. Or fill in the form: ideaforge generate -i")
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validProjectID(s string) error {
	if !projectIDPattern.MatchString(strings.TrimSpace(s)) {
		return errors.New("project ID must be 6-30 lowercase letters, digits or hyphens")
	}
	return nil
}

func validBucketName(s string) error {
	s = strings.TrimSpace(s)
	if s != "" && !bucketNamePattern.MatchString(s) {
		return errors.New("bucket name must be 3-63 lowercase letters, digits, dots, dashes or underscores")
	}
	return nil
}
