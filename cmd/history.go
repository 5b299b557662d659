package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ideaforge/internal/app"
	"ideaforge/internal/storage"
	"ideaforge/pkg/config"
)

var historyRemote bool

var topicStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived idea batches",
	Long:  `List the batches archived with --save, newest first. Use --remote to list the GCS archive instead.`,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the local history",
	Long:  `Remove every batch from the local history and delete the archived files.`,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().BoolVar(&historyRemote, "remote", false, "List batches stored in Google Cloud Storage")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if historyRemote {
		return listRemote(cmd, cfg)
	}

	service := localService(cfg)
	entries := service.History().List()
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render("No archived batches"))
		return nil
	}

	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		size := "-"
		if entry.Path != "" {
			if info, err := os.Stat(entry.Path); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
		}
		location := entry.Path
		if location == "" {
			location = entry.RemoteURI
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-14s  %2d idea(s)  %-8s  %s\n",
			topicStyle.Render(entry.Topic),
			humanize.Time(entry.CreatedAt),
			entry.Ideas,
			size,
			location,
		)
	}
	return nil
}

func listRemote(cmd *cobra.Command, cfg *config.Config) error {
	if !cfg.GCS.Enabled {
		return app.ErrRemoteDisabled
	}

	ctx := cmd.Context()
	remote, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCS.Prefix, cfg.ClientOptions()...)
	if err != nil {
		return err
	}
	defer func() { _ = remote.Close() }()

	objects, err := remote.List(ctx)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render("No archived batches in gs://"+cfg.GCSBucket))
		return nil
	}

	for _, object := range objects {
		fmt.Fprintf(cmd.OutOrStdout(), "%-14s  %-8s  gs://%s/%s\n",
			humanize.Time(object.Updated),
			humanize.Bytes(uint64(object.Size)),
			cfg.GCSBucket,
			object.Name,
		)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	count, err := localService(cfg).ClearHistory()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Cleared %d batch(es) from history", count)))
	return nil
}

func localService(cfg *config.Config) *app.Service {
	local := storage.NewLocalStorage(cfg.Output.Dir)
	return app.NewService(app.ServiceOptions{
		Config:  cfg,
		Local:   local,
		History: storage.NewHistory(local.HistoryPath(), cfg.Output.HistorySize),
	})
}
