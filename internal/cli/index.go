package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/0xcro3dile/courserag/internal/adapters/filewatcher"
	"github.com/0xcro3dile/courserag/internal/infrastructure/bootstrap"
	"github.com/0xcro3dile/courserag/internal/infrastructure/config"
	"github.com/0xcro3dile/courserag/internal/infrastructure/logger"
)

var (
	indexWatch bool
	indexQuiet time.Duration
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the persisted index from the catalog CSVs",
	Long: `Build the retrieval index from the courses and language-map CSVs and store
it in the SQLite file named by data.index_path. A running server picks the
file up on its next start.

Examples:
  courserag index            # Build once
  courserag index --watch    # Rebuild whenever a CSV changes`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "rebuild when the catalog CSVs change")
	indexCmd.Flags().DurationVar(&indexQuiet, "quiet", 500*time.Millisecond, "wait this long after the last change before rebuilding")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := buildOnce(ctx, cfg); err != nil {
		return err
	}
	if !indexWatch {
		return nil
	}

	watcher, err := filewatcher.NewFSNotifyWatcher()
	if err != nil {
		return err
	}
	defer watcher.Stop()

	events, err := watcher.Watch(ctx, bootstrap.NewCatalogLoader(cfg).Paths())
	if err != nil {
		return fmt.Errorf("watching catalog: %w", err)
	}
	fmt.Printf("Watching %s and %s for changes (Ctrl+C to stop)\n", cfg.CoursesPath(), cfg.LangMapPath())

	for range filewatcher.Coalesce(ctx, events, indexQuiet) {
		if err := buildOnce(ctx, cfg); err != nil {
			// A half-written CSV is normal while an editor saves; keep the last good index.
			logger.Errorf("rebuild failed: %v", err)
		}
	}
	return nil
}

func buildOnce(ctx context.Context, cfg *config.Config) error {
	embedder, err := bootstrap.NewEmbedder(cfg)
	if err != nil {
		return err
	}

	var (
		bar   *progressbar.ProgressBar
		barMu sync.Mutex
	)
	progress := func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	start := time.Now()
	n, err := bootstrap.WriteIndex(ctx, cfg, embedder, progress)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Chunks:   %d\n", n)
	fmt.Printf("  Embedder: %s\n", cfg.EmbedderFingerprint())
	fmt.Printf("  Took:     %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("\nIndex stored at: %s\n", cfg.IndexPath())
	return nil
}
