package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/MeKo-Tech/moore/internal/batch"
	"github.com/MeKo-Tech/moore/internal/config"
	"github.com/spf13/cobra"
)

// batchCmd represents the batch command for parallel image processing.
var batchCmd = &cobra.Command{
	Use:   "batch <dir|files...>",
	Short: "Trace many images in parallel",
	Long: `Trace every image in the given directories and files using a pool of
parallel workers. Results are reported in discovery order.

Supported formats: PNG, JPEG, GIF, BMP, TIFF

Examples:
  moore batch images/
  moore batch images/ --recursive --workers 8 --format json --output results.json
  moore batch a.png b.png --continue-on-error --progress`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// configToBatchConfig maps centralized configuration to batch.Config.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) (*batch.Config, error) {
	batchConfig, err := imageConfig(cmd, cfg)
	if err != nil {
		return nil, err
	}

	batchConfig.Workers = cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		batchConfig.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if batchConfig.Workers <= 0 {
		batchConfig.Workers = runtime.NumCPU()
	}

	batchConfig.ContinueOnError = cfg.Batch.ContinueOnError
	if cmd.Flags().Changed("continue-on-error") {
		batchConfig.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}

	batchConfig.Recursive = cfg.Batch.Recursive
	if cmd.Flags().Changed("recursive") {
		batchConfig.Recursive, _ = cmd.Flags().GetBool("recursive")
	}

	batchConfig.IncludePatterns = cfg.Batch.Include
	if cmd.Flags().Changed("include") {
		batchConfig.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	}

	batchConfig.ExcludePatterns = cfg.Batch.Exclude
	if cmd.Flags().Changed("exclude") {
		batchConfig.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
	}

	// Progress settings are CLI-only
	batchConfig.ShowProgress, _ = cmd.Flags().GetBool("progress")
	batchConfig.Quiet, _ = cmd.Flags().GetBool("quiet")
	batchConfig.ProgressInterval, _ = cmd.Flags().GetDuration("progress-interval")
	batchConfig.ProgressWriter = cmd.ErrOrStderr()

	return batchConfig, nil
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	config, err := configToBatchConfig(cfg, cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := batch.ProcessBatch(ctx, args, config)
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	if err := result.SaveResults(cmd.OutOrStdout(), config.Format, config.OutputFile, config.Quiet); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		result.PrintStats(cmd.ErrOrStderr(), config.Quiet)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addTraceFlags(batchCmd)
	addOverlayFlags(batchCmd)

	// Parallel processing flags
	batchCmd.Flags().IntP("workers", "w", 0, fmt.Sprintf("number of parallel workers (default: %d)", runtime.NumCPU()))
	batchCmd.Flags().Bool("continue-on-error", false, "keep going when an image fails and report it in the results")

	// File discovery flags
	batchCmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
	batchCmd.Flags().StringSlice("include", nil, "file name patterns to include (e.g. *.png)")
	batchCmd.Flags().StringSlice("exclude", nil, "file name patterns to exclude")

	// Progress and monitoring flags
	batchCmd.Flags().Bool("progress", false, "show progress bar on stderr")
	batchCmd.Flags().Bool("quiet", false, "suppress progress output")
	batchCmd.Flags().Bool("stats", false, "print processing statistics on stderr")
	batchCmd.Flags().Duration("progress-interval", 500*time.Millisecond, "progress update interval")
}
