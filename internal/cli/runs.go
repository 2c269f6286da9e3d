package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/mlkit/artifact"
	"github.com/randalmurphal/mlkit/fsutil"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage run artifact directories",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a run's artifacts and verify their checksums",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Archive and delete old runs",
	Long: `Cleanup applies the retention policy: finished runs older than the archive
threshold are compressed into archive/YYYY-MM/, and runs past the retention
period are deleted. Failed and running runs are kept.`,
	Args: cobra.NoArgs,
	RunE: runRunsCleanup,
}

var runsUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show disk usage of runs and archives",
	Args:  cobra.NoArgs,
	RunE:  runRunsUsage,
}

var (
	runsBaseDir   string
	runsDryRun    bool
	runsRetention = artifact.DefaultRetentionConfig()
)

func init() {
	runsCmd.PersistentFlags().StringVar(&runsBaseDir, "base", "artifacts", "Base directory holding runs/ and archive/")

	runsCleanupCmd.Flags().BoolVar(&runsDryRun, "dry-run", false, "Report actions without changing anything")
	runsCleanupCmd.Flags().IntVar(&runsRetention.RetentionDays, "retention-days", runsRetention.RetentionDays, "Days to keep finished runs")
	runsCleanupCmd.Flags().IntVar(&runsRetention.ArchiveAfterDays, "archive-after-days", runsRetention.ArchiveAfterDays, "Days before a run is archived")
	runsCleanupCmd.Flags().IntVar(&runsRetention.KeepMinRuns, "keep-min", runsRetention.KeepMinRuns, "Minimum runs to keep regardless of age")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsCleanupCmd)
	runsCmd.AddCommand(runsUsageCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	runs, err := toolkit(cmd).Runs(runsBaseDir).ListRuns()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		cmd.Printf("No runs found in %s\n", runsBaseDir)
		return nil
	}

	for _, run := range runs {
		cmd.Printf("  %s\n", run.ID)
		cmd.Printf("    Status:    %s\n", run.Status)
		cmd.Printf("    Started:   %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
		cmd.Printf("    Artifacts: %d\n", len(run.Artifacts))
		if run.Error != "" {
			cmd.Printf("    Error:     %s\n", run.Error)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d runs\n", len(runs))
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	mgr := toolkit(cmd).Runs(runsBaseDir)
	runID := args[0]

	manifest, err := mgr.Manifest(runID)
	if err != nil {
		return err
	}

	cmd.Printf("Run: %s\n\n", manifest.ID)
	cmd.Printf("  Name:     %s\n", manifest.Name)
	cmd.Printf("  Status:   %s\n", manifest.Status)
	cmd.Printf("  Duration: %s\n", manifest.Duration().Round(time.Second))

	if len(manifest.Artifacts) == 0 {
		return nil
	}

	cmd.Println("\n  Artifacts:")
	for _, a := range manifest.Artifacts {
		status := "ok"
		if err := mgr.Verify(runID, a.Name); err != nil {
			status = "FAILED: " + err.Error()
		}
		cmd.Printf("    %-24s %8s  %s\n", a.Name, fsutil.FormatKB(a.Size), status)
	}
	return nil
}

func runRunsCleanup(cmd *cobra.Command, _ []string) error {
	lm := artifact.NewLifecycleManager(runsBaseDir, runsRetention, toolkit(cmd).Logger())

	result, err := lm.Cleanup(runsDryRun)
	if err != nil {
		return err
	}

	prefix := ""
	if runsDryRun {
		prefix = "(dry run) "
	}
	cmd.Printf("%sArchived: %d\n", prefix, len(result.Archived))
	cmd.Printf("%sDeleted:  %d\n", prefix, len(result.Deleted))
	cmd.Printf("%sKept:     %d\n", prefix, len(result.Kept))
	cmd.Printf("%sFreed:    %s\n", prefix, fsutil.FormatKB(result.SpaceSaved))
	for _, e := range result.Errors {
		cmd.Printf("  error: %s\n", e)
	}
	return nil
}

func runRunsUsage(cmd *cobra.Command, _ []string) error {
	lm := artifact.NewLifecycleManager(runsBaseDir, runsRetention, toolkit(cmd).Logger())

	stats, err := lm.DiskUsage()
	if err != nil {
		return err
	}

	cmd.Printf("Runs:     %d (%s)\n", stats.RunCount, fsutil.FormatKB(stats.ActiveSize))
	cmd.Printf("Archives: %d (%s)\n", stats.ArchiveCount, fsutil.FormatKB(stats.ArchiveSize))
	cmd.Printf("Total:    %s\n", fsutil.FormatKB(stats.TotalSize))
	return nil
}
