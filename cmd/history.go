package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheRVAAccountant/resource-allocator/core/history"
)

var (
	historyLimit    int
	historyStatus   string
	historyEngine   string
	historyWithDups bool
	historyWithErrs bool
	statsDays       int
	clearAll        bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the allocation run ledger",
	RunE:  runHistoryLs,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate run history over a time window",
	RunE:  runStats,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Prune the run ledger",
	RunE:  runClear,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to show")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "filter by run status")
	historyCmd.Flags().StringVar(&historyEngine, "engine", "", "filter by engine name")
	historyCmd.Flags().BoolVar(&historyWithDups, "with-duplicates", false, "only runs with duplicate conflicts")
	historyCmd.Flags().BoolVar(&historyWithErrs, "with-errors", false, "only runs with an error")
	statsCmd.Flags().IntVar(&statsDays, "days", 30, "window in days, 0 for all")
	clearCmd.Flags().BoolVar(&clearAll, "all", false, "remove every entry instead of applying retention")
	historyCmd.AddCommand(statsCmd)
	historyCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(historyCmd)
}

func openStore() (history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return history.NewStore(cfg.History)
}

func runHistoryLs(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Get(context.Background(), historyLimit, history.Filter{
		Status:         historyStatus,
		Engine:         historyEngine,
		WithDuplicates: historyWithDups,
		WithErrors:     historyWithErrs,
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no history entries")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %-36s assigned=%d unallocated=%d rate=%.2f%% duplicates=%d\n",
			e.Timestamp.Format(time.RFC3339), e.Status, e.RequestID,
			e.AllocatedCount, e.UnallocatedCount, e.AllocationRate,
			e.DuplicateConflicts.Count)
		if e.Error != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "    error: %s\n", e.Error)
		}
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stats, err := store.Statistics(context.Background(), statsDays)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "runs: %d (completed %d, partial %d, failed %d)\n",
		stats.TotalRuns, stats.Completed, stats.Partial, stats.Failed)
	fmt.Fprintf(cmd.OutOrStdout(), "allocated: %d, unallocated: %d, duplicate conflicts: %d\n",
		stats.TotalAllocated, stats.TotalUnallocated, stats.DuplicateConflicts)
	fmt.Fprintf(cmd.OutOrStdout(), "avg rate: %.2f%%, avg processing: %.2fs\n",
		stats.AvgAllocationRate, stats.AvgProcessingSec)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if clearAll {
		if err := store.ClearAll(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
		return nil
	}
	dropped, err := store.ClearOld(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "dropped %d entries\n", dropped)
	return nil
}
