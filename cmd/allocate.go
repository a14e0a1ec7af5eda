package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TheRVAAccountant/resource-allocator/app"
	"github.com/TheRVAAccountant/resource-allocator/infra/logger"
	"github.com/TheRVAAccountant/resource-allocator/pkg/export"
)

var (
	routesPath   string
	vehiclesPath string
	brandsPath   string
	driversPath  string
	outCSV       string
	outJSON      string
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Run one allocation over the day's input files",
	RunE:  runAllocate,
}

func init() {
	allocateCmd.Flags().StringVar(&routesPath, "routes", "", "route sheet CSV")
	allocateCmd.Flags().StringVar(&vehiclesPath, "vehicles", "", "daily vehicle log CSV")
	allocateCmd.Flags().StringVar(&brandsPath, "brands", "", "brand/rental lookup CSV (optional)")
	allocateCmd.Flags().StringVar(&driversPath, "drivers", "", "route to driver lookup CSV (optional)")
	allocateCmd.Flags().StringVar(&outCSV, "out-csv", "", "write the assignment report to this file")
	allocateCmd.Flags().StringVar(&outJSON, "out-json", "", "write the full result to this file")
	_ = allocateCmd.MarkFlagRequired("routes")
	_ = allocateCmd.MarkFlagRequired("vehicles")
	rootCmd.AddCommand(allocateCmd)
}

func runAllocate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	go func() {
		if err := svc.ServeMetrics(ctx); err != nil {
			logger.New("main").Errorf("prom server: %v", err)
		}
	}()

	result, err := svc.RunFiles(ctx, app.InputFiles{
		Routes:   routesPath,
		Vehicles: vehiclesPath,
		Brands:   brandsPath,
		Drivers:  driversPath,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %s\n", result.RequestID, result.Status)
	fmt.Fprintf(cmd.OutOrStdout(), "  assigned %d, unallocated %d, rate %.1f%%\n",
		result.Metadata.AllocatedCount, result.Metadata.UnallocatedCount,
		result.Metadata.AllocationRate*100)
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "  warning: %s\n", w)
	}

	if outCSV != "" {
		f, err := os.Create(outCSV)
		if err != nil {
			return err
		}
		if err := export.WriteAssignmentsCSV(f, result.Detailed); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	if outJSON != "" {
		f, err := os.Create(outJSON)
		if err != nil {
			return err
		}
		if err := export.WriteResultJSON(f, result); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
