package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/austenknu/TalentTriage/internal/pipeline"
)

var sweepOnce bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Re-enqueue stalled pipeline work",
	Long:  "Scan the database for uploads, resumes, and jobs stuck between stages and enqueue them. Runs continuously unless --once is given.",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepOnce, "once", false, "Run a single sweep and exit")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	claimer := pipeline.NewClaimer(a.store)
	sweeper := pipeline.NewSweeper(claimer, a.queue, a.cfg.SweepInterval, a.log)

	if sweepOnce {
		return sweeper.SweepOnce(ctx)
	}
	if err := sweeper.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
