package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/chatbridge"
	"github.com/hupe1980/chatbridge/directory"
	"github.com/hupe1980/chatbridge/reconcile"
)

const stopTimeout = 30 * time.Second

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Remove conversations of channels that no longer exist",
	Long: `Reconcile compares the channel ids stored in MongoDB against the live
channel list exported by the platform (a YAML file re-read on every sweep)
and deletes conversations whose channel is gone.

Without --once it sweeps immediately and then every RECONCILE_INTERVAL
until interrupted.`,
	RunE: runReconcile,
}

var (
	reconcileChannels  string
	reconcileOnce      bool
	reconcileSkipEmpty bool
)

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().StringVar(&reconcileChannels, "channels", "", "YAML export of the live channels (required)")
	reconcileCmd.Flags().BoolVar(&reconcileOnce, "once", false, "Run a single sweep and exit")
	reconcileCmd.Flags().BoolVar(&reconcileSkipEmpty, "skip-empty", false, "Skip the sweep when the export lists no channels")
	_ = reconcileCmd.MarkFlagRequired("channels")
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.WithoutCancel(ctx)) }()

	dir := directory.NewFile(reconcileChannels)
	rc := reconcile.Config{
		Interval:           cfg.ReconcileInterval,
		DeleteConcurrency:  reconcile.DefaultConfig.DeleteConcurrency,
		SkipEmptyDirectory: reconcileSkipEmpty,
	}

	if reconcileOnce {
		res := reconcile.NewTask(store, dir, func(o *reconcile.Options) {
			o.Config = rc
			o.Logger = logger
		}).Sweep(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "stored=%d live=%d orphans=%d deleted=%d failed=%d skipped=%t\n",
			res.Stored, res.Live, len(res.Orphans), res.Deleted, len(res.Failed), res.Skipped)
		return res.Err
	}

	bridge := chatbridge.New(func(o *chatbridge.Options) {
		o.Store = store
		o.ReconcileConfig = rc
		o.Logger = logger
	})
	bridge.StartReconciliation(dir)
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	return bridge.Close(stopCtx)
}
