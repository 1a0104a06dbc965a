// Package reconcile prunes conversations whose chat channel no longer exists.
//
// A Task runs the sweep loop: it materializes the stored channel ids and the
// live channel ids reported by a core.ChannelDirectory, deletes the
// difference and sleeps for a fixed interval before sweeping again. Errors
// never leave the loop; a failed sweep simply waits for the next cycle.
//
// A Manager owns the lifecycle of at most one Task per process:
//
//	mgr := reconcile.NewManager(store, func(o *reconcile.Options) {
//	    o.Interval = 24 * time.Hour
//	    o.Logger = logger
//	})
//	mgr.Start(directory)
//	defer mgr.Stop(context.Background())
//
// Cancellation is cooperative. Stop interrupts the sleep between sweeps; a
// sweep that is already talking to the store or the directory finishes (or
// fails) on its own before the task exits.
package reconcile
