// Package compute provides the schedulers that fan per-node work across
// CPU cores.
//
//   - Pool: fixed set of long-lived workers, static contiguous split
//   - Serial: runs every range inline on the caller's goroutine
//
// Both implement [Scheduler]. For returns only after every range has
// finished, which gives the simulator its barrier between the force and
// integration phases:
//
//	pool := compute.NewPool(0) // one worker per CPU
//	defer pool.Close()
//	pool.For(len(nodes), func(start, end int) {
//	    for i := start; i < end; i++ {
//	        forces[i] = model.Net(bodies, i)
//	    }
//	})
//
// Ranges never overlap, so a worker may write to any slot in its own range
// without locking.
package compute
