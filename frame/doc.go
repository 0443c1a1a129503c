// Package frame provides the frame scheduling primitives that pump a
// benchmark run: a per-refresh callback carrying a monotonic timestamp, a
// zero-delay deferred callback, and the wall clock read by manually timed
// runs.
//
// A single [Scheduler] is normally created at process start and injected
// into every run, so runs never rewire a shared scheduling function.
//
// Usage:
//
//	loop := frame.NewLoop()
//	loop.RequestFrame(func(ts time.Duration) {
//	    fmt.Println("refresh at", ts)
//	})
//	if err := loop.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package frame
