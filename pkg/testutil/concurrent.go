package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/sentinel"
)

// ConcurrentResult counts the outcomes of a RunConcurrent call.
type ConcurrentResult struct {
	Successes int32
	Conflicts int32
	NotFounds int32
	Errors    int32
}

// RunConcurrent starts n goroutines running fn and waits for all of them.
// Conflicts and not-found outcomes are recognised both as domain error codes
// and as backend sentinels; everything else counts as an error.
func RunConcurrent(n int, fn func(idx int) error) ConcurrentResult {
	var (
		wg                                   sync.WaitGroup
		successes, conflicts, notFounds, bad atomic.Int32
		start                                = make(chan struct{})
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := fn(i)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict), errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			case dErrors.HasCode(err, dErrors.CodeNotFound), errors.Is(err, sentinel.ErrNotFound):
				notFounds.Add(1)
			default:
				bad.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	return ConcurrentResult{
		Successes: successes.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: notFounds.Load(),
		Errors:    bad.Load(),
	}
}
