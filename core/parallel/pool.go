package parallel

import (
	"sync"
)

// Run executes the given tasks on a bounded pool of workers and waits for all
// of them to finish (fork-join). The first error observed is returned; the
// remaining tasks still run to completion, so no goroutine is leaked and no
// partial result is consumed by the caller.
//
// This is the concurrency model used by the cross-validated grid search: each
// fold is an independent task, results are aggregated only after the join, and
// a single failing fold fails the whole step.
func Run(workers int, tasks []func() error) error {
	if len(tasks) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	taskCh := make(chan func() error)

	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				if err := task(); err != nil {
					once.Do(func() { firstErr = err })
				}
			}
		}()
	}

	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	wg.Wait()
	return firstErr
}
