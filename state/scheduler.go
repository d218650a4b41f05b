package state

import (
	"time"
)

// Dispatch queues the function on the dispatch goroutine without waiting for it to complete.
// The function is dropped once the run is cancelled.
func (e *Env) Dispatch(fun func(*State) error) {
	select {
	case e.DispatchChannel <- fun:
	case <-e.Context.Done():
	}
}

func (e *Env) repeatedTask(fun func(*State) error, delay time.Duration) {
	defer e.tasks.Done()
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for {
		e.Dispatch(fun)
		select {
		case <-ticker.C:
		case <-e.Context.Done():
			return
		}
	}
}

// RepeatTask dispatches fun now and then every delay until the context is done.
func (e *Env) RepeatTask(fun func(*State) error, delay time.Duration) {
	e.tasks.Add(1)
	go e.repeatedTask(fun, delay)
}

// WaitTasks blocks until every repeating task has observed cancellation.
func (e *Env) WaitTasks() {
	e.tasks.Wait()
}
