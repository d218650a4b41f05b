package state

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestDispatch(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	dispatchChan := make(chan func(*State) error, 10)
	env := &Env{
		DispatchChannel: dispatchChan,
		Context:         ctx,
		Cancel:          cancel,
	}
	state := &State{
		Env: env,
	}

	var called bool
	env.Dispatch(func(s *State) error {
		called = true
		return nil
	})

	select {
	case f := <-dispatchChan:
		assert.NoError(t, f(state))
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timed out waiting for dispatched function")
	}
	assert.True(t, called)
}

func TestDispatchAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	dispatchChan := make(chan func(*State) error)
	env := &Env{
		DispatchChannel: dispatchChan,
		Context:         ctx,
		Cancel:          cancel,
	}
	cancel(nil)

	done := make(chan struct{})
	go func() {
		env.Dispatch(func(s *State) error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked after cancellation")
	}
}

func TestRepeatTask(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancelCause(context.Background())

	dispatchChan := make(chan func(*State) error, 10)
	env := &Env{
		DispatchChannel: dispatchChan,
		Context:         ctx,
		Cancel:          cancel,
	}
	state := &State{
		Env: env,
	}

	var count atomic.Int32
	env.RepeatTask(func(s *State) error {
		count.Add(1)
		return nil
	}, 20*time.Millisecond)

	// the first run is dispatched immediately
	select {
	case f := <-dispatchChan:
		assert.NoError(t, f(state))
	case <-time.After(100 * time.Millisecond):
		t.Fatal("first run was not dispatched immediately")
	}

	deadline := time.After(time.Second)
	for count.Load() < 3 {
		select {
		case f := <-dispatchChan:
			assert.NoError(t, f(state))
		case <-deadline:
			t.Fatalf("expected at least 3 runs, got %d", count.Load())
		}
	}

	cancel(nil)
	env.WaitTasks()
}
