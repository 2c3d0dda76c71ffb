package async

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRun_ExecutesDetached(t *testing.T) {
	done := make(chan struct{})
	Run("test-task", func(ctx context.Context) error {
		close(done)
		return nil
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestRun_SwallowsErrors(t *testing.T) {
	done := make(chan struct{})
	// must not panic or propagate
	Run("failing-task", func(ctx context.Context) error {
		defer close(done)
		return errors.New("boom")
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestRun_ContextHasDeadline(t *testing.T) {
	got := make(chan bool, 1)
	Run("deadline-check", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		got <- ok
		return nil
	})
	select {
	case ok := <-got:
		if !ok {
			t.Fatal("task context has no deadline")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}
