// Package async runs best-effort side effects detached from the request
// that triggered them.
package async

import (
	"context"
	"log"
	"time"
)

// DefaultTimeout bounds a detached task so a hung collaborator cannot
// leak goroutines.
const DefaultTimeout = 30 * time.Second

// Run executes fn on its own goroutine with a fresh, bounded context.
// A failure is logged and swallowed: fire-and-forget tasks never affect
// the success or failure of the operation that spawned them.
func Run(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("async: %s failed: %v", name, err)
		}
	}()
}
