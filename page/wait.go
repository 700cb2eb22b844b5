package page

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultTryLimit    = 60
	defaultTryInterval = time.Millisecond * 500
)

// BrokenPromiseError is returned when a condition was not fulfilled within its
// try budget.
type BrokenPromiseError struct {
	Description string
	Tries       int
}

func (e *BrokenPromiseError) Error() string {
	return fmt.Sprintf("promise not fulfilled after %d tries: %s", e.Tries, e.Description)
}

// WaitOpts bounds how long a Wait keeps retrying.
type WaitOpts struct {
	TryLimit    int           // zero means defaultTryLimit
	TryInterval time.Duration // zero means defaultTryInterval
}

// Wait polls cond until it returns true, the try limit is exhausted, or the
// context is done. The description names the condition in the resulting
// BrokenPromiseError. An error from cond stops the wait immediately.
func Wait(ctx context.Context, description string, cond func(context.Context) (bool, error), opts WaitOpts) error {
	tryLimit := opts.TryLimit
	if tryLimit <= 0 {
		tryLimit = defaultTryLimit
	}
	tryInterval := opts.TryInterval
	if tryInterval <= 0 {
		tryInterval = defaultTryInterval
	}

	for try := 1; ; try++ {
		ok, err := cond(ctx)
		if err != nil {
			return fmt.Errorf("waiting for %q: %w", description, err)
		}
		if ok {
			return nil
		}
		if try >= tryLimit {
			return &BrokenPromiseError{Description: description, Tries: try}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %q: %w", description, ctx.Err())
		case <-time.After(tryInterval):
		}
	}
}
