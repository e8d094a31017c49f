package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when more than limit goroutines are running.
func GoroutineCountCheck(limit int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("%d goroutines, limit %d", n, limit)
		}
		return nil
	}
}

// NonEmptyCheck fails while count reports zero, e.g. an unloaded catalog.
func NonEmptyCheck(what string, count func(ctx context.Context) (int, error)) CheckFunc {
	return func(ctx context.Context) error {
		n, err := count(ctx)
		if err != nil {
			return errors.Wrapf(err, "count %s", what)
		}
		if n == 0 {
			return errors.Errorf("no %s loaded", what)
		}
		return nil
	}
}
