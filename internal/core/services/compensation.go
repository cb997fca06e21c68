package services

import "context"

// compensator collects undo actions for a multi-step operation against
// external collaborators. Steps register their compensation as they succeed;
// on the first failure the caller runs Rollback, which applies the
// compensations in reverse order before the error is surfaced. After full
// success the caller simply drops the compensator.
type compensator struct {
	undos []func(ctx context.Context) error
}

// onSuccess registers the compensation for a step that just succeeded.
func (c *compensator) onSuccess(undo func(ctx context.Context) error) {
	c.undos = append(c.undos, undo)
}

// Rollback applies all registered compensations in reverse order. Individual
// compensation failures are collected rather than aborting the sweep, so every
// prior success gets its undo attempted.
func (c *compensator) Rollback(ctx context.Context) []error {
	var failures []error
	for i := len(c.undos) - 1; i >= 0; i-- {
		if err := c.undos[i](ctx); err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}
