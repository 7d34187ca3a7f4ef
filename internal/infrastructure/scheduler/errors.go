package scheduler

import "errors"

var (
	// ErrSchedulerStopped is returned when scheduling on a stopped scheduler
	ErrSchedulerStopped = errors.New("scheduler is stopped")

	// ErrSchedulerAlreadyRunning is returned when Start is called twice
	ErrSchedulerAlreadyRunning = errors.New("scheduler is already running")

	// ErrInvalidTransition is returned for entries without an order or target
	ErrInvalidTransition = errors.New("invalid scheduled transition")
)
