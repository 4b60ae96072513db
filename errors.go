package mapreduce

import "github.com/pkg/errors"

// Sentinel errors surfaced by Pool and Run. They are created with
// github.com/pkg/errors and returned as they are: NewPool, Submit and Run do
// not wrap them with a call-site stack trace, so callers can compare them
// directly or with errors.Is.
var (
	// ErrInvalidWorkerCount is returned by NewPool and Run when the
	// requested worker count is less than one.
	ErrInvalidWorkerCount = errors.New("mapreduce: worker count must be >= 1")

	// ErrInvalidPartitionCount is returned by Run when the requested
	// partition count is less than one.
	ErrInvalidPartitionCount = errors.New("mapreduce: partition count must be >= 1")

	// ErrPoolStopped is returned by Submit once Destroy has begun.
	ErrPoolStopped = errors.New("mapreduce: pool is stopped")
)
