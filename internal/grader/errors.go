package grader

import "errors"

// ErrQueueFull is returned by Enqueue when the bounded grading queue cannot
// accept another job; the upload should be retried later.
var ErrQueueFull = errors.New("grading queue full")
