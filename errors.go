package leapjoin

import (
	"errors"
	"fmt"
)

var (
	// ErrNilCursor is returned when a join input is nil.
	ErrNilCursor = errors.New("nil cursor")

	// ErrInvalidShardLimit is returned when a parallel join is given a
	// negative concurrency limit.
	ErrInvalidShardLimit = errors.New("shard limit must not be negative")
)

// ShardError reports which shard of a parallel join failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type ShardError struct {
	Shard int
	cause error
}

func (e *ShardError) Error() string {
	return fmt.Sprintf("shard %d: %v", e.Shard, e.cause)
}

func (e *ShardError) Unwrap() error { return e.cause }
