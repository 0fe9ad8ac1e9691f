package core

import "errors"

// ErrQueueOverflow reports a ray queue overflow. The queues in pkg/queue
// grow on demand and have no capacity bound, so nothing returns it.
var ErrQueueOverflow = errors.New("core: ray queue overflow")

// ErrVertexCacheOverflow reports a light-path vertex cache overflow. The
// vertex cache grows on demand and has no capacity bound, so nothing
// returns it.
var ErrVertexCacheOverflow = errors.New("core: vertex cache overflow")
