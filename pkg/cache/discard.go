package cache

import (
	"context"
	"time"
)

// Discard is a Cache that keeps nothing: every Get misses and every Set is
// dropped. It backs --no-cache, the "none" backend and sources built
// without a cache.
var Discard Cache = discard{}

type discard struct{}

func (discard) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (discard) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (discard) Delete(context.Context, string) error { return nil }

func (discard) Close() error { return nil }
