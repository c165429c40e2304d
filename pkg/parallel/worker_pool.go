// Package parallel provides bounded fan-out helpers.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// PoolConfig configures worker fan-out.
type PoolConfig struct {
	// MaxWorkers is the maximum number of concurrent workers.
	// Default: min(runtime.NumCPU(), 8)
	MaxWorkers int

	// Timeout bounds the whole operation. Zero means no timeout.
	Timeout time.Duration
}

// DefaultPoolConfig returns a default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxWorkers: min(max(runtime.NumCPU(), 2), 8)}
}

// WithWorkers returns a new config with the specified number of workers.
func (c PoolConfig) WithWorkers(n int) PoolConfig {
	c.MaxWorkers = n
	return c
}

// WithTimeout returns a new config with the specified timeout.
func (c PoolConfig) WithTimeout(d time.Duration) PoolConfig {
	c.Timeout = d
	return c
}

func (c PoolConfig) workers() int {
	if c.MaxWorkers <= 0 {
		return DefaultPoolConfig().MaxWorkers
	}
	return c.MaxWorkers
}

// ForEach runs fn for every item with at most MaxWorkers in flight. The first
// error cancels the context passed to the remaining calls. It returns the
// number of items fn completed without error and the first error.
func ForEach[T any](
	ctx context.Context,
	items []T,
	config PoolConfig,
	fn func(ctx context.Context, item T) error,
) (processed int64, firstError error) {
	if len(items) == 0 {
		return 0, nil
	}
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.workers())

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(gctx, item); err != nil {
				return err
			}
			done.Add(1)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return done.Load(), err
}

// Chunks splits n items into at most parts contiguous [start, end) ranges of
// near-equal size.
func Chunks(n, parts int) [][2]int {
	if n <= 0 || parts <= 0 {
		return nil
	}
	parts = min(parts, n)
	size := (n + parts - 1) / parts
	out := make([][2]int, 0, parts)
	for start := 0; start < n; start += size {
		out = append(out, [2]int{start, min(start+size, n)})
	}
	return out
}

// Aggregate folds items into a map using one local map per worker and merges
// the partial maps at the end, so workers never contend on a shared map.
func Aggregate[T any, K comparable, V any](
	ctx context.Context,
	items []T,
	config PoolConfig,
	extract func(item T) (K, V),
	merge func(existing, next V) V,
) map[K]V {
	result := make(map[K]V)
	ranges := Chunks(len(items), config.workers())
	if len(ranges) == 0 {
		return result
	}

	locals := make([]map[K]V, len(ranges))
	var wg sync.WaitGroup
	for w, r := range ranges {
		wg.Add(1)
		go func(w int, chunk []T) {
			defer wg.Done()
			local := make(map[K]V)
			for _, item := range chunk {
				if ctx.Err() != nil {
					break
				}
				k, v := extract(item)
				if existing, ok := local[k]; ok {
					v = merge(existing, v)
				}
				local[k] = v
			}
			locals[w] = local
		}(w, items[r[0]:r[1]])
	}
	wg.Wait()

	for _, local := range locals {
		for k, v := range local {
			if existing, ok := result[k]; ok {
				v = merge(existing, v)
			}
			result[k] = v
		}
	}
	return result
}
