// Package memo provides one-shot memoization cells for lazily derived
// values. A cell computes its value on first access and serves the cached
// result afterwards, including the error: a failed first computation is
// sticky for the lifetime of the cell.
package memo

import "sync"

// Cell caches the result of a single fallible computation.
// The zero value is ready to use.
type Cell[T any] struct {
	mu   sync.Mutex
	done bool
	val  T
	err  error
}

// Do returns the cached result, running compute exactly once across the
// cell's lifetime. Callers must not re-enter the same cell from inside
// its own compute function.
func (c *Cell[T]) Do(compute func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done {
		c.val, c.err = compute()
		c.done = true
	}
	return c.val, c.err
}

// Value is a Cell for computations that cannot fail.
type Value[T any] struct {
	cell Cell[T]
}

// Get returns the cached value, running compute at most once.
func (v *Value[T]) Get(compute func() T) T {
	val, _ := v.cell.Do(func() (T, error) {
		return compute(), nil
	})
	return val
}
