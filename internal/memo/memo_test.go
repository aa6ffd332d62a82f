package memo

import (
	"errors"
	"sync"
	"testing"
)

func TestCellComputesOnce(t *testing.T) {
	var c Cell[int]
	calls := 0
	for i := 0; i < 3; i++ {
		got, err := c.Do(func() (int, error) {
			calls++
			return 42, nil
		})
		if err != nil {
			t.Fatalf("Do returned error: %v", err)
		}
		if got != 42 {
			t.Fatalf("Do = %d, want 42", got)
		}
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times, want 1", calls)
	}
}

func TestCellStickyError(t *testing.T) {
	var c Cell[string]
	sentinel := errors.New("boom")
	calls := 0
	compute := func() (string, error) {
		calls++
		return "", sentinel
	}
	if _, err := c.Do(compute); !errors.Is(err, sentinel) {
		t.Fatalf("first Do error = %v, want sentinel", err)
	}
	// Second access must not retry.
	if _, err := c.Do(func() (string, error) { return "ok", nil }); !errors.Is(err, sentinel) {
		t.Fatalf("second Do error = %v, want sticky sentinel", err)
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times, want 1", calls)
	}
}

func TestCellDiamondDependency(t *testing.T) {
	// d is shared by b and c; both run while a computes.
	var a, b, c, d Cell[int]
	dCalls := 0
	getD := func() int {
		v, _ := d.Do(func() (int, error) {
			dCalls++
			return 1, nil
		})
		return v
	}
	getB := func() int {
		v, _ := b.Do(func() (int, error) { return getD() + 1, nil })
		return v
	}
	getC := func() int {
		v, _ := c.Do(func() (int, error) { return getD() + 2, nil })
		return v
	}
	got, _ := a.Do(func() (int, error) { return getB() + getC(), nil })
	if got != 5 {
		t.Fatalf("diamond result = %d, want 5", got)
	}
	if dCalls != 1 {
		t.Fatalf("shared ancestor computed %d times, want 1", dCalls)
	}
}

func TestCellConcurrentAccess(t *testing.T) {
	var c Cell[int]
	calls := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := c.Do(func() (int, error) {
				calls++
				return 7, nil
			})
			if got != 7 {
				t.Errorf("Do = %d, want 7", got)
			}
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Fatalf("compute ran %d times, want 1", calls)
	}
}

func TestValueGet(t *testing.T) {
	var v Value[string]
	calls := 0
	for i := 0; i < 2; i++ {
		if got := v.Get(func() string { calls++; return "x" }); got != "x" {
			t.Fatalf("Get = %q, want x", got)
		}
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times, want 1", calls)
	}
}
