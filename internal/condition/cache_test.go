// internal/condition/cache_test.go
package condition

import (
	"sync"
	"testing"
)

func TestCache_ReturnsSameAST(t *testing.T) {
	cache := NewCache()

	first, err := cache.Get("score >= 80")
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	second, err := cache.Get("score >= 80")
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}

	if first != second {
		t.Errorf("Get() returned distinct ASTs for identical input")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestCache_DistinctStringsDistinctEntries(t *testing.T) {
	cache := NewCache()

	// Caching is keyed by exact string: formatting variants are separate
	// entries even when semantically identical.
	if _, err := cache.Get("score >= 80"); err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if _, err := cache.Get("score  >=  80"); err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
}

func TestCache_ParseErrorsNotCached(t *testing.T) {
	cache := NewCache()

	if _, err := cache.Get("a <"); err == nil {
		t.Fatalf("Get() error = nil, want parse error")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cache.Len())
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache()
	conditions := []string{
		"score >= 80",
		"passed AND attempts < 3",
		"count(completed) > 2",
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				cond := conditions[(i+j)%len(conditions)]
				if _, err := cache.Get(cond); err != nil {
					t.Errorf("Get(%q) error = %v, want nil", cond, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() != len(conditions) {
		t.Errorf("Len() = %d, want %d", cache.Len(), len(conditions))
	}
}
