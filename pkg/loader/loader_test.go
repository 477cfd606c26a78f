package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestLoadCachesByName(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "util.mq"), []byte("def id(x): x;"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewWithPaths([]string{dir})

	m1, err := l.Load("util")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m1.Text != "def id(x): x;" {
		t.Errorf("Text = %q", m1.Text)
	}
	if !l.IsLoaded("util") {
		t.Errorf("expected util to be cached")
	}

	// Remove the file; a cached module must still resolve without re-reading.
	os.Remove(filepath.Join(dir, "util.mq"))
	m2, err := l.Load("util")
	if err != nil {
		t.Fatalf("unexpected error on cached load: %v", err)
	}
	if m2 != m1 {
		t.Errorf("expected the identical cached *Module on repeat Load")
	}
}

func TestLoadNotFound(t *testing.T) {
	l := NewWithPaths([]string{t.TempDir()})
	_, err := l.Load("missing")
	if err == nil {
		t.Fatalf("expected a NotFound error")
	}
	lerr, ok := err.(*Error)
	if !ok || lerr.Kind != NotFound {
		t.Errorf("got %v, want NotFound", err)
	}
}

// TestConcurrentLoadsOfDistinctNames exercises the loader the way
// SPEC_FULL.md §5 describes it being shared across multiple Engine
// instances/workers: many goroutines loading many *different* module
// names at once. singleflight only collapses concurrent calls for the
// *same* key, so this only stays race-free because l.cache/l.searchPaths
// are guarded by their own mutex; run with -race to verify.
func TestConcurrentLoadsOfDistinctNames(t *testing.T) {
	dir := t.TempDir()
	const n = 32
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("mod%d", i)
		if err := os.WriteFile(filepath.Join(dir, name+".mq"), []byte(fmt.Sprintf("def id%d(x): x;", i)), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	l := NewWithPaths([]string{dir})

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("mod%d", i)
			if _, err := l.Load(name); err != nil {
				errs <- err
			}
			l.IsLoaded(name)
			l.LoadedNames()
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected load error: %v", err)
	}
	if got := len(l.LoadedNames()); got != n {
		t.Errorf("got %d loaded names, want %d", got, n)
	}
}

func TestCycleChecker(t *testing.T) {
	var c CycleChecker
	if err := c.Push("a"); err != nil {
		t.Fatalf("unexpected error pushing a: %v", err)
	}
	if err := c.Push("b"); err != nil {
		t.Fatalf("unexpected error pushing b: %v", err)
	}
	if err := c.Push("a"); err == nil {
		t.Fatalf("expected a CircularInclude error re-pushing a")
	}
	c.Pop()
	c.Pop()
	if err := c.Push("a"); err != nil {
		t.Fatalf("unexpected error re-pushing a after pops: %v", err)
	}
}
