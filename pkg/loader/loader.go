// Package loader resolves `include`/`import` module names to source text,
// caching each module by name so repeated includes across a program are
// loaded (and parsed) exactly once. Grounded on the teacher's
// interp.Interpreter unit-registry pattern: search-path resolution,
// load-once caching, and circular-dependency detection, adapted from a
// stateful registry object into a ModuleLoader usable concurrently from
// multiple HIR builds.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrorKind tags one of the loader's error taxonomy members.
type ErrorKind int

const (
	NotFound ErrorKind = iota
	IOError
	AlreadyLoaded
	CircularInclude
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case IOError:
		return "IOError"
	case AlreadyLoaded:
		return "AlreadyLoaded"
	case CircularInclude:
		return "CircularInclude"
	}
	return "Unknown"
}

// Error is a loader diagnostic.
type Error struct {
	Kind    ErrorKind
	Name    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s(%q): %s", e.Kind, e.Name, e.Message)
}

// Module is one resolved, loaded source.
type Module struct {
	Name string
	Path string // absolute file path, empty for builtin/synthetic modules
	Text string
}

// ModuleLoader resolves module names against a list of search paths
// (default: the current directory and $HOME/.mq, matching other mq-style
// tools' convention of a per-user module directory) and caches the result
// by name. Safe for concurrent use: concurrent loads of the same name
// collapse into a single file read via singleflight, and mu guards
// l.cache/l.searchPaths themselves so concurrent loads of *different*
// names (singleflight only dedupes same-key calls) never race on the map.
type ModuleLoader struct {
	mu          sync.RWMutex
	searchPaths []string
	cache       map[string]*Module
	group       singleflight.Group
}

// New creates a ModuleLoader with the default search paths: the current
// directory, then $HOME/.mq.
func New() *ModuleLoader {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".mq"))
	}
	return &ModuleLoader{searchPaths: paths, cache: make(map[string]*Module)}
}

// NewWithPaths creates a ModuleLoader over explicit search paths, searched
// in order.
func NewWithPaths(paths []string) *ModuleLoader {
	return &ModuleLoader{searchPaths: append([]string{}, paths...), cache: make(map[string]*Module)}
}

// SetPaths replaces the loader's search paths.
func (l *ModuleLoader) SetPaths(paths []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.searchPaths = append([]string{}, paths...)
}

func (l *ModuleLoader) getCached(name string) (*Module, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.cache[name]
	return m, ok
}

func (l *ModuleLoader) putCached(name string, m *Module) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[name] = m
}

// Load resolves name to a Module, reading it from the first search path
// where `<path>/<name>.mq` exists. Repeated calls for the same name return
// the cached Module without touching the filesystem again.
func (l *ModuleLoader) Load(name string) (*Module, error) {
	if m, ok := l.getCached(name); ok {
		return m, nil
	}

	v, err, _ := l.group.Do(name, func() (any, error) {
		if m, ok := l.getCached(name); ok {
			return m, nil
		}
		l.mu.RLock()
		dirs := append([]string{}, l.searchPaths...)
		l.mu.RUnlock()
		for _, dir := range dirs {
			candidate := filepath.Join(dir, name+".mq")
			data, readErr := os.ReadFile(candidate)
			if readErr != nil {
				if os.IsNotExist(readErr) {
					continue
				}
				return nil, &Error{Kind: IOError, Name: name, Message: readErr.Error()}
			}
			m := &Module{Name: name, Path: candidate, Text: string(data)}
			l.putCached(name, m)
			return m, nil
		}
		return nil, &Error{Kind: NotFound, Name: name, Message: "not found in search paths"}
	})
	if err != nil {
		return nil, err
	}
	return v.(*Module), nil
}

// IsLoaded reports whether name has already been resolved and cached.
func (l *ModuleLoader) IsLoaded(name string) bool {
	_, ok := l.getCached(name)
	return ok
}

// LoadedNames returns every module name currently cached, in no particular
// order.
func (l *ModuleLoader) LoadedNames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.cache))
	for n := range l.cache {
		names = append(names, n)
	}
	return names
}

// CycleChecker tracks the include chain of a single top-level source
// being built, so the HIR builder can detect `include "a"` from inside
// a's own (transitive) include of itself.
type CycleChecker struct {
	stack []string
}

// Push records that name is now being loaded; it returns an error if name
// is already on the stack (a cycle).
func (c *CycleChecker) Push(name string) error {
	for _, n := range c.stack {
		if n == name {
			return &Error{Kind: CircularInclude, Name: name, Message: fmt.Sprintf("circular include via %v", append(append([]string{}, c.stack...), name))}
		}
	}
	c.stack = append(c.stack, name)
	return nil
}

// Pop removes the most recently pushed name.
func (c *CycleChecker) Pop() {
	if len(c.stack) > 0 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}
