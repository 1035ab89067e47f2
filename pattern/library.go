package pattern

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/lixenwraith/danmaku/parameter"
)

// Library is a name-keyed set of compiled patterns
type Library struct {
	mu       sync.RWMutex
	patterns map[string]*Pattern
}

func NewLibrary() *Library {
	return &Library{patterns: make(map[string]*Pattern)}
}

// Add registers p under name, replacing any previous entry
func (l *Library) Add(name string, p *Pattern) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.patterns[name] = p
}

// Get looks a pattern up by name
func (l *Library) Get(name string) (*Pattern, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.patterns[name]
	return p, ok
}

// Names returns registered names sorted
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.patterns))
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.patterns)
}

// LoadDir builds a library from every pattern file in dir using the default logger
func LoadDir(dir string) (*Library, []error) {
	l := NewLibrary()
	errs := l.LoadDir(dir, slog.Default())
	return l, errs
}

// LoadDir compiles every *.pattern.json in dir into the library
// Files that fail are logged and returned; the rest still load
func (l *Library) LoadDir(dir string, logger *slog.Logger) []error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("pattern directory unreadable", "dir", dir, "error", err)
		return []error{fmt.Errorf("read pattern dir %s: %w", dir, err)}
	}

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), parameter.PatternFileSuffix) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		name := PatternName(entry.Name())

		p, err := LoadFile(path)
		if err != nil {
			logger.Warn("pattern rejected", "file", path, "error", err)
			errs = append(errs, err)
			continue
		}
		p.Name = name

		if _, dup := l.Get(name); dup {
			logger.Warn("pattern name reused, replacing", "name", name, "file", path)
		}
		l.Add(name, p)
		logger.Debug("pattern loaded", "name", name, "ops", p.String())
	}
	return errs
}

// LoadFile reads and parses one pattern file; the pattern is left unnamed
func LoadFile(path string) (*Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// PatternName returns the file stem before the first dot, "spiral.pattern.json" -> "spiral"
func PatternName(file string) string {
	base := filepath.Base(file)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}
