package schema

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/veilstore/veilstore/pkg/observability/logger"
)

// DefaultRoot is the directory name searched for schema files when no root
// is configured.
const DefaultRoot = "schemas"

// defaultRoot resolves DefaultRoot next to the running executable so schema
// lookups do not depend on the process working directory. When the
// executable path cannot be determined it falls back to DefaultRoot under
// the working directory.
func defaultRoot() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultRoot
	}
	return filepath.Join(filepath.Dir(exe), DefaultRoot)
}

// Store locates schema files by name under a root directory and caches
// parsed results for the lifetime of the process. The cache is keyed by
// filename and never invalidated; on-disk edits require a restart.
type Store struct {
	root   string
	logger logger.Logger

	mu    sync.RWMutex
	cache map[string]*Schema
}

// NewStore creates a schema store rooted at root. An empty root falls back
// to the DefaultRoot directory next to the executable. A nil logger is
// replaced with a no-op logger.
func NewStore(root string, log logger.Logger) *Store {
	if root == "" {
		root = defaultRoot()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		root:   root,
		logger: log,
		cache:  make(map[string]*Schema),
	}
}

// Root returns the configured schema root directory.
func (s *Store) Root() string {
	return s.root
}

// Load returns the schema stored under name, searching the root and all its
// subdirectories. The first successful load for a name is cached; later
// calls return the cached schema without touching storage. A missing file
// yields a *NotFoundError.
func (s *Store) Load(name string) (*Schema, error) {
	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	s.logger.Debug("Searching for schema", "schema", name, "root", s.root)

	path, err := s.find(name)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Found schema file", "schema", name, "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := Parse(name, path, raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent loader may have won the race; keep the first entry so
	// callers always observe one schema value per name.
	if existing, ok := s.cache[name]; ok {
		return existing, nil
	}
	s.cache[name] = parsed
	return parsed, nil
}

// find walks the root recursively and returns the first file whose base name
// matches name.
func (s *Store) find(name string) (string, error) {
	var found string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Base(path) == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return "", NewNotFoundError(name, s.root)
		}
		return "", err
	}
	if found == "" {
		return "", NewNotFoundError(name, s.root)
	}
	return found, nil
}
