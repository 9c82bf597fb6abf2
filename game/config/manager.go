package config

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	ErrCatalogNotFound = errors.New("message catalog not found")
	ErrInvalidCatalog  = errors.New("invalid message catalog")
	ErrUnknownMessage  = errors.New("unknown message key")
)

// DefaultCatalog is the catalog used when none is configured
const DefaultCatalog = "classic"

//go:embed catalogs/*.json
var builtin embed.FS

// CatalogInfo describes an available catalog
type CatalogInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Builtin     bool   `json:"builtin"`
}

// Manager handles message catalog loading and caching. Catalogs found in
// the directory take precedence over the built-in ones of the same name.
type Manager struct {
	dir      string
	catalogs map[string]*Catalog
	def      *Catalog
	mu       sync.RWMutex
}

// NewManager creates a catalog manager reading from dir. An empty dir
// restricts the manager to the built-in catalogs.
func NewManager(dir string) (*Manager, error) {
	if dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("catalog directory does not exist: %s", dir)
		}
	}

	m := &Manager{
		dir:      dir,
		catalogs: make(map[string]*Catalog),
	}

	def, err := m.Load(DefaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load default catalog: %w", err)
	}
	m.def = def
	return m, nil
}

// Load returns the catalog with the given name, reading and validating it
// on first use
func (m *Manager) Load(name string) (*Catalog, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if c, ok := m.catalogs[name]; ok {
		m.mu.RUnlock()
		return c, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if c, ok := m.catalogs[name]; ok {
		return c, nil
	}

	data, err := m.read(name)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}

	m.catalogs[name] = c
	return c, nil
}

func (m *Manager) read(name string) ([]byte, error) {
	if strings.ContainsAny(name, `/\`) || name == "" {
		return nil, ErrCatalogNotFound
	}
	filename := name + ".json"

	if m.dir != "" {
		data, err := os.ReadFile(filepath.Join(m.dir, filename))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
	}

	data, err := builtin.ReadFile("catalogs/" + filename)
	if err != nil {
		return nil, ErrCatalogNotFound
	}
	return data, nil
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: failed to parse: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every loadable catalog, built-in ones included. Invalid
// files are skipped.
func (m *Manager) List() ([]*CatalogInfo, error) {
	ids := make(map[string]bool)

	entries, err := builtin.ReadDir("catalogs")
	if err != nil {
		return nil, fmt.Errorf("failed to read built-in catalogs: %w", err)
	}
	for _, e := range entries {
		ids[strings.TrimSuffix(e.Name(), ".json")] = true
	}

	external := make(map[string]bool)
	if m.dir != "" {
		entries, err := os.ReadDir(m.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			id := strings.TrimSuffix(e.Name(), ".json")
			ids[id] = true
			external[id] = true
		}
	}

	var infos []*CatalogInfo
	for id := range ids {
		c, err := m.Load(id)
		if err != nil {
			continue
		}
		infos = append(infos, &CatalogInfo{
			ID:          id,
			Name:        c.Name,
			Description: c.Description,
			Builtin:     !external[id],
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Default returns the default catalog
func (m *Manager) Default() *Catalog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.def
}

// SetDefault sets the default catalog by name
func (m *Manager) SetDefault(name string) error {
	c, err := m.Load(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.def = c
	return nil
}

// Refresh drops cached catalogs so the next Load reads from disk again.
// The current default stays in use until SetDefault is called.
func (m *Manager) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs = make(map[string]*Catalog)
}
