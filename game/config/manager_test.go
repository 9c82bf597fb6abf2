package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func createValidCatalog(t *testing.T) *Catalog {
	t.Helper()
	data, err := builtin.ReadFile("catalogs/classic.json")
	if err != nil {
		t.Fatalf("Failed to read built-in catalog: %v", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("Failed to decode built-in catalog: %v", err)
	}
	return &c
}

func writeCatalogFile(t *testing.T, dir, name string, c *Catalog) {
	t.Helper()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal catalog: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("built-in only", func(t *testing.T) {
		manager, err := NewManager("")
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if manager.Default() == nil || manager.Default().Name != "Classic" {
			t.Errorf("Expected built-in classic default, got %+v", manager.Default())
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := NewManager(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("Expected error for missing directory")
		}
	})

	t.Run("directory overrides built-in", func(t *testing.T) {
		dir := t.TempDir()
		custom := createValidCatalog(t)
		custom.Name = "Custom Classic"
		writeCatalogFile(t, dir, DefaultCatalog, custom)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if manager.Default().Name != "Custom Classic" {
			t.Errorf("Expected directory catalog to win, got %q", manager.Default().Name)
		}
	})
}

func TestManager_Load(t *testing.T) {
	dir := t.TempDir()
	valid := createValidCatalog(t)
	valid.Name = "Pirate"
	valid.Messages.Welcome = "Ahoy {{.Name}}, ye be player {{.Player}}"
	writeCatalogFile(t, dir, "pirate", valid)

	missing := createValidCatalog(t)
	missing.Messages.Shot = ""
	writeCatalogFile(t, dir, "missing", missing)

	badTemplate := createValidCatalog(t)
	badTemplate.Messages.Turn = "{{.Player"
	writeCatalogFile(t, dir, "broken", badTemplate)

	badField := createValidCatalog(t)
	badField.Errors.NotYourTurn = "wait for {{.Holder}}"
	writeCatalogFile(t, dir, "badfield", badField)

	os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{not json"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	t.Run("valid catalog", func(t *testing.T) {
		c, err := manager.Load("pirate")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		line, err := c.Render(KeyWelcome, Data{Player: 2, Name: "jack"})
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if line != "Ahoy jack, ye be player 2" {
			t.Errorf("Unexpected line %q", line)
		}

		again, _ := manager.Load("pirate.json")
		if again != c {
			t.Error("Expected cached catalog on second load")
		}
	})

	for _, name := range []string{"missing", "broken", "badfield", "garbage"} {
		t.Run("invalid "+name, func(t *testing.T) {
			if _, err := manager.Load(name); !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("Expected ErrInvalidCatalog, got %v", err)
			}
		})
	}

	t.Run("not found", func(t *testing.T) {
		for _, name := range []string{"nonexistent", "../pirate", ""} {
			if _, err := manager.Load(name); !errors.Is(err, ErrCatalogNotFound) {
				t.Errorf("Load(%q): expected ErrCatalogNotFound, got %v", name, err)
			}
		}
	})
}

func TestManager_List(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "alpha", createValidCatalog(t))
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{}"), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	infos, err := manager.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	ids := make(map[string]*CatalogInfo)
	for _, info := range infos {
		ids[info.ID] = info
	}
	if len(ids) != 2 {
		t.Errorf("Expected alpha and classic, got %v", ids)
	}
	if info, ok := ids["classic"]; !ok || !info.Builtin {
		t.Error("Expected built-in classic in listing")
	}
	if info, ok := ids["alpha"]; !ok || info.Builtin {
		t.Error("Expected directory catalog alpha in listing")
	}
	if _, ok := ids["broken"]; ok {
		t.Error("Invalid catalogs must be skipped")
	}
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	custom := createValidCatalog(t)
	custom.Name = "First"
	writeCatalogFile(t, dir, "custom", custom)

	manager, _ := NewManager(dir)
	if err := manager.SetDefault("custom"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.Default().Name != "First" {
		t.Errorf("Expected First, got %q", manager.Default().Name)
	}
	if err := manager.SetDefault("nonexistent"); !errors.Is(err, ErrCatalogNotFound) {
		t.Errorf("Expected ErrCatalogNotFound, got %v", err)
	}

	custom.Name = "Second"
	writeCatalogFile(t, dir, "custom", custom)
	manager.Refresh()
	c, err := manager.Load("custom")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Name != "Second" {
		t.Errorf("Expected reloaded catalog, got %q", c.Name)
	}
}

func TestManager_ConcurrentLoad(t *testing.T) {
	manager, _ := NewManager("")

	var wg sync.WaitGroup
	results := make([]*Catalog, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := manager.Load(DefaultCatalog)
			if err != nil {
				t.Errorf("Load failed: %v", err)
			}
			results[i] = c
		}(i)
	}
	wg.Wait()

	for _, c := range results {
		if c != results[0] {
			t.Fatal("Concurrent loads returned different catalogs")
		}
	}
}

func TestCatalog_Render(t *testing.T) {
	manager, _ := NewManager("")
	c := manager.Default()

	line, err := c.Render(KeyShot, Data{Player: 1, Name: "alice", X: 1, Y: 1, Result: c.Result("sunk")})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if line != "=== PLAYER 1 (alice) FIRED AT 1 1: SUNK ===" {
		t.Errorf("Unexpected shot line %q", line)
	}

	line, _ = c.Render(KeyFleetIncomplete, Data{Placed: 2, Fleet: 4})
	if !strings.Contains(line, "(2/4)") {
		t.Errorf("Expected placed count in %q", line)
	}

	if _, err := c.Render(Key("nope"), Data{}); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("Expected ErrUnknownMessage, got %v", err)
	}

	for _, key := range Keys() {
		if _, err := c.Render(key, sampleData); err != nil {
			t.Errorf("Key %s failed to render: %v", key, err)
		}
	}
}

func TestCatalog_Words(t *testing.T) {
	manager, _ := NewManager("")
	c := manager.Default()

	if c.Result("miss") != "MISS" || c.Result("hit") != "HIT" || c.Result("sunk") != "SUNK" {
		t.Error("Unexpected result words")
	}
	if c.Ship("FRIGATE") != "FRIGATE" || c.Ship("UNKNOWN") != "UNKNOWN" {
		t.Error("Unexpected ship names")
	}
}

func TestShippedCatalogs(t *testing.T) {
	manager, err := NewManager(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	c, err := manager.Load("pt_br")
	if err != nil {
		t.Fatalf("pt_br failed to load: %v", err)
	}
	line, _ := c.Render(KeyWelcome, Data{Player: 1, Name: "ana"})
	if line != "=== BEM-VINDO, ana! VOCÊ É O PLAYER 1 ===" {
		t.Errorf("Unexpected pt_br welcome %q", line)
	}
	if c.Ship("FRIGATE") != "FRAGATA" {
		t.Errorf("Expected FRAGATA, got %q", c.Ship("FRIGATE"))
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"with http", func(s *Settings) { s.HTTPAddr = "localhost:9090" }, false},
		{"missing listen addr", func(s *Settings) { s.ListenAddr = "" }, true},
		{"bad listen addr", func(s *Settings) { s.ListenAddr = "not an address" }, true},
		{"zero matches", func(s *Settings) { s.MaxMatches = 0 }, true},
		{"tiny line limit", func(s *Settings) { s.MaxLineBytes = 8 }, true},
		{"no cleanup interval", func(s *Settings) { s.CleanupInterval = 0 }, true},
		{"ngrok without token", func(s *Settings) { s.Ngrok.Enabled = true }, true},
		{"ngrok with token", func(s *Settings) {
			s.Ngrok.Enabled = true
			s.Ngrok.AuthToken = "token"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			err := s.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
