package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// loadClassic returns the built-in catalog as a generic document
func loadClassic(t *testing.T) map[string]any {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "game", "config", "catalogs", "classic.json"))
	if err != nil {
		t.Skip("Skipping test - built-in catalog not found")
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Failed to parse classic catalog: %v", err)
	}
	return doc
}

func writeCatalog(t *testing.T, doc any) string {
	t.Helper()

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to encode catalog: %v", err)
	}
	path := filepath.Join(t.TempDir(), "test_catalog.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	return path
}

func section(doc map[string]any, name string) map[string]any {
	return doc[name].(map[string]any)
}

func hasError(result ValidationResult, substr string) bool {
	for _, e := range result.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidateCatalog_Valid(t *testing.T) {
	path := writeCatalog(t, loadClassic(t))

	result := validateCatalog(path)
	if !result.Valid {
		t.Errorf("Expected valid catalog, but got errors: %v", result.Errors)
	}
	if result.File != "test_catalog.json" {
		t.Errorf("Expected file name test_catalog.json, got %s", result.File)
	}
	for _, info := range result.Errors {
		if !strings.HasPrefix(info, "✓") {
			t.Errorf("Expected only informational messages, got %q", info)
		}
	}
}

func TestValidateCatalog_ShippedCatalogs(t *testing.T) {
	files, _ := filepath.Glob(filepath.Join("..", "configs", "*.json"))
	if len(files) == 0 {
		t.Skip("Skipping test - configs directory not found")
	}
	for _, file := range files {
		if result := validateCatalog(file); !result.Valid {
			t.Errorf("%s: %v", result.File, result.Errors)
		}
	}
}

func TestValidateCatalog_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"name": "test", invalid json}`), 0o644); err != nil {
		t.Fatal(err)
	}

	result := validateCatalog(path)
	if result.Valid {
		t.Error("Expected invalid result for malformed JSON")
	}
	if !hasError(result, "Invalid JSON") {
		t.Errorf("Expected JSON error, got %v", result.Errors)
	}
}

func TestValidateCatalog_MissingFile(t *testing.T) {
	result := validateCatalog("/non/existent/catalog.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasError(result, "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateCatalog_Problems(t *testing.T) {
	tests := []struct {
		name   string
		modify func(doc map[string]any)
		want   string
	}{
		{
			name:   "missing message",
			modify: func(doc map[string]any) { delete(section(doc, "messages"), "victory") },
			want:   "Victory",
		},
		{
			name:   "bad template",
			modify: func(doc map[string]any) { section(doc, "messages")["turn"] = "{{.Player" },
			want:   "turn",
		},
		{
			name:   "unknown field",
			modify: func(doc map[string]any) { section(doc, "messages")["game_over"] = "{{.Score}}" },
			want:   "game_over",
		},
		{
			name:   "unknown key",
			modify: func(doc map[string]any) { section(doc, "errors")["too_late"] = "ERROR" },
			want:   "Unknown errors keys: too_late",
		},
		{
			name:   "unknown section",
			modify: func(doc map[string]any) { doc["grid"] = []string{"~~~"} },
			want:   "Unknown sections: grid",
		},
		{
			name:   "shot without coordinates",
			modify: func(doc map[string]any) { section(doc, "messages")["shot"] = "{{.Result}}" },
			want:   `"shot" should use {{.X}}`,
		},
		{
			name:   "duplicate results",
			modify: func(doc map[string]any) { section(doc, "results")["sunk"] = "hit" },
			want:   "Duplicate shot results",
		},
		{
			name:   "duplicate ships",
			modify: func(doc map[string]any) { section(doc, "ships")["frigate"] = "DESTROYER" },
			want:   "Duplicate ship names",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := loadClassic(t)
			tt.modify(doc)

			result := validateCatalog(writeCatalog(t, doc))
			if result.Valid {
				t.Fatal("Expected invalid result")
			}
			if !hasError(result, tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestCheckDistinct(t *testing.T) {
	var result ValidationResult
	result.Valid = true

	checkDistinct("words", []string{"a", "b", "c"}, &result)
	if !result.Valid {
		t.Errorf("Expected distinct words to pass: %v", result.Errors)
	}

	checkDistinct("words", []string{"a", " A "}, &result)
	if result.Valid {
		t.Error("Expected case-insensitive duplicate to fail")
	}
}

func TestValidateCommand(t *testing.T) {
	good := filepath.Dir(writeCatalog(t, loadClassic(t)))

	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, "broken.json"), []byte(`{`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		want    string
	}{
		{"valid dir as argument", []string{"validate", good}, false, "All catalogs are valid!"},
		{"valid dir as flag", []string{"validate", "--dir", good}, false, "test_catalog.json"},
		{"invalid catalog", []string{"validate", bad}, true, "Some catalogs have errors"},
		{"empty dir", []string{"validate", t.TempDir()}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			app := newApp()
			app.Writer = &out

			err := app.Run(context.Background(), tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.want, out.String())
			}
		})
	}
}
