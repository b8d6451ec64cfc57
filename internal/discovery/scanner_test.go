package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()

	// Create suite files
	files := []string{
		"suites/api/users.suite.yaml",
		"suites/api/orders.suite.yml",
		"suites/cli.suite.yaml",
		"vendor/lib/vendored.suite.yaml",
		"node_modules/pkg/x.suite.yaml",
		".hidden/secret.suite.yaml",
		"suites/notes.yaml",
		"suites/.suite.yaml",
	}
	for _, file := range files {
		fullPath := filepath.Join(tmpDir, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("class: X\n"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}

	scanner := NewScanner([]string{"vendor", "node_modules"})

	t.Run("scans suite files correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{
			filepath.Join(tmpDir, "suites/api/orders.suite.yml"),
			filepath.Join(tmpDir, "suites/api/users.suite.yaml"),
			filepath.Join(tmpDir, "suites/cli.suite.yaml"),
		}
		if len(results) != len(expected) {
			t.Fatalf("expected %d suite files, got %d: %v", len(expected), len(results), results)
		}
		for i := range expected {
			if results[i] != expected[i] {
				t.Errorf("result %d: expected %s, got %s", i, expected[i], results[i])
			}
		}
	})

	t.Run("accepts a single suite file", func(t *testing.T) {
		path := filepath.Join(tmpDir, "suites/cli.suite.yaml")
		results, err := scanner.Scan(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 || results[0] != path {
			t.Errorf("expected [%s], got %v", path, results)
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for a file that is not a suite", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "suites/notes.yaml"))
		if err == nil {
			t.Error("expected error for non-suite file path")
		}
	})
}
