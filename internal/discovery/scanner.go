package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SuiteSuffixes are the file name endings recognized as suite files
var SuiteSuffixes = []string{".suite.yaml", ".suite.yml"}

// Scanner scans for suite files in a directory
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all suite files under root, in lexical order
func (s *Scanner) Scan(root string) ([]string, error) {
	var suites []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("suite path does not exist: %s", root)
	}
	if !info.IsDir() {
		if IsSuiteFile(root) {
			return []string{root}, nil
		}
		return nil, fmt.Errorf("suite path is neither a directory nor a suite file: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if IsSuiteFile(path) {
			suites = append(suites, path)
		}
		return nil
	})

	return suites, err
}

// IsSuiteFile reports whether path names a suite file
func IsSuiteFile(path string) bool {
	name := filepath.Base(path)
	for _, suffix := range SuiteSuffixes {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return true
		}
	}
	return false
}
