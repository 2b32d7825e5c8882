package collections_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// leafPackages must only import the standard library.
var leafPackages = []string{".", "../tree", "../history"}

func TestLeafPackagesImportStdlibOnly(t *testing.T) {
	fset := token.NewFileSet()

	for _, dir := range leafPackages {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
				continue
			}
			if strings.HasSuffix(entry.Name(), "_test.go") {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
			if err != nil {
				t.Errorf("Failed to parse %s: %v", path, err)
				continue
			}

			for _, imp := range f.Imports {
				importPath := strings.Trim(imp.Path.Value, `"`)
				// stdlib import paths have no dot in the first element
				if strings.Contains(strings.SplitN(importPath, "/", 2)[0], ".") {
					t.Errorf("%s imports non-stdlib package: %s", path, importPath)
				}
			}
		}
	}
}
