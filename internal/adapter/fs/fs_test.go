package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestWalkerIncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py":                  "",
		"pkg/b.py":              "",
		"pkg/c.go":              "",
		"node_modules/lib/d.py": "",
		"pkg/__pycache__/e.py":  "",
	})

	w := NewWalker(IncludesForExtensions([]string{".py"}), DefaultExcludes)
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	var rels []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		rels = append(rels, filepath.ToSlash(rel))
	}
	if len(rels) != 2 || rels[0] != "a.py" || rels[1] != "pkg/b.py" {
		t.Errorf("expected [a.py pkg/b.py], got %v", rels)
	}
}

func TestWalkerDefaultIncludesEverything(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"x.txt": "", "y/z.rs": ""})

	files, err := NewWalker(nil, nil).Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 files, got %d", len(files))
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.go")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(path, "new"); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "new" {
		t.Errorf("expected 'new', got '%s'", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600 to be kept, got %v", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected temp file to be gone, found %d entries", len(entries))
	}
}
