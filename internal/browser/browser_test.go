package browser

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestPrint(t *testing.T) {
	root := filepath.Join(t.TempDir(), "csv_logs")
	os.MkdirAll(filepath.Join(root, "old", "2025"), 0755)
	os.WriteFile(filepath.Join(root, "b.csv"), nil, 0644)
	os.WriteFile(filepath.Join(root, "a.csv"), nil, 0644)
	os.WriteFile(filepath.Join(root, "old", "x.csv"), nil, 0644)

	var buf bytes.Buffer
	if err := Print(&buf, root); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	want := root + "/\n" +
		"├── old/\n" +
		"│   ├── 2025/\n" +
		"│   └── x.csv\n" +
		"├── a.csv\n" +
		"└── b.csv\n"
	if buf.String() != want {
		t.Errorf("Unexpected tree:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrint_EmptyDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "csv_logs")
	os.MkdirAll(root, 0755)

	var buf bytes.Buffer
	if err := Print(&buf, root); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if buf.String() != root+"/\n" {
		t.Errorf("Expected only the root line, got %q", buf.String())
	}
}

func TestPrint_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "f.csv")
	os.WriteFile(file, nil, 0644)
	if err := Print(&buf, file); err == nil {
		t.Error("Expected error for a regular file")
	}
}
