package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeWriteFile_CreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out", "report.md")
	if err := SafeWriteFile(p, []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "hello" {
		t.Fatalf("unexpected content %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"rows": 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), "\n  \"rows\": 3") {
		t.Fatalf("expected indented JSON, got %s", b)
	}
}

func TestReportName(t *testing.T) {
	if got := ReportName("data/penjualan.xlsx", ".md"); got != "penjualan.report.md" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := ReportName("q1.csv", ".json"); got != "q1.report.json" {
		t.Fatalf("unexpected name %q", got)
	}
}
