package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectura-dashboard/internal/transcript"
)

func TestLoad_EmbeddedSeed(t *testing.T) {
	lectures, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lectures) != 4 {
		t.Fatalf("expected 4 seed lectures, got %d", len(lectures))
	}
	if lectures[0].ID != "cs101-algo" || lectures[0].Instructor != "Dr. Alan Turing" {
		t.Fatalf("unexpected first lecture %+v", lectures[0])
	}

	if _, ok := transcript.Parse(lectures[0].Transcript); !ok {
		t.Errorf("expected timestamped seed transcript")
	}
	if _, ok := transcript.Parse(lectures[3].Transcript); ok {
		t.Errorf("expected plain seed transcript for %s", lectures[3].ID)
	}
}

func TestParse_RejectsBadEntries(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing id", "lectures:\n  - title: x\n", "missing id"},
		{"duplicate", "lectures:\n  - id: a\n  - id: a\n", "duplicate id"},
		{"malformed", "lectures: [", "failed to parse"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "lectures:\n  - id: bio100\n    title: Cells\n    transcript: \"[00:05] Cells are small.\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	lectures, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lectures) != 1 || lectures[0].ID != "bio100" || lectures[0].HasVideo() {
		t.Fatalf("unexpected lectures %+v", lectures)
	}
}
