package services

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"lectura-dashboard/internal/transcript"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractText_TXTKeepsMarkers(t *testing.T) {
	svc := NewFileExtractService()
	text, err := svc.ExtractText("notes.TXT", []byte("  [00:00] Intro  \r\n\r\n\r\n[00:15]   Body\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "[00:00] Intro\n\n[00:15]   Body" {
		t.Fatalf("unexpected normalised text %q", text)
	}

	segs, ok := transcript.Parse(text)
	if !ok || len(segs) != 2 || segs[1].StartSeconds != 15 {
		t.Fatalf("expected two parsed segments, got %+v ok=%v", segs, ok)
	}
}

func TestExtractText_DOCX(t *testing.T) {
	doc := `<w:document><w:body><w:p><w:r><w:t>[00:05] Cells &amp; tissues</w:t></w:r></w:p><w:p><w:r><w:t>[01:00] Organs</w:t></w:r></w:p></w:body></w:document>`

	text, err := NewFileExtractService().ExtractText("lecture.docx", buildDOCX(t, doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "[00:05] Cells & tissues\n[01:00] Organs" {
		t.Fatalf("unexpected docx text %q", text)
	}
}

func TestExtractText_Errors(t *testing.T) {
	svc := NewFileExtractService()
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"unsupported", "slides.pptx", []byte("x")},
		{"empty txt", "empty.txt", []byte("   \n  ")},
		{"broken docx", "broken.docx", []byte("not a zip")},
		{"docx without body", "nobody.docx", buildDOCX(t, "")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.ExtractText(tc.filename, tc.data); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSupportedTranscriptExt(t *testing.T) {
	for name, want := range map[string]bool{"a.txt": true, "b.PDF": true, "c.docx": true, "d.mp4": false, "noext": false} {
		if got := SupportedTranscriptExt(name); got != want {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "Unknown"},
		{95 * time.Second, "1:35"},
		{10 * time.Minute, "10:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
