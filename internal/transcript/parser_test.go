package transcript

import (
	"reflect"
	"testing"

	"lectura-dashboard/internal/models"
)

func TestParse_SegmentsAndTrim(t *testing.T) {
	segments, ok := Parse("[00:00]a [00:10]b [00:25]c")
	if !ok {
		t.Fatalf("expected structured transcript")
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}

	wantStarts := []int{0, 10, 25}
	wantTexts := []string{"a", "b", "c"}
	for i, s := range segments {
		if s.StartSeconds != wantStarts[i] {
			t.Errorf("segment %d: expected start %d, got %d", i, wantStarts[i], s.StartSeconds)
		}
		if s.Text != wantTexts[i] {
			t.Errorf("segment %d: expected text %q, got %q", i, wantTexts[i], s.Text)
		}
	}
	if segments[1].DisplayTime != "00:10" {
		t.Errorf("expected display time 00:10, got %q", segments[1].DisplayTime)
	}
}

func TestParse_NoMarkers(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain text", "plain text, no timestamps"},
		{"empty", ""},
		{"malformed markers", "[1:20] one digit minutes [ab:cd] letters [12:345] long seconds"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			segments, ok := Parse(tc.text)
			if ok || segments != nil {
				t.Fatalf("expected unstructured result, got ok=%v segments=%v", ok, segments)
			}
		})
	}
}

func TestParse_DropsEmptySegmentsAndPreamble(t *testing.T) {
	segments, ok := Parse("intro before markers [00:05]   \n [00:07] first\n[01:02]second  ")
	if !ok {
		t.Fatalf("expected structured transcript")
	}

	want := []models.TranscriptSegment{
		{StartSeconds: 7, DisplayTime: "00:07", Text: "first"},
		{StartSeconds: 62, DisplayTime: "01:02", Text: "second"},
	}
	if !reflect.DeepEqual(segments, want) {
		t.Fatalf("unexpected segments: %+v", segments)
	}
}

func TestParse_ThreeDigitMinutes(t *testing.T) {
	segments, ok := Parse("[120:30] late in a long lecture")
	if !ok || len(segments) != 1 {
		t.Fatalf("expected one segment, got ok=%v len=%d", ok, len(segments))
	}
	if segments[0].StartSeconds != 120*60+30 {
		t.Fatalf("expected %d seconds, got %d", 120*60+30, segments[0].StartSeconds)
	}
}

func TestParse_KeepsInputOrder(t *testing.T) {
	segments, _ := Parse("[00:30] later [00:10] earlier")
	if segments[0].StartSeconds != 30 || segments[1].StartSeconds != 10 {
		t.Fatalf("expected input order to be preserved, got %+v", segments)
	}
}

func TestParse_Deterministic(t *testing.T) {
	text := "[00:00] Welcome. [00:12] Big O notation. [01:40] Quicksort."
	first, ok1 := Parse(text)
	second, ok2 := Parse(text)
	if ok1 != ok2 || !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results for identical input")
	}
}

func TestParse_OnlyEmptyMarkersIsStructured(t *testing.T) {
	segments, ok := Parse("[00:00]   [00:10]")
	if !ok {
		t.Fatalf("markers present, expected structured result")
	}
	if len(segments) != 0 {
		t.Fatalf("expected no segments, got %d", len(segments))
	}
}

func TestFormat_RoundTripsThroughParse(t *testing.T) {
	text := Format([]Cue{
		{StartSeconds: 0, Text: "Welcome"},
		{StartSeconds: 5, Text: "   "},
		{StartSeconds: 75, Text: "Second point"},
		{StartSeconds: 6001, Text: "Past the hundred minute mark"},
	})

	segments, ok := Parse(text)
	if !ok {
		t.Fatalf("formatted transcript should parse, got %q", text)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d from %q", len(segments), text)
	}
	if segments[1].DisplayTime != "01:15" || segments[1].StartSeconds != 75 {
		t.Errorf("unexpected second segment %+v", segments[1])
	}
	if segments[2].StartSeconds != 6001 {
		t.Errorf("expected 6001 seconds, got %d", segments[2].StartSeconds)
	}
}

func TestCache_RecomputesOnTextChange(t *testing.T) {
	c := NewCache()

	first, ok := c.Segments("cs101", "[00:00] one")
	if !ok || len(first) != 1 {
		t.Fatalf("expected one segment")
	}

	again, _ := c.Segments("cs101", "[00:00] one")
	if &again[0] != &first[0] {
		t.Errorf("expected memoised slice for unchanged text")
	}

	changed, _ := c.Segments("cs101", "[00:00] one [00:05] two")
	if len(changed) != 2 {
		t.Fatalf("expected recomputation after text change, got %d segments", len(changed))
	}

	if _, ok := c.Segments("cs101", "now plain"); ok {
		t.Fatalf("expected unstructured result after text lost its markers")
	}
}
