package transcript

import (
	"context"
	"errors"
	"testing"

	"lectura-dashboard/internal/logger"
	"lectura-dashboard/internal/models"
)

func testSegments() []models.TranscriptSegment {
	segments, _ := Parse("[00:00] a [00:10] b [00:25] c")
	return segments
}

func TestActiveSegment_Boundaries(t *testing.T) {
	segments := testSegments()

	tests := []struct {
		name   string
		time   float64
		want   int
		active bool
	}{
		{"start of first", 0, 0, true},
		{"just before second", 9.9, 0, true},
		{"exactly second", 10.0, 1, true},
		{"inside third", 30, 2, true},
		{"last holds through end", 100, 2, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, active := ActiveSegment(segments, tc.time)
			if got != tc.want || active != tc.active {
				t.Fatalf("expected (%d,%v), got (%d,%v)", tc.want, tc.active, got, active)
			}
		})
	}
}

func TestActiveSegment_BeforeFirstStart(t *testing.T) {
	segments, _ := Parse("[00:05] late start")
	if _, active := ActiveSegment(segments, 4.9); active {
		t.Fatalf("expected no active segment before first start")
	}
	if _, active := ActiveSegment(nil, 3); active {
		t.Fatalf("expected no active segment for empty list")
	}
}

type fakePlayer struct {
	seekErr error
	seeks   []float64
	plays   int
}

func (p *fakePlayer) Seek(ctx context.Context, lectureID string, seconds float64) error {
	if p.seekErr != nil {
		return p.seekErr
	}
	p.seeks = append(p.seeks, seconds)
	return nil
}

func (p *fakePlayer) Play(ctx context.Context, lectureID string) error {
	p.plays++
	return nil
}

func TestSynchronizer_TickReportsChanges(t *testing.T) {
	s := NewSynchronizer(nil, logger.Nop())
	segments := testSegments()

	first := s.Tick("cs101", segments, 1)
	if !first.Changed || first.Index != 0 {
		t.Fatalf("expected first tick to activate segment 0, got %+v", first)
	}

	same := s.Tick("cs101", segments, 2.5)
	if same.Changed {
		t.Fatalf("expected no change inside the same segment")
	}

	next := s.Tick("cs101", segments, 10.25)
	if !next.Changed || next.Index != 1 {
		t.Fatalf("expected change to segment 1, got %+v", next)
	}
}

func TestSynchronizer_SeekToSegment(t *testing.T) {
	player := &fakePlayer{}
	s := NewSynchronizer(player, logger.Nop())

	req, err := s.SeekToSegment(context.Background(), "cs101", testSegments(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Seconds != 25 || !req.Resume {
		t.Fatalf("unexpected seek request %+v", req)
	}
	if len(player.seeks) != 1 || player.seeks[0] != 25 || player.plays != 1 {
		t.Fatalf("expected one seek to 25 and one play, got seeks=%v plays=%d", player.seeks, player.plays)
	}

	if _, err := s.SeekToSegment(context.Background(), "cs101", testSegments(), 3); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestSynchronizer_PlayerFailureIsNoOp(t *testing.T) {
	player := &fakePlayer{seekErr: errors.New("no video element")}
	s := NewSynchronizer(player, logger.Nop())

	req := s.Seek(context.Background(), "cs101", 12)
	if req.Seconds != 12 {
		t.Fatalf("expected request to be returned despite player failure")
	}
	if player.plays != 0 {
		t.Fatalf("play should not be requested when seek was refused")
	}
}
