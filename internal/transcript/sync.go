package transcript

import (
	"context"
	"fmt"
	"sync"

	"lectura-dashboard/internal/logger"
	"lectura-dashboard/internal/models"
)

// ActiveSegment returns the index of the segment covering currentTime.
// Segment i is active when currentTime >= start[i] and either i is the last
// segment or currentTime < start[i+1]. Nothing is active before the first start.
func ActiveSegment(segments []models.TranscriptSegment, currentTime float64) (int, bool) {
	for i := range segments {
		if currentTime < float64(segments[i].StartSeconds) {
			continue
		}
		if i == len(segments)-1 || currentTime < float64(segments[i+1].StartSeconds) {
			return i, true
		}
	}
	return -1, false
}

// Player is the video element on the client side. Seek and Play are requests;
// the player may ignore them.
type Player interface {
	Seek(ctx context.Context, lectureID string, seconds float64) error
	Play(ctx context.Context, lectureID string) error
}

// Tick is the synchroniser's answer to a playback-time update.
type Tick struct {
	Index   int  `json:"index"`
	Active  bool `json:"active"`
	Changed bool `json:"changed"`
}

// Synchronizer remembers the highlighted segment per lecture so ticks can report changes.
type Synchronizer struct {
	mu     sync.Mutex
	player Player
	log    *logger.Logger
	last   map[string]int
}

func NewSynchronizer(player Player, log *logger.Logger) *Synchronizer {
	return &Synchronizer{
		player: player,
		log:    log,
		last:   make(map[string]int),
	}
}

func (s *Synchronizer) Tick(lectureID string, segments []models.TranscriptSegment, currentTime float64) Tick {
	idx, active := ActiveSegment(segments, currentTime)

	s.mu.Lock()
	prev, seen := s.last[lectureID]
	if !seen {
		prev = -1
	}
	s.last[lectureID] = idx
	s.mu.Unlock()

	return Tick{Index: idx, Active: active, Changed: idx != prev}
}

// SeekToSegment asks the player to jump to a segment start and resume playback.
func (s *Synchronizer) SeekToSegment(ctx context.Context, lectureID string, segments []models.TranscriptSegment, index int) (models.SeekRequest, error) {
	if index < 0 || index >= len(segments) {
		return models.SeekRequest{}, models.NewValidationError("segment", fmt.Sprintf("segment %d out of range", index))
	}
	return s.Seek(ctx, lectureID, float64(segments[index].StartSeconds)), nil
}

// Seek sends a seek and a play request. A player failure is logged and
// otherwise ignored.
func (s *Synchronizer) Seek(ctx context.Context, lectureID string, seconds float64) models.SeekRequest {
	if seconds < 0 {
		seconds = 0
	}
	req := models.SeekRequest{LectureID: lectureID, Seconds: seconds, Resume: true}
	if s.player == nil {
		return req
	}

	if err := s.player.Seek(ctx, lectureID, seconds); err != nil {
		s.log.Warn("player did not accept seek", "lecture_id", lectureID, "seconds", seconds, "error", err)
		return req
	}
	if err := s.player.Play(ctx, lectureID); err != nil {
		s.log.Warn("player did not resume", "lecture_id", lectureID, "error", err)
	}
	return req
}
