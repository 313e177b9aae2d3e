// Package app owns the learner state. Every command runs under one mutex;
// slow AI calls run on the worker pool and report back through the
// controller.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lectura-dashboard/internal/logger"
	"lectura-dashboard/internal/models"
	"lectura-dashboard/internal/quiz"
	"lectura-dashboard/internal/recents"
	"lectura-dashboard/internal/repository"
	"lectura-dashboard/internal/services"
	"lectura-dashboard/internal/transcript"
	"lectura-dashboard/internal/worker"
)

var (
	ErrLectureNotFound   = errors.New("lecture not found")
	ErrStatsNotPersisted = errors.New("stats not persisted")
)

// Publisher pushes events to the UI.
type Publisher interface {
	Publish(ctx context.Context, msg models.WSMessage) error
}

// Dispatcher queues background jobs.
type Dispatcher interface {
	Submit(job worker.Job) (uuid.UUID, error)
}

// VideoSource resolves remote videos for import.
type VideoSource interface {
	Fetch(ctx context.Context, videoURL string) (*services.YouTubeVideo, error)
	DownloadAudio(ctx context.Context, videoURL string) ([]byte, string, error)
}

// TextExtractor reads transcript documents.
type TextExtractor interface {
	ExtractText(filename string, data []byte) (string, error)
}

type Deps struct {
	Repo      *repository.StateRepo
	Assistant services.Assistant
	Jobs      Dispatcher
	Events    Publisher
	Player    transcript.Player
	Videos    VideoSource
	Extractor TextExtractor
	Media     *MediaStore
	// Seed is used when no lecture collection has been persisted yet.
	Seed []models.Lecture
	Log  *logger.Logger
	Now  func() time.Time
}

type Controller struct {
	mu sync.Mutex

	repo      *repository.StateRepo
	assistant services.Assistant
	jobs      Dispatcher
	events    Publisher
	videos    VideoSource
	extractor TextExtractor
	media     *MediaStore
	log       *logger.Logger
	now       func() time.Time

	lectures   []models.Lecture
	recentIDs  []string
	stats      models.UserStats
	statsDirty bool
	theme      models.Theme
	quiz       *quiz.Engine

	segments       *transcript.Cache
	sync           *transcript.Synchronizer
	videoFailed    map[string]bool
	summaryPending map[string]bool
}

// LectureDetail is a lecture with its parsed transcript.
type LectureDetail struct {
	Lecture    models.Lecture             `json:"lecture"`
	Segments   []models.TranscriptSegment `json:"segments"`
	Structured bool                       `json:"structured"`
	// FormatVersion names the segment format; zero for unstructured text.
	FormatVersion int  `json:"format_version"`
	Playable      bool `json:"playable"`
	// SummaryPending is set while a background summary is being generated.
	SummaryPending bool `json:"summary_pending"`
}

// New loads persisted state, seeding the lecture collection on first start.
func New(ctx context.Context, deps Deps) (*Controller, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}

	c := &Controller{
		repo:           deps.Repo,
		assistant:      deps.Assistant,
		jobs:           deps.Jobs,
		events:         deps.Events,
		videos:         deps.Videos,
		extractor:      deps.Extractor,
		media:          deps.Media,
		log:            deps.Log,
		now:            deps.Now,
		segments:       transcript.NewCache(),
		sync:           transcript.NewSynchronizer(deps.Player, deps.Log),
		videoFailed:    make(map[string]bool),
		summaryPending: make(map[string]bool),
	}

	lectures, found, err := c.repo.LoadLectures(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lectures: %w", err)
	}
	if !found {
		lectures = append([]models.Lecture(nil), deps.Seed...)
		if err := c.repo.SaveLectures(ctx, lectures); err != nil {
			return nil, fmt.Errorf("failed to seed lectures: %w", err)
		}
		c.log.Info("seeded lecture catalog", "count", len(lectures))
	}
	c.lectures = lectures

	if c.recentIDs, err = c.repo.LoadRecents(ctx); err != nil {
		return nil, fmt.Errorf("failed to load recents: %w", err)
	}
	if c.stats, err = c.repo.LoadStats(ctx); err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	if c.theme, err = c.repo.LoadTheme(ctx); err != nil {
		return nil, fmt.Errorf("failed to load theme: %w", err)
	}
	defaults, err := c.repo.LoadQuizDefaults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz defaults: %w", err)
	}
	c.quiz = quiz.NewEngine(defaults)

	return c, nil
}

// Register binds the controller's background jobs to a worker pool.
func (c *Controller) Register(p *worker.Pool) {
	p.Register(worker.KindQuizGeneration, c.RunQuizGeneration)
	p.Register(worker.KindSummaryGeneration, c.RunSummaryGeneration)
}

// publish sends events outside the controller lock. Failures are logged.
func (c *Controller) publish(ctx context.Context, events []models.WSMessage) {
	if c.events == nil {
		return
	}
	for _, ev := range events {
		if err := c.events.Publish(ctx, ev); err != nil {
			c.log.Warn("failed to publish event", "type", ev.Type, "error", err)
		}
	}
}

// findLecture returns the index of id. Caller holds c.mu.
func (c *Controller) findLecture(id string) (int, error) {
	for i := range c.lectures {
		if c.lectures[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrLectureNotFound, id)
}

// lecture returns a copy of the lecture. Caller holds c.mu.
func (c *Controller) lecture(id string) (models.Lecture, error) {
	i, err := c.findLecture(id)
	if err != nil {
		return models.Lecture{}, err
	}
	return c.lectures[i], nil
}

func (c *Controller) snapshotLectures() []models.Lecture {
	return append([]models.Lecture(nil), c.lectures...)
}

// detail builds the lecture view. Caller holds c.mu.
func (c *Controller) detail(l models.Lecture) LectureDetail {
	segs, ok := c.segments.Segments(l.ID, l.Transcript)
	if segs == nil {
		segs = []models.TranscriptSegment{}
	}
	d := LectureDetail{
		Lecture:        l,
		Segments:       segs,
		Structured:     ok,
		Playable:       l.HasVideo() && !c.videoFailed[l.ID],
		SummaryPending: c.summaryPending[l.ID],
	}
	if ok {
		d.FormatVersion = transcript.FormatVersion
	}
	return d
}

// Lecture returns one lecture with its parsed transcript.
func (c *Controller) Lecture(id string) (LectureDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := c.lecture(id)
	if err != nil {
		return LectureDetail{}, err
	}
	return c.detail(l), nil
}

// View records the lecture as most recently viewed and starts a background
// summary when the lecture needs one.
func (c *Controller) View(ctx context.Context, id string) (LectureDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := c.lecture(id)
	if err != nil {
		return LectureDetail{}, err
	}

	c.recentIDs = recents.RecordView(c.recentIDs, id)
	if err := c.repo.SaveRecents(ctx, c.recentIDs); err != nil {
		c.log.Warn("failed to persist recents", "error", err)
	}

	c.maybeQueueSummary(l)
	return c.detail(l), nil
}

// ReportVideoError marks the lecture as having no playable source for this
// session.
func (c *Controller) ReportVideoError(id string) (LectureDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := c.lecture(id)
	if err != nil {
		return LectureDetail{}, err
	}
	if !c.videoFailed[id] {
		c.log.Info("video source failed", "lecture", id)
	}
	c.videoFailed[id] = true

	c.maybeQueueSummary(l)
	return c.detail(l), nil
}

// needsSummary applies the lazy-summary rule. Caller holds c.mu.
func (c *Controller) needsSummary(l models.Lecture) bool {
	if l.Summary != "" || strings.TrimSpace(l.Transcript) == "" || c.summaryPending[l.ID] {
		return false
	}
	return !l.HasVideo() || c.videoFailed[l.ID]
}

// maybeQueueSummary submits a summary job if needed. Caller holds c.mu.
func (c *Controller) maybeQueueSummary(l models.Lecture) {
	if c.jobs == nil || !c.needsSummary(l) {
		return
	}
	if _, err := c.jobs.Submit(worker.Job{Kind: worker.KindSummaryGeneration, LectureID: l.ID}); err != nil {
		c.log.Warn("failed to queue summary", "lecture", l.ID, "error", err)
		return
	}
	c.summaryPending[l.ID] = true
}

// RunSummaryGeneration is the worker handler for lazy summaries.
func (c *Controller) RunSummaryGeneration(ctx context.Context, job worker.Job) error {
	c.mu.Lock()
	l, err := c.lecture(job.LectureID)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	summary, ok := c.assistant.Summarize(ctx, l.Transcript)

	var events []models.WSMessage
	defer func() { c.publish(ctx, events) }()

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.summaryPending, job.LectureID)

	if !ok {
		c.log.Warn("summary unavailable", "lecture", job.LectureID)
		return nil
	}
	if _, err := c.storeSummary(ctx, job.LectureID, summary); err != nil {
		return err
	}
	events = append(events, models.WSMessage{
		Type:    models.EventSummaryReady,
		Payload: models.SummaryEvent{LectureID: job.LectureID, Summary: summary},
	})
	return nil
}

// Summarize regenerates a lecture summary synchronously. A fallback text is
// returned but never stored.
func (c *Controller) Summarize(ctx context.Context, id string) (string, error) {
	c.mu.Lock()
	l, err := c.lecture(id)
	c.mu.Unlock()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(l.Transcript) == "" {
		return "", models.NewValidationError("transcript", "lecture has no transcript")
	}

	summary, ok := c.assistant.Summarize(ctx, l.Transcript)
	if !ok {
		return summary, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.storeSummary(ctx, id, summary)
}

// storeSummary writes the summary through to storage. Caller holds c.mu.
func (c *Controller) storeSummary(ctx context.Context, id, summary string) (string, error) {
	i, err := c.findLecture(id)
	if err != nil {
		return "", err
	}
	next := make([]models.Lecture, len(c.lectures))
	copy(next, c.lectures)
	next[i].Summary = summary
	if err := c.repo.SaveLectures(ctx, next); err != nil {
		return "", fmt.Errorf("failed to persist summary: %w", err)
	}
	c.lectures = next
	return summary, nil
}

// Chat answers a question about one lecture. History is held by the client.
func (c *Controller) Chat(ctx context.Context, id string, req models.ChatRequest) (string, error) {
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return "", models.NewValidationError("message", "message is required")
	}
	for _, m := range req.History {
		if m.Role != models.ChatRoleUser && m.Role != models.ChatRoleAI {
			return "", models.NewValidationError("history", "role must be user or ai")
		}
	}

	c.mu.Lock()
	l, err := c.lecture(id)
	c.mu.Unlock()
	if err != nil {
		return "", err
	}

	return c.assistant.Answer(ctx, l.Transcript, question, req.History), nil
}

// PlaybackTick maps the playback position to the active segment.
func (c *Controller) PlaybackTick(id string, currentTime float64) (transcript.Tick, error) {
	c.mu.Lock()
	l, err := c.lecture(id)
	c.mu.Unlock()
	if err != nil {
		return transcript.Tick{}, err
	}

	segs, _ := c.segments.Segments(l.ID, l.Transcript)
	return c.sync.Tick(id, segs, currentTime), nil
}

// SeekSegment asks the player to jump to a segment start.
func (c *Controller) SeekSegment(ctx context.Context, id string, index int) (models.SeekRequest, error) {
	c.mu.Lock()
	l, err := c.lecture(id)
	c.mu.Unlock()
	if err != nil {
		return models.SeekRequest{}, err
	}

	segs, _ := c.segments.Segments(l.ID, l.Transcript)
	return c.sync.SeekToSegment(ctx, id, segs, index)
}

// SeekSeconds asks the player to jump to an absolute position.
func (c *Controller) SeekSeconds(ctx context.Context, id string, seconds float64) (models.SeekRequest, error) {
	c.mu.Lock()
	_, err := c.lecture(id)
	c.mu.Unlock()
	if err != nil {
		return models.SeekRequest{}, err
	}
	return c.sync.Seek(ctx, id, seconds), nil
}
