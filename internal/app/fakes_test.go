package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"lectura-dashboard/internal/kv"
	"lectura-dashboard/internal/logger"
	"lectura-dashboard/internal/models"
	"lectura-dashboard/internal/repository"
	"lectura-dashboard/internal/services"
	"lectura-dashboard/internal/worker"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func testLectures() []models.Lecture {
	return []models.Lecture{
		{
			ID: "cs101", Title: "Algorithms", Instructor: "Dr. Alan Turing", Date: "Oct 12, 2023",
			Subject: "Computer Science", VideoURL: "https://example.com/a.mp4",
			Transcript: "[00:00] Welcome to sorting. [00:30] Quicksort picks a pivot. [01:10] Merge sort is stable.",
		},
		{
			ID: "hist202", Title: "Roman Republic", Instructor: "Prof. Mary Beard", Date: "Sep 28, 2023",
			Subject: "History", Transcript: "Caesar crossed the Rubicon.",
		},
		{
			ID: "phy301", Title: "Double Slit", Instructor: "Dr. Richard Feynman", Date: "Nov 05, 2023",
			Subject: "Physics", VideoURL: "https://example.com/c.mp4", Transcript: "Waves interfere.",
		},
	}
}

type fakeAssistant struct {
	mu          sync.Mutex
	summary     string
	summaryOK   bool
	questions   []models.QuizQuestion
	analysis    models.MediaAnalysis
	analysisErr error
	search      models.LibrarySearchResult
	quizCalls   int
}

func (f *fakeAssistant) Summarize(context.Context, string) (string, bool) {
	return f.summary, f.summaryOK
}

func (f *fakeAssistant) Answer(_ context.Context, transcript, question string, history []models.ChatMessage) string {
	return "answer to " + question
}

func (f *fakeAssistant) GenerateQuiz(context.Context, string, models.Difficulty, int) []models.QuizQuestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quizCalls++
	return f.questions
}

func (f *fakeAssistant) AnalyzeMedia(context.Context, []byte, string) (models.MediaAnalysis, error) {
	return f.analysis, f.analysisErr
}

func (f *fakeAssistant) SearchLibrary(context.Context, string, []models.LectureSummaryView) models.LibrarySearchResult {
	return f.search
}

type fakeJobs struct {
	mu   sync.Mutex
	jobs []worker.Job
	err  error
}

func (f *fakeJobs) Submit(job worker.Job) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	job.ID = uuid.New()
	f.jobs = append(f.jobs, job)
	return job.ID, nil
}

func (f *fakeJobs) ofKind(kind worker.Kind) []worker.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []worker.Job
	for _, j := range f.jobs {
		if j.Kind == kind {
			out = append(out, j)
		}
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.WSMessage
}

func (f *fakePublisher) Publish(_ context.Context, msg models.WSMessage) error {
	f.mu.Lock()
	f.events = append(f.events, msg)
	f.mu.Unlock()
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

func (f *fakePublisher) has(eventType string) bool {
	for _, t := range f.types() {
		if t == eventType {
			return true
		}
	}
	return false
}

// flakyStore fails writes for selected keys.
type flakyStore struct {
	*kv.Memory
	mu   sync.Mutex
	fail map[string]bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Memory: kv.NewMemory(), fail: map[string]bool{}}
}

func (s *flakyStore) setFailing(key string, failing bool) {
	s.mu.Lock()
	s.fail[key] = failing
	s.mu.Unlock()
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	failing := s.fail[key]
	s.mu.Unlock()
	if failing {
		return errors.New("disk full")
	}
	return s.Memory.Set(ctx, key, value)
}

type harness struct {
	ctrl      *Controller
	store     *flakyStore
	assistant *fakeAssistant
	jobs      *fakeJobs
	events    *fakePublisher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithStore(t, newFlakyStore())
}

func newHarnessWithStore(t *testing.T, store *flakyStore) *harness {
	t.Helper()
	h := &harness{
		store:     store,
		assistant: &fakeAssistant{summary: "A summary.", summaryOK: true},
		jobs:      &fakeJobs{},
		events:    &fakePublisher{},
	}

	ctrl, err := New(context.Background(), Deps{
		Repo:      repository.NewStateRepo(store, logger.Nop()),
		Assistant: h.assistant,
		Jobs:      h.jobs,
		Events:    h.events,
		Extractor: services.NewFileExtractService(),
		Seed:      testLectures(),
		Log:       logger.Nop(),
		Now:       func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	h.ctrl = ctrl
	return h
}

func sampleQuestions(n int) []models.QuizQuestion {
	qs := make([]models.QuizQuestion, n)
	for i := range qs {
		qs[i] = models.QuizQuestion{Question: "Q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1}
	}
	return qs
}
