package app

import (
	"context"
	"errors"
	"fmt"

	"lectura-dashboard/internal/models"
	"lectura-dashboard/internal/quiz"
	"lectura-dashboard/internal/stats"
	"lectura-dashboard/internal/worker"
)

// QuizResult is the reply to a quiz command.
type QuizResult struct {
	Quiz quiz.Snapshot `json:"quiz"`
	// Unlocked lists achievements earned by the command, newest first.
	Unlocked []models.Achievement `json:"unlocked,omitempty"`
	// StatsSaved is false when a completion could not be written; the next
	// start retries the write.
	StatsSaved bool `json:"stats_saved"`
}

func (c *Controller) QuizSnapshot() quiz.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quiz.Snapshot()
}

// OpenQuiz jumps to the configure step for a lecture, e.g. from the video page.
func (c *Controller) OpenQuiz(id string) (quiz.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := c.lecture(id)
	if err != nil {
		return quiz.Snapshot{}, err
	}
	c.quiz.Open(l.ID, l.Title)
	return c.quiz.Snapshot(), nil
}

// QuizCommand applies one quiz command and carries out its effects.
func (c *Controller) QuizCommand(ctx context.Context, req quiz.CommandRequest) (QuizResult, error) {
	cmd, err := req.Decode()
	if err != nil {
		return QuizResult{}, err
	}

	var events []models.WSMessage
	defer func() { c.publish(ctx, events) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	switch cmd := cmd.(type) {
	case quiz.SelectLecture:
		l, err := c.lecture(cmd.LectureID)
		if err != nil && cmd.LectureID != "" {
			return QuizResult{}, err
		}
		cmd.Title = l.Title
		return c.applyQuiz(ctx, cmd, &events)
	case quiz.Start:
		if err := c.flushStats(ctx); err != nil {
			return QuizResult{}, err
		}
	}
	return c.applyQuiz(ctx, cmd, &events)
}

// applyQuiz runs cmd on the engine and handles the effect. Caller holds c.mu.
func (c *Controller) applyQuiz(ctx context.Context, cmd quiz.Command, events *[]models.WSMessage) (QuizResult, error) {
	eff, err := c.quiz.Apply(cmd)
	if err != nil {
		return QuizResult{}, err
	}

	res := QuizResult{StatsSaved: !c.statsDirty}

	if eff.ConfigChanged {
		if err := c.repo.SaveQuizDefaults(ctx, c.quiz.Defaults()); err != nil {
			c.log.Warn("failed to persist quiz defaults", "error", err)
		}
	}

	if eff.Generate != nil {
		c.queueGeneration(*eff.Generate, events)
	}

	if eff.Completed != nil {
		prev := c.stats
		c.stats = stats.Apply(prev, *eff.Completed, c.now())
		res.Unlocked = stats.Unlocked(prev, c.stats)

		c.statsDirty = true
		if err := c.flushStats(ctx); err != nil {
			c.log.Error("quiz completion not persisted", "error", err)
		}
		res.StatsSaved = !c.statsDirty

		*events = append(*events, models.WSMessage{Type: models.EventQuizCompleted, Payload: eff.Completed})
		for _, a := range res.Unlocked {
			*events = append(*events, models.WSMessage{Type: models.EventAchievement, Payload: a})
		}
	}

	res.Quiz = c.quiz.Snapshot()
	return res, nil
}

// flushStats writes pending stats. Caller holds c.mu.
func (c *Controller) flushStats(ctx context.Context) error {
	if !c.statsDirty {
		return nil
	}
	if err := c.repo.SaveStats(ctx, c.stats); err != nil {
		return fmt.Errorf("%w: %v", ErrStatsNotPersisted, err)
	}
	c.statsDirty = false
	return nil
}

// queueGeneration submits the quiz job. If it cannot be queued the engine
// fails immediately. Caller holds c.mu.
func (c *Controller) queueGeneration(req quiz.GenerationRequest, events *[]models.WSMessage) {
	var err error
	if c.jobs == nil {
		err = errors.New("no job dispatcher")
	} else {
		_, err = c.jobs.Submit(worker.Job{
			Kind:      worker.KindQuizGeneration,
			LectureID: req.LectureID,
			Token:     req.Token,
			Payload:   req,
		})
	}
	if err == nil {
		return
	}

	c.log.Error("failed to queue quiz generation", "lecture", req.LectureID, "error", err)
	if derr := c.quiz.Deliver(req.Token, nil); derr == nil {
		*events = append(*events, models.WSMessage{
			Type:    models.EventQuizFailed,
			Payload: models.QuizGenerationEvent{Token: req.Token, LectureID: req.LectureID},
		})
	}
}

// RunQuizGeneration is the worker handler for quiz generation. Superseded
// results are dropped.
func (c *Controller) RunQuizGeneration(ctx context.Context, job worker.Job) error {
	req, ok := job.Payload.(quiz.GenerationRequest)
	if !ok {
		return fmt.Errorf("unexpected quiz job payload %T", job.Payload)
	}

	c.mu.Lock()
	l, err := c.lecture(req.LectureID)
	current := c.quiz.Token()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if current != req.Token {
		c.log.Debug("skipping superseded quiz generation", "token", req.Token, "current", current)
		return nil
	}

	questions := c.assistant.GenerateQuiz(ctx, l.Transcript, req.Difficulty, req.Count)

	var events []models.WSMessage
	defer func() { c.publish(ctx, events) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.quiz.Deliver(req.Token, questions); err != nil {
		if errors.Is(err, quiz.ErrStaleGeneration) {
			c.log.Debug("discarding stale quiz result", "token", req.Token)
			return nil
		}
		return err
	}

	ev := models.QuizGenerationEvent{Token: req.Token, LectureID: req.LectureID, QuestionCount: len(questions)}
	if c.quiz.State() == quiz.StateFailed {
		c.log.Warn("quiz generation returned no questions", "lecture", req.LectureID)
		events = append(events, models.WSMessage{Type: models.EventQuizFailed, Payload: ev})
		return nil
	}
	events = append(events, models.WSMessage{Type: models.EventQuizReady, Payload: ev})
	return nil
}
