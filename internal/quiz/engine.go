// Package quiz implements the quiz flow as an explicit state machine.
//
// The engine holds no I/O. Commands that need the outside world to act
// (generate questions, persist configuration, record a completion) report
// that through the returned Effect.
package quiz

import (
	"errors"
	"fmt"

	"lectura-dashboard/internal/models"
)

type State string

const (
	StateSelect    State = "select"
	StateConfigure State = "configure"
	StateLoading   State = "loading"
	StateQuiz      State = "quiz"
	StateResult    State = "result"
	StateFailed    State = "failed"
)

var (
	ErrInvalidTransition = errors.New("quiz: command not allowed in current state")
	ErrStaleGeneration   = errors.New("quiz: generation result superseded")
)

// GenerationRequest asks the caller to produce questions for a lecture.
// The result must be delivered with the same Token.
type GenerationRequest struct {
	Token      uint64
	LectureID  string
	Difficulty models.Difficulty
	Count      int
}

// Effect lists what the caller must do after a successful command.
type Effect struct {
	Generate      *GenerationRequest
	Completed     *models.QuizCompletion
	ConfigChanged bool
}

// Engine is not safe for concurrent use; the owner serialises access.
type Engine struct {
	state         State
	lectureID     string
	lectureTitle  string
	difficulty    models.Difficulty
	questionCount int

	token     uint64
	questions []models.QuizQuestion
	answers   []int
	current   int
}

// NewEngine starts in the select state with the given defaults. Invalid
// defaults fall back to Intermediate / 5.
func NewEngine(defaults models.QuizDefaults) *Engine {
	e := &Engine{
		state:         StateSelect,
		difficulty:    models.DefaultDifficulty,
		questionCount: models.DefaultQuestionCount,
	}
	if defaults.Difficulty.Valid() {
		e.difficulty = defaults.Difficulty
	}
	if models.ValidQuestionCount(defaults.QuestionCount) {
		e.questionCount = defaults.QuestionCount
	}
	return e
}

func (e *Engine) State() State { return e.state }

func (e *Engine) LectureID() string { return e.lectureID }

func (e *Engine) Token() uint64 { return e.token }

func (e *Engine) Defaults() models.QuizDefaults {
	return models.QuizDefaults{Difficulty: e.difficulty, QuestionCount: e.questionCount}
}

// SetDefaults replaces the configuration used by the next start. It is
// accepted in every state and never touches a running quiz.
func (e *Engine) SetDefaults(d models.QuizDefaults) error {
	if err := validateDifficulty(d.Difficulty); err != nil {
		return err
	}
	if err := validateCount(d.QuestionCount); err != nil {
		return err
	}
	e.difficulty = d.Difficulty
	e.questionCount = d.QuestionCount
	return nil
}

// Open jumps straight to configure for a lecture from any state. Any
// in-flight generation becomes stale.
func (e *Engine) Open(lectureID, title string) {
	e.token++
	e.reset()
	e.lectureID = lectureID
	e.lectureTitle = title
	e.state = StateConfigure
}

// Apply runs one command. On error the engine is unchanged.
func (e *Engine) Apply(cmd Command) (Effect, error) {
	switch c := cmd.(type) {
	case SelectLecture:
		return e.selectLecture(c)
	case SetDifficulty:
		return e.setDifficulty(c)
	case SetQuestionCount:
		return e.setQuestionCount(c)
	case ChangeLecture:
		return e.changeLecture()
	case Start:
		return e.start()
	case Answer:
		return e.answer(c)
	case Next:
		return e.next()
	case Retry:
		return e.retry()
	case NewTopic:
		return e.newTopic()
	case NewConfig:
		return e.newConfig()
	default:
		return Effect{}, fmt.Errorf("%w: unknown command %T", ErrInvalidTransition, cmd)
	}
}

// Deliver hands generated questions to the engine. Results for a token
// other than the current one, or arriving outside loading, are rejected
// with ErrStaleGeneration.
func (e *Engine) Deliver(token uint64, questions []models.QuizQuestion) error {
	if e.state != StateLoading || token != e.token {
		return ErrStaleGeneration
	}
	if len(questions) == 0 {
		e.state = StateFailed
		return nil
	}
	e.questions = append([]models.QuizQuestion(nil), questions...)
	e.answers = newAnswers(len(questions))
	e.current = 0
	e.state = StateQuiz
	return nil
}

func (e *Engine) selectLecture(c SelectLecture) (Effect, error) {
	if err := e.require(StateSelect); err != nil {
		return Effect{}, err
	}
	if c.LectureID == "" {
		return Effect{}, models.NewValidationError("lecture_id", "lecture is required")
	}
	e.lectureID = c.LectureID
	e.lectureTitle = c.Title
	e.state = StateConfigure
	return Effect{}, nil
}

func (e *Engine) setDifficulty(c SetDifficulty) (Effect, error) {
	if err := e.require(StateConfigure); err != nil {
		return Effect{}, err
	}
	if err := validateDifficulty(c.Difficulty); err != nil {
		return Effect{}, err
	}
	e.difficulty = c.Difficulty
	return Effect{ConfigChanged: true}, nil
}

func (e *Engine) setQuestionCount(c SetQuestionCount) (Effect, error) {
	if err := e.require(StateConfigure); err != nil {
		return Effect{}, err
	}
	if err := validateCount(c.Count); err != nil {
		return Effect{}, err
	}
	e.questionCount = c.Count
	return Effect{ConfigChanged: true}, nil
}

func (e *Engine) changeLecture() (Effect, error) {
	if err := e.require(StateConfigure); err != nil {
		return Effect{}, err
	}
	e.lectureID = ""
	e.lectureTitle = ""
	e.state = StateSelect
	return Effect{}, nil
}

func (e *Engine) start() (Effect, error) {
	if err := e.require(StateConfigure, StateFailed); err != nil {
		return Effect{}, err
	}
	e.token++
	e.questions = nil
	e.answers = nil
	e.current = 0
	e.state = StateLoading
	return Effect{Generate: &GenerationRequest{
		Token:      e.token,
		LectureID:  e.lectureID,
		Difficulty: e.difficulty,
		Count:      e.questionCount,
	}}, nil
}

func (e *Engine) answer(c Answer) (Effect, error) {
	if err := e.require(StateQuiz); err != nil {
		return Effect{}, err
	}
	if c.Option < 0 || c.Option >= len(e.questions[e.current].Options) {
		return Effect{}, models.NewValidationError("option", "option out of range")
	}
	e.answers[e.current] = c.Option
	return Effect{}, nil
}

func (e *Engine) next() (Effect, error) {
	if err := e.require(StateQuiz); err != nil {
		return Effect{}, err
	}
	if e.answers[e.current] == models.Unanswered {
		return Effect{}, models.NewValidationError("option", "select an answer first")
	}
	if e.current+1 < len(e.questions) {
		e.current++
		return Effect{}, nil
	}
	e.state = StateResult
	return Effect{Completed: &models.QuizCompletion{
		Score:          e.Score(),
		TotalQuestions: len(e.questions),
		LectureTitle:   e.lectureTitle,
	}}, nil
}

func (e *Engine) retry() (Effect, error) {
	if err := e.require(StateResult); err != nil {
		return Effect{}, err
	}
	e.answers = newAnswers(len(e.questions))
	e.current = 0
	e.state = StateQuiz
	return Effect{}, nil
}

func (e *Engine) newTopic() (Effect, error) {
	if err := e.require(StateResult, StateFailed, StateLoading); err != nil {
		return Effect{}, err
	}
	e.token++
	e.reset()
	e.state = StateSelect
	return Effect{}, nil
}

func (e *Engine) newConfig() (Effect, error) {
	if err := e.require(StateResult, StateFailed); err != nil {
		return Effect{}, err
	}
	e.questions = nil
	e.answers = nil
	e.current = 0
	e.state = StateConfigure
	return Effect{}, nil
}

// Score counts answers matching the correct option.
func (e *Engine) Score() int {
	score := 0
	for i, q := range e.questions {
		if i < len(e.answers) && e.answers[i] == q.CorrectAnswer {
			score++
		}
	}
	return score
}

// Results is the per-question breakdown; empty outside result.
func (e *Engine) Results() []models.QuestionResult {
	if e.state != StateResult {
		return nil
	}
	out := make([]models.QuestionResult, len(e.questions))
	for i, q := range e.questions {
		correctText := ""
		if q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options) {
			correctText = q.Options[q.CorrectAnswer]
		}
		out[i] = models.QuestionResult{
			Question:      q.Question,
			Selected:      e.answers[i],
			CorrectAnswer: q.CorrectAnswer,
			CorrectText:   correctText,
			IsCorrect:     e.answers[i] == q.CorrectAnswer,
		}
	}
	return out
}

func (e *Engine) require(allowed ...State) error {
	for _, s := range allowed {
		if e.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidTransition, e.state)
}

func (e *Engine) reset() {
	e.lectureID = ""
	e.lectureTitle = ""
	e.questions = nil
	e.answers = nil
	e.current = 0
}

func newAnswers(n int) []int {
	answers := make([]int, n)
	for i := range answers {
		answers[i] = models.Unanswered
	}
	return answers
}

func validateDifficulty(d models.Difficulty) error {
	if !d.Valid() {
		return models.NewValidationError("difficulty", "must be one of Basic, Intermediate, Hard")
	}
	return nil
}

func validateCount(n int) error {
	if !models.ValidQuestionCount(n) {
		return models.NewValidationError("count", "must be one of 5, 10, 15, 20")
	}
	return nil
}
