package quiz

import "lectura-dashboard/internal/models"

// Question is the current question as shown to the learner; the correct
// answer is withheld until the result state.
type Question struct {
	Index    int      `json:"index"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Selected int      `json:"selected"`
}

type Snapshot struct {
	State          State                   `json:"state"`
	LectureID      string                  `json:"lecture_id,omitempty"`
	LectureTitle   string                  `json:"lecture_title,omitempty"`
	Config         models.QuizDefaults     `json:"config"`
	TotalQuestions int                     `json:"total_questions"`
	Current        *Question               `json:"current,omitempty"`
	Score          *int                    `json:"score,omitempty"`
	Results        []models.QuestionResult `json:"results,omitempty"`
}

func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		State:          e.state,
		LectureID:      e.lectureID,
		LectureTitle:   e.lectureTitle,
		Config:         e.Defaults(),
		TotalQuestions: len(e.questions),
	}

	switch e.state {
	case StateQuiz:
		q := e.questions[e.current]
		s.Current = &Question{
			Index:    e.current,
			Text:     q.Question,
			Options:  append([]string(nil), q.Options...),
			Selected: e.answers[e.current],
		}
	case StateResult:
		score := e.Score()
		s.Score = &score
		s.Results = e.Results()
	}
	return s
}
