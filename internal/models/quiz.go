package models

// Difficulty is the closed set of quiz difficulty levels.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "Basic"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyHard         Difficulty = "Hard"
)

// Difficulties lists the accepted levels in display order.
var Difficulties = []Difficulty{DifficultyBasic, DifficultyIntermediate, DifficultyHard}

// QuestionCounts lists the accepted quiz lengths.
var QuestionCounts = []int{5, 10, 15, 20}

const (
	DefaultDifficulty    = DifficultyIntermediate
	DefaultQuestionCount = 5

	// OptionsPerQuestion is the exact number of choices a generated question carries.
	OptionsPerQuestion = 4

	// Unanswered marks a question with no selected option.
	Unanswered = -1
)

func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

func ValidQuestionCount(n int) bool {
	for _, v := range QuestionCounts {
		if n == v {
			return true
		}
	}
	return false
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
}

// QuizDefaults is the persisted quiz configuration.
type QuizDefaults struct {
	Difficulty    Difficulty `json:"difficulty"`
	QuestionCount int        `json:"question_count"`
}

// QuizCompletion is emitted when the last question of a quiz is answered.
type QuizCompletion struct {
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	LectureTitle   string `json:"lecture_title"`
}

// QuestionResult is one row of the result breakdown.
type QuestionResult struct {
	Question      string `json:"question"`
	Selected      int    `json:"selected"`
	CorrectAnswer int    `json:"correct_answer"`
	CorrectText   string `json:"correct_text"`
	IsCorrect     bool   `json:"is_correct"`
}
