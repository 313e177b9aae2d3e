package models

type Achievement struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
	Date  string `json:"date"`
	Icon  string `json:"icon"`
}

// UserStats is the cumulative learner record. Counters never decrease.
type UserStats struct {
	StudyTimeMinutes       int           `json:"study_time_minutes"`
	QuizzesTaken           int           `json:"quizzes_taken"`
	TotalQuizScore         int           `json:"total_quiz_score"`
	TotalQuestionsAnswered int           `json:"total_questions_answered"`
	QuizzesAced            int           `json:"quizzes_aced"`
	LecturesCompleted      int           `json:"lectures_completed"`
	Achievements           []Achievement `json:"achievements"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}
