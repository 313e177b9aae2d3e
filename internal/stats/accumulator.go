// Package stats folds quiz completions into the cumulative learner record.
package stats

import (
	"fmt"
	"math"
	"time"

	"lectura-dashboard/internal/models"
)

const (
	// StudyMinutesPerQuiz is the fixed study-time credit for each completed quiz.
	StudyMinutesPerQuiz = 15

	// QuizMasterThreshold is the exact quizzes_taken value that unlocks Quiz Master.
	QuizMasterThreshold = 10

	AchievementPerfectionist = "Perfectionist"
	AchievementQuizMaster    = "Quiz Master"

	// DateLayout is the display format of achievement dates.
	DateLayout = "Jan 2, 2006"
)

// Apply returns the stats after one quiz completion. prev is not modified;
// now only supplies the achievement date label.
func Apply(prev models.UserStats, event models.QuizCompletion, now time.Time) models.UserStats {
	next := prev
	next.Achievements = append([]models.Achievement(nil), prev.Achievements...)

	next.QuizzesTaken++
	next.TotalQuizScore += event.Score
	next.TotalQuestionsAnswered += event.TotalQuestions
	next.StudyTimeMinutes += StudyMinutesPerQuiz

	if event.TotalQuestions > 0 && event.Score == event.TotalQuestions {
		next.QuizzesAced++
		if !HasAchievement(next, AchievementPerfectionist) {
			next.Achievements = prepend(next.Achievements, models.Achievement{
				Title: AchievementPerfectionist,
				Desc:  fmt.Sprintf("Scored 100%% on %s", event.LectureTitle),
				Date:  now.Format(DateLayout),
				Icon:  "trophy",
			})
		}
	}

	// Exact equality: the counter only passes 10 once.
	if next.QuizzesTaken == QuizMasterThreshold {
		next.Achievements = prepend(next.Achievements, models.Achievement{
			Title: AchievementQuizMaster,
			Desc:  fmt.Sprintf("Completed %d quizzes", QuizMasterThreshold),
			Date:  now.Format(DateLayout),
			Icon:  "award",
		})
	}

	next.LecturesCompleted++

	return next
}

// Unlocked returns the achievements present in next but not in prev.
func Unlocked(prev, next models.UserStats) []models.Achievement {
	if len(next.Achievements) <= len(prev.Achievements) {
		return nil
	}
	return next.Achievements[:len(next.Achievements)-len(prev.Achievements)]
}

func HasAchievement(s models.UserStats, title string) bool {
	for _, a := range s.Achievements {
		if a.Title == title {
			return true
		}
	}
	return false
}

// QuizAverage is the overall percentage of correct answers, rounded.
func QuizAverage(s models.UserStats) int {
	if s.TotalQuestionsAnswered <= 0 {
		return 0
	}
	return int(math.Round(float64(s.TotalQuizScore) / float64(s.TotalQuestionsAnswered) * 100))
}

// StudyHours renders study time as hours with one decimal.
func StudyHours(s models.UserStats) string {
	return fmt.Sprintf("%.1f", float64(s.StudyTimeMinutes)/60)
}

func prepend(list []models.Achievement, a models.Achievement) []models.Achievement {
	return append([]models.Achievement{a}, list...)
}
