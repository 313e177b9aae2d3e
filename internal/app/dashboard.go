package app

import (
	"context"
	"fmt"

	"lectura-dashboard/internal/models"
	"lectura-dashboard/internal/recents"
	"lectura-dashboard/internal/stats"
)

const dashboardListSize = 3

type StatsView struct {
	models.UserStats
	QuizAverage int    `json:"quiz_average"`
	StudyHours  string `json:"study_hours"`
}

type Dashboard struct {
	Stats       StatsView        `json:"stats"`
	Recent      []models.Lecture `json:"recent"`
	Recommended []models.Lecture `json:"recommended"`
}

type Settings struct {
	Theme models.Theme        `json:"theme"`
	Quiz  models.QuizDefaults `json:"quiz"`
}

func statsView(s models.UserStats) StatsView {
	return StatsView{UserStats: s, QuizAverage: stats.QuizAverage(s), StudyHours: stats.StudyHours(s)}
}

func (c *Controller) Stats() StatsView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return statsView(c.stats)
}

// Dashboard shows up to three recent lectures, falling back to the start of
// the collection when nothing has been viewed, plus three recommendations
// not among the recents.
func (c *Controller) Dashboard() Dashboard {
	c.mu.Lock()
	defer c.mu.Unlock()

	resolved := recents.Resolve(c.recentIDs, c.lectures)

	shown := resolved
	if len(shown) == 0 {
		shown = c.lectures
	}
	if len(shown) > dashboardListSize {
		shown = shown[:dashboardListSize]
	}

	return Dashboard{
		Stats:       statsView(c.stats),
		Recent:      append([]models.Lecture{}, shown...),
		Recommended: recents.Recommended(resolved, c.lectures, dashboardListSize),
	}
}

func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Settings{Theme: c.theme, Quiz: c.quiz.Defaults()}
}

func (c *Controller) SetTheme(ctx context.Context, theme models.Theme) (Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setTheme(ctx, theme)
}

func (c *Controller) ToggleTheme(ctx context.Context) (Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := models.ThemeDark
	if c.theme == models.ThemeDark {
		next = models.ThemeLight
	}
	return c.setTheme(ctx, next)
}

// setTheme validates and writes through. Caller holds c.mu.
func (c *Controller) setTheme(ctx context.Context, theme models.Theme) (Settings, error) {
	if !theme.Valid() {
		return Settings{}, models.NewValidationError("theme", "must be light or dark")
	}
	if err := c.repo.SaveTheme(ctx, theme); err != nil {
		return Settings{}, fmt.Errorf("failed to persist theme: %w", err)
	}
	c.theme = theme
	return Settings{Theme: c.theme, Quiz: c.quiz.Defaults()}, nil
}

// SetQuizDefaults updates the stored quiz configuration used by the next start.
func (c *Controller) SetQuizDefaults(ctx context.Context, d models.QuizDefaults) (Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.quiz.Defaults()
	if err := c.quiz.SetDefaults(d); err != nil {
		return Settings{}, err
	}
	if err := c.repo.SaveQuizDefaults(ctx, d); err != nil {
		// prev was accepted by the engine before, so restoring it cannot fail.
		_ = c.quiz.SetDefaults(prev)
		if rbErr := c.repo.SaveQuizDefaults(ctx, prev); rbErr != nil {
			c.log.Warn("failed to restore persisted quiz defaults", "error", rbErr)
		}
		return Settings{}, fmt.Errorf("failed to persist quiz defaults: %w", err)
	}
	return Settings{Theme: c.theme, Quiz: c.quiz.Defaults()}, nil
}
