package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lectura-dashboard/internal/kv"
	"lectura-dashboard/internal/logger"
	"lectura-dashboard/internal/models"
	"lectura-dashboard/internal/recents"
)

// SchemaVersion tags every value written by StateRepo.
const SchemaVersion = 1

// Persisted keys.
const (
	KeyLectures         = "lectures"
	KeyUserStats        = "userStats"
	KeyRecentLectureIDs = "recentLectureIds"
	KeyTheme            = "theme"
	KeyQuizDifficulty   = "quizDifficulty"
	KeyQuizNumQuestions = "quizNumQuestions"
)

var errUnsupportedVersion = errors.New("unsupported schema version")

type envelope struct {
	Version *int            `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// legacyDecoder converts a value written before versioning into dst.
type legacyDecoder func(raw string, dst any) error

// StateRepo reads and writes the learner state through a kv.Store. Missing
// or unreadable values resolve to the documented defaults; store failures
// are returned.
type StateRepo struct {
	store kv.Store
	log   *logger.Logger
}

func NewStateRepo(store kv.Store, log *logger.Logger) *StateRepo {
	return &StateRepo{store: store, log: log}
}

// LoadLectures reports found == false when nothing usable is stored, so
// the caller can seed the catalog.
func (r *StateRepo) LoadLectures(ctx context.Context) ([]models.Lecture, bool, error) {
	var lectures []models.Lecture
	found, err := r.load(ctx, KeyLectures, &lectures, decodeLegacyLectures)
	if err != nil || !found {
		return nil, false, err
	}
	if lectures == nil {
		lectures = []models.Lecture{}
	}
	return lectures, true, nil
}

func (r *StateRepo) SaveLectures(ctx context.Context, lectures []models.Lecture) error {
	return r.save(ctx, KeyLectures, lectures)
}

func (r *StateRepo) LoadStats(ctx context.Context) (models.UserStats, error) {
	var s models.UserStats
	found, err := r.load(ctx, KeyUserStats, &s, decodeLegacyStats)
	if err != nil {
		return models.UserStats{Achievements: []models.Achievement{}}, err
	}
	if !found {
		s = models.UserStats{}
	}
	if s.Achievements == nil {
		s.Achievements = []models.Achievement{}
	}
	return s, nil
}

func (r *StateRepo) SaveStats(ctx context.Context, s models.UserStats) error {
	return r.save(ctx, KeyUserStats, s)
}

func (r *StateRepo) LoadRecents(ctx context.Context) ([]string, error) {
	var ids []string
	found, err := r.load(ctx, KeyRecentLectureIDs, &ids, decodeLegacyJSON)
	if err != nil || !found {
		return []string{}, err
	}
	out := make([]string, 0, recents.Capacity)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if len(out) == recents.Capacity {
			break
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

func (r *StateRepo) SaveRecents(ctx context.Context, ids []string) error {
	return r.save(ctx, KeyRecentLectureIDs, ids)
}

func (r *StateRepo) LoadTheme(ctx context.Context) (models.Theme, error) {
	var theme models.Theme
	found, err := r.load(ctx, KeyTheme, &theme, decodeLegacyString)
	if err != nil {
		return models.ThemeLight, err
	}
	if !found || !theme.Valid() {
		return models.ThemeLight, nil
	}
	return theme, nil
}

func (r *StateRepo) SaveTheme(ctx context.Context, theme models.Theme) error {
	return r.save(ctx, KeyTheme, theme)
}

// LoadQuizDefaults reads difficulty and question count independently; each
// falls back on its own.
func (r *StateRepo) LoadQuizDefaults(ctx context.Context) (models.QuizDefaults, error) {
	d := models.QuizDefaults{
		Difficulty:    models.DefaultDifficulty,
		QuestionCount: models.DefaultQuestionCount,
	}

	var difficulty models.Difficulty
	found, err := r.load(ctx, KeyQuizDifficulty, &difficulty, decodeLegacyString)
	if err != nil {
		return d, err
	}
	if found && difficulty.Valid() {
		d.Difficulty = difficulty
	}

	var count int
	found, err = r.load(ctx, KeyQuizNumQuestions, &count, decodeLegacyInt)
	if err != nil {
		return d, err
	}
	if found && models.ValidQuestionCount(count) {
		d.QuestionCount = count
	}

	return d, nil
}

// SaveQuizDefaults writes difficulty then question count. A failure after
// the first write leaves the keys out of step; callers restore the previous
// defaults.
func (r *StateRepo) SaveQuizDefaults(ctx context.Context, d models.QuizDefaults) error {
	if err := r.save(ctx, KeyQuizDifficulty, d.Difficulty); err != nil {
		return err
	}
	return r.save(ctx, KeyQuizNumQuestions, d.QuestionCount)
}

func (r *StateRepo) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	version := SchemaVersion
	raw, err := json.Marshal(envelope{Version: &version, Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode %s envelope: %w", key, err)
	}
	if err := r.store.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// load decodes key into dst. found is false when the key is absent or the
// stored value cannot be decoded; the latter is logged.
func (r *StateRepo) load(ctx context.Context, key string, dst any, legacy legacyDecoder) (bool, error) {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found {
		return false, nil
	}

	if err := decodeValue(raw, dst, legacy); err != nil {
		r.log.Warn("discarding unreadable persisted value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func decodeValue(raw string, dst any, legacy legacyDecoder) error {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err == nil && env.Version != nil {
		if *env.Version != SchemaVersion {
			return fmt.Errorf("%w: %d", errUnsupportedVersion, *env.Version)
		}
		return json.Unmarshal(env.Data, dst)
	}
	return legacy(raw, dst)
}

// Legacy encodings, written by the original browser client without a
// version tag.

func decodeLegacyJSON(raw string, dst any) error {
	return json.Unmarshal([]byte(raw), dst)
}

func decodeLegacyString(raw string, dst any) error {
	s := strings.TrimSpace(raw)
	var quoted string
	if err := json.Unmarshal([]byte(s), &quoted); err == nil {
		s = quoted
	}
	switch v := dst.(type) {
	case *models.Theme:
		*v = models.Theme(s)
	case *models.Difficulty:
		*v = models.Difficulty(s)
	default:
		return fmt.Errorf("unsupported legacy string target %T", dst)
	}
	return nil
}

func decodeLegacyInt(raw string, dst any) error {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	v, ok := dst.(*int)
	if !ok {
		return fmt.Errorf("unsupported legacy int target %T", dst)
	}
	*v = n
	return nil
}

type legacyLecture struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Instructor   string `json:"instructor"`
	Date         string `json:"date"`
	Duration     string `json:"duration"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Subject      string `json:"subject"`
	Transcript   string `json:"transcript"`
	VideoURL     string `json:"videoUrl"`
	Summary      string `json:"summary"`
}

func decodeLegacyLectures(raw string, dst any) error {
	var old []legacyLecture
	if err := json.Unmarshal([]byte(raw), &old); err != nil {
		return err
	}
	v, ok := dst.(*[]models.Lecture)
	if !ok {
		return fmt.Errorf("unsupported legacy lectures target %T", dst)
	}
	out := make([]models.Lecture, 0, len(old))
	for _, l := range old {
		out = append(out, models.Lecture{
			ID:           l.ID,
			Title:        l.Title,
			Instructor:   l.Instructor,
			Date:         l.Date,
			Duration:     l.Duration,
			Subject:      l.Subject,
			ThumbnailURL: l.ThumbnailURL,
			VideoURL:     l.VideoURL,
			Transcript:   l.Transcript,
			Summary:      l.Summary,
		})
	}
	*v = out
	return nil
}

type legacyStats struct {
	StudyTimeMinutes       int                  `json:"studyTimeMinutes"`
	QuizzesTaken           int                  `json:"quizzesTaken"`
	TotalQuizScore         int                  `json:"totalQuizScore"`
	TotalQuestionsAnswered int                  `json:"totalQuestionsAnswered"`
	QuizzesAced            int                  `json:"quizzesAced"`
	LecturesCompleted      int                  `json:"lecturesCompleted"`
	Achievements           []models.Achievement `json:"achievements"`
}

func decodeLegacyStats(raw string, dst any) error {
	var old legacyStats
	if err := json.Unmarshal([]byte(raw), &old); err != nil {
		return err
	}
	v, ok := dst.(*models.UserStats)
	if !ok {
		return fmt.Errorf("unsupported legacy stats target %T", dst)
	}
	*v = models.UserStats{
		StudyTimeMinutes:       old.StudyTimeMinutes,
		QuizzesTaken:           old.QuizzesTaken,
		TotalQuizScore:         old.TotalQuizScore,
		TotalQuestionsAnswered: old.TotalQuestionsAnswered,
		QuizzesAced:            old.QuizzesAced,
		LecturesCompleted:      old.LecturesCompleted,
		Achievements:           old.Achievements,
	}
	return nil
}
