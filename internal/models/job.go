package models

import (
	"sort"
	"strings"
)

// WebSocket message types
const (
	EventSeek          = "seek"
	EventPlay          = "play"
	EventQuizReady     = "quiz_ready"
	EventQuizFailed    = "quiz_failed"
	EventQuizCompleted = "quiz_completed"
	EventSummaryReady  = "summary_ready"
	EventLectureAdded  = "lecture_added"
	EventAchievement   = "achievement_unlocked"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type SeekRequest struct {
	LectureID string  `json:"lecture_id"`
	Seconds   float64 `json:"seconds"`
	Resume    bool    `json:"resume"`
}

type QuizGenerationEvent struct {
	Token         uint64 `json:"token"`
	LectureID     string `json:"lecture_id"`
	QuestionCount int    `json:"question_count"`
}

type SummaryEvent struct {
	LectureID string `json:"lecture_id"`
	Summary   string `json:"summary"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ValidationError carries per-field messages for rejected user input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
