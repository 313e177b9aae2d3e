package services

import (
	"context"

	"lectura-dashboard/internal/models"
)

// Fallback texts returned when the AI call fails.
const (
	FallbackSummary        = "Summary unavailable."
	FallbackSummaryFailed  = "Failed to generate summary. Please try again later."
	FallbackAnswer         = "Error processing your request."
	FallbackNoAnswer       = "I couldn't find an answer in the video."
	FallbackLibrarySearch  = "I'm having trouble searching the library right now. Please try again later."
	FallbackTranscription  = "Automatic transcription unavailable."
	FallbackLectureSummary = "Summary not available."
	FallbackNoTranscript   = "No transcript available."
)

// Assistant is the generative-AI collaborator. Every method except
// AnalyzeMedia recovers failures itself and returns a fallback.
type Assistant interface {
	// Summarize returns the summary and whether it is a real result. A
	// fallback text comes with ok == false and must not be persisted.
	Summarize(ctx context.Context, transcript string) (summary string, ok bool)
	Answer(ctx context.Context, transcript, question string, history []models.ChatMessage) string
	// GenerateQuiz returns only well-formed questions; empty means failure.
	GenerateQuiz(ctx context.Context, transcript string, difficulty models.Difficulty, count int) []models.QuizQuestion
	AnalyzeMedia(ctx context.Context, data []byte, mimeType string) (models.MediaAnalysis, error)
	SearchLibrary(ctx context.Context, query string, corpus []models.LectureSummaryView) models.LibrarySearchResult
}
