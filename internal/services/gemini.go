package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"lectura-dashboard/internal/logger"
	"lectura-dashboard/internal/models"
)

// Media larger than this goes through the File API instead of inline data.
const inlineMediaLimit = 20 * 1024 * 1024

const transcriptSnippetLimit = 20000

type GeminiConfig struct {
	APIKey             string
	Model              string
	ChatModel          string
	VideoModel         string
	ConcurrentRequests int
}

type GeminiService struct {
	client     *genai.Client
	model      string
	chatModel  string
	videoModel string
	log        *logger.Logger
	rateChan   chan struct{} // Token bucket
}

var _ Assistant = (*GeminiService)(nil)

func NewGeminiService(cfg GeminiConfig, log *logger.Logger) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	concurrent := cfg.ConcurrentRequests
	if concurrent <= 0 {
		concurrent = 1
	}
	rateChan := make(chan struct{}, concurrent)
	for i := 0; i < concurrent; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:     client,
		model:      cfg.Model,
		chatModel:  cfg.ChatModel,
		videoModel: cfg.VideoModel,
		log:        log,
		rateChan:   rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// newModel returns a fresh model handle so per-call settings never leak
// between concurrent requests.
func (s *GeminiService) newModel(name string) *genai.GenerativeModel {
	model := s.client.GenerativeModel(name)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)
	return model
}

func (s *GeminiService) Summarize(ctx context.Context, transcript string) (string, bool) {
	if err := s.acquireRate(ctx); err != nil {
		s.log.Warn("summary skipped", "error", err)
		return FallbackSummaryFailed, false
	}
	defer s.releaseRate()

	model := s.newModel(s.model)
	model.SystemInstruction = textContent("You are an expert academic tutor assisting university students.")

	resp, err := model.GenerateContent(ctx, genai.Text(buildSummaryPrompt(transcript)))
	if err != nil {
		s.log.Error("Gemini summary failed", "error", err)
		return FallbackSummaryFailed, false
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return FallbackSummary, false
	}
	return text, true
}

func (s *GeminiService) Answer(ctx context.Context, transcript, question string, history []models.ChatMessage) string {
	if err := s.acquireRate(ctx); err != nil {
		s.log.Warn("chat skipped", "error", err)
		return FallbackAnswer
	}
	defer s.releaseRate()

	model := s.newModel(s.chatModel)
	model.SystemInstruction = textContent(buildChatInstruction(transcript))

	cs := model.StartChat()
	cs.History = chatHistory(history)

	resp, err := cs.SendMessage(ctx, genai.Text(question))
	if err != nil {
		s.log.Error("Gemini chat failed", "error", err)
		return FallbackAnswer
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return FallbackNoAnswer
	}
	return text
}

func (s *GeminiService) GenerateQuiz(ctx context.Context, transcript string, difficulty models.Difficulty, count int) []models.QuizQuestion {
	if err := s.acquireRate(ctx); err != nil {
		s.log.Warn("quiz generation skipped", "error", err)
		return nil
	}
	defer s.releaseRate()

	model := s.newModel(s.model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = quizSchema()

	resp, err := model.GenerateContent(ctx, genai.Text(buildQuizPrompt(transcript, difficulty, count)))
	if err != nil {
		s.log.Error("Gemini quiz generation failed", "error", err)
		return nil
	}

	questions, err := parseQuizQuestions(extractText(resp))
	if err != nil {
		s.log.Error("Gemini quiz response unreadable", "error", err)
		return nil
	}
	return questions
}

func (s *GeminiService) AnalyzeMedia(ctx context.Context, data []byte, mimeType string) (models.MediaAnalysis, error) {
	if len(data) == 0 {
		return models.MediaAnalysis{}, fmt.Errorf("media payload is empty")
	}
	if err := s.acquireRate(ctx); err != nil {
		return models.MediaAnalysis{}, err
	}
	defer s.releaseRate()

	media, cleanup, err := s.mediaPart(ctx, data, mimeType)
	if err != nil {
		return models.MediaAnalysis{}, err
	}
	defer cleanup()

	model := s.newModel(s.videoModel)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = mediaAnalysisSchema()

	resp, err := model.GenerateContent(ctx, media, genai.Text(mediaAnalysisPrompt))
	if err != nil {
		return models.MediaAnalysis{}, fmt.Errorf("Gemini media analysis error: %w", err)
	}

	var out models.MediaAnalysis
	if err := json.Unmarshal([]byte(stripJSONFence(extractText(resp))), &out); err != nil {
		return models.MediaAnalysis{}, fmt.Errorf("failed to parse media analysis: %w", err)
	}
	if strings.TrimSpace(out.Transcript) == "" && strings.TrimSpace(out.Summary) == "" {
		return models.MediaAnalysis{}, fmt.Errorf("Gemini returned empty media analysis")
	}
	return out, nil
}

// mediaPart sends small payloads inline and larger ones through the File
// API. The returned cleanup removes any uploaded file.
func (s *GeminiService) mediaPart(ctx context.Context, data []byte, mimeType string) (genai.Part, func(), error) {
	if len(data) <= inlineMediaLimit {
		return genai.Blob{MIMEType: mimeType, Data: data}, func() {}, nil
	}

	file, err := s.client.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		DisplayName: "lecture-upload",
		MIMEType:    mimeType,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to upload media to Gemini: %w", err)
	}
	cleanup := func() { s.client.DeleteFile(context.Background(), file.Name) }

	for i := 0; i < 30; i++ {
		current, getErr := s.client.GetFile(ctx, file.Name)
		if getErr != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to get uploaded file status: %w", getErr)
		}

		if current.State == genai.FileStateActive {
			return genai.FileData{MIMEType: mimeType, URI: current.URI}, cleanup, nil
		}
		if current.State == genai.FileStateFailed {
			cleanup()
			return nil, nil, fmt.Errorf("Gemini failed to process uploaded media")
		}

		select {
		case <-ctx.Done():
			cleanup()
			return nil, nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	cleanup()
	return nil, nil, fmt.Errorf("media file did not become active in time")
}

func (s *GeminiService) SearchLibrary(ctx context.Context, query string, corpus []models.LectureSummaryView) models.LibrarySearchResult {
	fallback := models.LibrarySearchResult{Answer: FallbackLibrarySearch, RelevantIDs: []string{}}

	if err := s.acquireRate(ctx); err != nil {
		s.log.Warn("library search skipped", "error", err)
		return fallback
	}
	defer s.releaseRate()

	prompt, err := buildLibraryPrompt(query, corpus)
	if err != nil {
		s.log.Error("library context encoding failed", "error", err)
		return fallback
	}

	model := s.newModel(s.model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = librarySearchSchema()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		s.log.Error("Gemini library search failed", "error", err)
		return fallback
	}

	result, err := parseLibraryResult(extractText(resp))
	if err != nil {
		s.log.Error("Gemini library response unreadable", "error", err)
		return fallback
	}
	return result
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func textContent(text string) *genai.Content {
	return &genai.Content{Parts: []genai.Part{genai.Text(text)}}
}

// chatHistory maps UI roles onto the API's user/model roles.
func chatHistory(history []models.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "model"
		if msg.Role == models.ChatRoleUser {
			role = "user"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Text)}})
	}
	return out
}

func stripJSONFence(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}

func buildSummaryPrompt(transcript string) string {
	return "Provide a concise, academic summary (max 3 paragraphs) of the following lecture transcript. " +
		"Highlight key concepts and takeaways. Transcript: " + transcript
}

func buildChatInstruction(transcript string) string {
	var b strings.Builder
	b.WriteString("You are a helpful teaching assistant. Answer the student's questions based strictly on the provided lecture transcript below. ")
	b.WriteString("If the answer is not in the transcript, state that clearly.\n\n")
	b.WriteString("TRANSCRIPT:\n")
	b.WriteString(transcript)
	return b.String()
}

func buildQuizPrompt(transcript string, difficulty models.Difficulty, count int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Generate %d multiple-choice questions based on the following lecture transcript.\n", count))
	b.WriteString(fmt.Sprintf("The difficulty level should be: %s.\n", difficulty))

	switch difficulty {
	case models.DifficultyBasic:
		b.WriteString("Basic = direct recall from the transcript.\n")
	case models.DifficultyIntermediate:
		b.WriteString("Intermediate = application of concepts.\n")
	case models.DifficultyHard:
		b.WriteString("Hard = analysis, synthesis, or inference beyond what is explicitly stated.\n")
	}

	b.WriteString("Ensure the questions test understanding of the core concepts appropriate for this difficulty level.\n")
	b.WriteString("Each question has exactly 4 options and correctAnswer is the index (0-3) of the correct option.\n")
	b.WriteString("\n---TRANSCRIPT START---\n")
	b.WriteString(transcript)
	b.WriteString("\n---TRANSCRIPT END---\n")
	return b.String()
}

const mediaAnalysisPrompt = `Analyze this video lecture.
1. Provide a comprehensive summary.
2. Generate a FULL, VERBATIM transcript of the ENTIRE media.
   - Transcribe the audio from the beginning (00:00) to the very end.
   - Timestamp every segment (approx every 10-30 seconds) using [MM:SS] format.
   - Describe slides, whiteboard writing and visual demonstrations inline, e.g. "(Visual: Diagram of ...)".
   - Combine spoken text and visual descriptions in chronological order.`

// wireQuestion is the AI response shape.
type wireQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

func parseQuizQuestions(raw string) ([]models.QuizQuestion, error) {
	raw = stripJSONFence(raw)

	var questions []wireQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		// Try to extract JSON array
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON array in response: %w", err)
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &questions); err != nil {
			return nil, err
		}
	}
	return validateQuizQuestions(questions), nil
}

// validateQuizQuestions drops anything that is not a question with exactly
// four options and an in-range correct answer.
func validateQuizQuestions(questions []wireQuestion) []models.QuizQuestion {
	valid := make([]models.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) != models.OptionsPerQuestion {
			continue
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= models.OptionsPerQuestion {
			continue
		}
		valid = append(valid, models.QuizQuestion{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return valid
}

// LibraryContext builds the lightweight corpus the library assistant searches.
func LibraryContext(lectures []models.Lecture) []models.LectureSummaryView {
	out := make([]models.LectureSummaryView, 0, len(lectures))
	for _, l := range lectures {
		summary := l.Summary
		if summary == "" {
			summary = FallbackLectureSummary
		}
		snippet := FallbackNoTranscript
		if l.Transcript != "" {
			snippet = truncateRunes(l.Transcript, transcriptSnippetLimit)
		}
		out = append(out, models.LectureSummaryView{
			ID:                l.ID,
			Title:             l.Title,
			Instructor:        l.Instructor,
			Subject:           l.Subject,
			Summary:           summary,
			TranscriptSnippet: snippet,
		})
	}
	return out
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func buildLibraryPrompt(query string, corpus []models.LectureSummaryView) (string, error) {
	libraryJSON, err := json.Marshal(corpus)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a smart library assistant for a university video platform.\n")
	b.WriteString(fmt.Sprintf("User Query: %q\n\n", query))
	b.WriteString("Search through the following library content (summaries and transcripts) and identify which lectures match the user's request.\n")
	b.WriteString("If the user asks about a specific topic, concept, or quote, check both the summaries and transcript snippets.\n\n")
	b.WriteString("Library Content:\n")
	b.Write(libraryJSON)
	b.WriteString("\n\nReturn a conversational answer describing what you found, and list the IDs of the relevant lectures.\n")
	return b.String(), nil
}

type wireLibraryResult struct {
	Answer             string   `json:"answer"`
	RelevantLectureIDs []string `json:"relevantLectureIds"`
}

func parseLibraryResult(raw string) (models.LibrarySearchResult, error) {
	var wire wireLibraryResult
	if err := json.Unmarshal([]byte(stripJSONFence(raw)), &wire); err != nil {
		return models.LibrarySearchResult{}, err
	}
	if wire.RelevantLectureIDs == nil {
		wire.RelevantLectureIDs = []string{}
	}
	return models.LibrarySearchResult{Answer: wire.Answer, RelevantIDs: wire.RelevantLectureIDs}, nil
}

func quizSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {Type: genai.TypeString},
				"options": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "An array of 4 possible answers.",
				},
				"correctAnswer": {
					Type:        genai.TypeInteger,
					Description: "The index (0-3) of the correct option.",
				},
			},
			Required: []string{"question", "options", "correctAnswer"},
		},
	}
}

func mediaAnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeString,
				Description: "A detailed academic summary of the media content, highlighting key topics and visual information.",
			},
			"transcript": {
				Type:        genai.TypeString,
				Description: "A complete, verbatim transcript from start to finish, with [MM:SS] timestamps and visual descriptions.",
			},
		},
		Required: []string{"summary", "transcript"},
	}
}

func librarySearchSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"answer": {
				Type:        genai.TypeString,
				Description: "A helpful, conversational answer addressing the user's query based on the library content.",
			},
			"relevantLectureIds": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "A list of IDs for the lectures that contain the information requested.",
			},
		},
		Required: []string{"answer", "relevantLectureIds"},
	}
}
