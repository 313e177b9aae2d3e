package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lectura-dashboard/internal/models"
	"lectura-dashboard/internal/services"
)

const (
	defaultThumbnail = "https://images.unsplash.com/photo-1626379953822-baec19c3accd?q=80&w=2070"
	defaultSubject   = "General"
	unknownDuration  = "Unknown"
)

// MediaUpload is an uploaded recording with its form metadata.
type MediaUpload struct {
	Meta     models.UploadMetadata
	Filename string
	MIMEType string
	Data     []byte
}

// TranscriptUpload is a transcript document with its form metadata.
type TranscriptUpload struct {
	Meta     models.UploadMetadata
	Subject  string
	Filename string
	Data     []byte
}

func validateUploadMeta(meta models.UploadMetadata) (time.Time, error) {
	fields := map[string]string{}
	if strings.TrimSpace(meta.ClassName) == "" {
		fields["class_name"] = "class name is required"
	}
	if strings.TrimSpace(meta.Lecturer) == "" {
		fields["lecturer"] = "lecturer is required"
	}
	date, err := time.Parse(filterDateLayout, meta.Date)
	if err != nil {
		fields["date"] = "date must be YYYY-MM-DD"
	}
	if len(fields) > 0 {
		return time.Time{}, &models.ValidationError{Fields: fields}
	}
	return date, nil
}

// Upload analyses a recording with the assistant and adds it to the
// collection. Analysis failure still adds the lecture with fallback texts.
func (c *Controller) Upload(ctx context.Context, up MediaUpload) (models.Lecture, error) {
	date, err := validateUploadMeta(up.Meta)
	if err != nil {
		return models.Lecture{}, err
	}
	if len(up.Data) == 0 {
		return models.Lecture{}, models.NewValidationError("file", "file is required")
	}
	if up.MIMEType == "" {
		up.MIMEType = "video/mp4"
	}

	duration := strings.TrimSpace(up.Meta.Duration)
	if duration == "" {
		duration = unknownDuration
	}

	l := models.Lecture{
		ID:           "upload-" + uuid.NewString(),
		Title:        fmt.Sprintf("%s: Lecture %s", strings.TrimSpace(up.Meta.ClassName), up.Meta.Date),
		Instructor:   strings.TrimSpace(up.Meta.Lecturer),
		Date:         date.Format(lectureDateLayout),
		Duration:     duration,
		Subject:      strings.TrimSpace(up.Meta.ClassName),
		ThumbnailURL: defaultThumbnail,
	}

	if c.media != nil {
		url, err := c.media.Save(up.Filename, up.MIMEType, up.Data)
		if err != nil {
			return models.Lecture{}, err
		}
		l.VideoURL = url
	}

	analysis, err := c.assistant.AnalyzeMedia(ctx, up.Data, up.MIMEType)
	if err != nil {
		c.log.Error("media analysis failed", "file", up.Filename, "error", err)
		analysis = models.MediaAnalysis{Summary: services.FallbackSummary, Transcript: services.FallbackTranscription}
	}
	l.Summary = analysis.Summary
	l.Transcript = analysis.Transcript

	return c.addLecture(ctx, l)
}

// ImportYouTube adds a lecture from a YouTube video. Without captions the
// audio track is transcribed by the assistant. Importing the same video
// twice returns the existing lecture.
func (c *Controller) ImportYouTube(ctx context.Context, req models.ImportYouTubeRequest) (models.Lecture, bool, error) {
	if strings.TrimSpace(req.URL) == "" {
		return models.Lecture{}, false, models.NewValidationError("url", "url is required")
	}
	if c.videos == nil {
		return models.Lecture{}, false, fmt.Errorf("YouTube import is not configured")
	}

	video, err := c.videos.Fetch(ctx, req.URL)
	if err != nil {
		return models.Lecture{}, false, models.NewValidationError("url", err.Error())
	}

	id := "youtube-" + video.ID
	c.mu.Lock()
	existing, lookupErr := c.lecture(id)
	c.mu.Unlock()
	if lookupErr == nil {
		return existing, false, nil
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = defaultSubject
	}

	l := models.Lecture{
		ID:           id,
		Title:        video.Title,
		Instructor:   video.Channel,
		Date:         c.now().Format(lectureDateLayout),
		Duration:     services.FormatDuration(video.Duration),
		Subject:      subject,
		ThumbnailURL: video.ThumbnailURL,
		Transcript:   video.Transcript,
	}

	if l.Transcript == "" {
		l.Transcript, l.Summary = c.transcribeRemote(ctx, req.URL)
	}

	added, err := c.addLecture(ctx, l)
	return added, err == nil, err
}

// transcribeRemote downloads audio and runs media analysis on it.
func (c *Controller) transcribeRemote(ctx context.Context, videoURL string) (transcriptText, summary string) {
	audio, mimeType, err := c.videos.DownloadAudio(ctx, videoURL)
	if err != nil {
		c.log.Warn("audio download failed", "url", videoURL, "error", err)
		return services.FallbackTranscription, ""
	}
	analysis, err := c.assistant.AnalyzeMedia(ctx, audio, mimeType)
	if err != nil {
		c.log.Warn("audio transcription failed", "url", videoURL, "error", err)
		return services.FallbackTranscription, ""
	}
	return analysis.Transcript, analysis.Summary
}

// ImportTranscript adds a lecture from a transcript document. Its summary
// is generated lazily on first view.
func (c *Controller) ImportTranscript(ctx context.Context, up TranscriptUpload) (models.Lecture, error) {
	date, err := validateUploadMeta(up.Meta)
	if err != nil {
		return models.Lecture{}, err
	}
	if c.extractor == nil {
		return models.Lecture{}, fmt.Errorf("transcript import is not configured")
	}

	text, err := c.extractor.ExtractText(up.Filename, up.Data)
	if err != nil {
		return models.Lecture{}, models.NewValidationError("file", err.Error())
	}

	subject := strings.TrimSpace(up.Subject)
	if subject == "" {
		subject = strings.TrimSpace(up.Meta.ClassName)
	}
	duration := strings.TrimSpace(up.Meta.Duration)
	if duration == "" {
		duration = unknownDuration
	}

	return c.addLecture(ctx, models.Lecture{
		ID:           "transcript-" + uuid.NewString(),
		Title:        fmt.Sprintf("%s: Lecture %s", strings.TrimSpace(up.Meta.ClassName), up.Meta.Date),
		Instructor:   strings.TrimSpace(up.Meta.Lecturer),
		Date:         date.Format(lectureDateLayout),
		Duration:     duration,
		Subject:      subject,
		ThumbnailURL: defaultThumbnail,
		Transcript:   text,
	})
}

// addLecture prepends l to the collection and writes it through.
func (c *Controller) addLecture(ctx context.Context, l models.Lecture) (models.Lecture, error) {
	var events []models.WSMessage
	defer func() { c.publish(ctx, events) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.findLecture(l.ID); err == nil {
		return models.Lecture{}, models.NewValidationError("id", "lecture already exists")
	}

	next := append([]models.Lecture{l}, c.lectures...)
	if err := c.repo.SaveLectures(ctx, next); err != nil {
		return models.Lecture{}, fmt.Errorf("failed to persist lecture: %w", err)
	}
	c.lectures = next

	c.log.Info("lecture added", "lecture", l.ID, "title", l.Title)
	events = append(events, models.WSMessage{Type: models.EventLectureAdded, Payload: l})
	return l, nil
}
