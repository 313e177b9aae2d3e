package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
	yt "github.com/kkdai/youtube/v2"

	"lectura-dashboard/internal/logger"
	"lectura-dashboard/internal/transcript"
)

const maxAudioBytes = 100 * 1024 * 1024 // 100MB safety cap

var captionLanguages = []string{"en", "en-US", "en-GB"}

// YouTubeVideo is what an import needs from a video page.
type YouTubeVideo struct {
	ID           string
	Title        string
	Channel      string
	ThumbnailURL string
	Duration     time.Duration
	// Transcript is empty when no captions could be fetched.
	Transcript string
	// Timed reports whether Transcript carries [MM:SS] markers.
	Timed bool
}

type YouTubeService struct {
	transcriptAPI *ytapi.YouTubeTranscriptApi
	ytClient      *yt.Client
	log           *logger.Logger
}

func NewYouTubeService(log *logger.Logger) *YouTubeService {
	return &YouTubeService{
		transcriptAPI: ytapi.NewYouTubeTranscriptApi(),
		ytClient:      &yt.Client{},
		log:           log,
	}
}

// Fetch resolves metadata and captions. Timed captions are preferred; plain
// caption text is the fallback.
func (s *YouTubeService) Fetch(ctx context.Context, videoURL string) (*YouTubeVideo, error) {
	videoID, err := yt.ExtractVideoID(videoURL)
	if err != nil {
		return nil, fmt.Errorf("invalid YouTube URL: %w", err)
	}

	video, err := s.ytClient.GetVideoContext(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch YouTube video metadata: %w", err)
	}

	out := &YouTubeVideo{
		ID:           videoID,
		Title:        video.Title,
		Channel:      video.Author,
		ThumbnailURL: fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID),
		Duration:     video.Duration,
	}

	text, err := s.timedTranscript(video)
	if err == nil {
		out.Transcript = text
		out.Timed = true
		return out, nil
	}
	s.log.Debug("timed captions unavailable", "video", videoID, "error", err)

	text, err = s.plainTranscript(videoID)
	if err != nil {
		s.log.Warn("no captions for video", "video", videoID, "error", err)
		return out, nil
	}
	out.Transcript = text
	return out, nil
}

func (s *YouTubeService) timedTranscript(video *yt.Video) (string, error) {
	var lastErr error
	for _, lang := range captionLanguages {
		segments, err := s.ytClient.GetTranscript(video, lang)
		if err != nil {
			lastErr = err
			continue
		}

		cues := make([]transcript.Cue, 0, len(segments))
		for _, seg := range segments {
			cues = append(cues, transcript.Cue{StartSeconds: seg.StartMs / 1000, Text: seg.Text})
		}
		if text := transcript.Format(cues); text != "" {
			return text, nil
		}
		lastErr = fmt.Errorf("caption track %s is empty", lang)
	}
	return "", lastErr
}

func (s *YouTubeService) plainTranscript(videoID string) (string, error) {
	captions, err := s.transcriptAPI.GetTranscript(videoID, captionLanguages)
	if err != nil {
		// Fallback: request any available language
		captions, err = s.transcriptAPI.GetTranscript(videoID, nil)
		if err != nil {
			return "", fmt.Errorf("no subtitles available via transcript API: %w", err)
		}
	}

	var fullText strings.Builder
	for _, entry := range captions.Entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		fullText.WriteString(text)
		fullText.WriteString(" ")
	}

	cleaned := strings.TrimSpace(fullText.String())
	if cleaned == "" {
		return "", fmt.Errorf("subtitle text resolved to empty content")
	}
	return cleaned, nil
}

// DownloadAudio downloads the best available audio-only stream, used for AI
// transcription when a video has no captions.
func (s *YouTubeService) DownloadAudio(ctx context.Context, videoURL string) ([]byte, string, error) {
	video, err := s.ytClient.GetVideoContext(ctx, videoURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch YouTube video metadata: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, "", fmt.Errorf("no audio formats available")
	}

	best := formats[0]
	for _, f := range formats {
		if f.Bitrate > best.Bitrate {
			best = f
		}
	}

	stream, _, err := s.ytClient.GetStreamContext(ctx, video, &best)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open audio stream: %w", err)
	}
	defer stream.Close()

	audioBytes, err := io.ReadAll(io.LimitReader(stream, maxAudioBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read audio stream: %w", err)
	}
	if len(audioBytes) > maxAudioBytes {
		return nil, "", fmt.Errorf("audio stream exceeds %d MB limit", maxAudioBytes/(1024*1024))
	}

	mimeType := strings.TrimSpace(strings.Split(best.MimeType, ";")[0])
	if mimeType == "" {
		mimeType = "audio/mp4"
	}
	return audioBytes, mimeType, nil
}

// FormatDuration renders a duration as M:SS or H:MM:SS.
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	if total <= 0 {
		return "Unknown"
	}
	h, m, sec := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
