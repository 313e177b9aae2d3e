package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lectura-dashboard/internal/models"
	"lectura-dashboard/internal/services"
)

type fakeVideos struct {
	video       *services.YouTubeVideo
	fetchErr    error
	audio       []byte
	downloadErr error
	downloads   int
}

func (f *fakeVideos) Fetch(context.Context, string) (*services.YouTubeVideo, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	v := *f.video
	return &v, nil
}

func (f *fakeVideos) DownloadAudio(context.Context, string) ([]byte, string, error) {
	f.downloads++
	return f.audio, "audio/mp4", f.downloadErr
}

func validMeta() models.UploadMetadata {
	return models.UploadMetadata{ClassName: "Chemistry", Lecturer: "Dr. Curie", Date: "2024-02-05", Duration: "45:00"}
}

func TestUpload_StoresAnalysis(t *testing.T) {
	h := newHarness(t)
	media, err := NewMediaStore(t.TempDir(), "/media/")
	if err != nil {
		t.Fatal(err)
	}
	h.ctrl.media = media
	h.assistant.analysis = models.MediaAnalysis{Summary: "Radioactivity.", Transcript: "[00:00] Hello."}

	l, err := h.ctrl.Upload(context.Background(), MediaUpload{
		Meta: validMeta(), Filename: "lecture.mp4", MIMEType: "video/mp4", Data: []byte("video"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(l.ID, "upload-") {
		t.Errorf("unexpected id %q", l.ID)
	}
	if l.Title != "Chemistry: Lecture 2024-02-05" || l.Date != "Feb 5, 2024" || l.Subject != "Chemistry" {
		t.Errorf("unexpected lecture %+v", l)
	}
	if !strings.HasPrefix(l.VideoURL, "/media/") || !strings.HasSuffix(l.VideoURL, ".mp4") {
		t.Errorf("unexpected video url %q", l.VideoURL)
	}
	if _, err := os.Stat(filepath.Join(media.Dir(), filepath.Base(l.VideoURL))); err != nil {
		t.Errorf("media not written: %v", err)
	}

	all, _ := h.ctrl.Lectures(models.LectureFilter{})
	if all[0].ID != l.ID {
		t.Error("upload should be prepended")
	}
	if !h.events.has(models.EventLectureAdded) {
		t.Error("expected lecture_added event")
	}
}

func TestUpload_AnalysisFailureUsesFallbacks(t *testing.T) {
	h := newHarness(t)
	h.assistant.analysisErr = errors.New("quota exceeded")

	l, err := h.ctrl.Upload(context.Background(), MediaUpload{Meta: validMeta(), Filename: "a.mp4", Data: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	if l.Summary != services.FallbackSummary || l.Transcript != services.FallbackTranscription {
		t.Errorf("expected fallback texts, got %+v", l)
	}
}

func TestUpload_Validation(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name  string
		up    MediaUpload
		field string
	}{
		{"missing class", MediaUpload{Meta: models.UploadMetadata{Lecturer: "x", Date: "2024-01-01"}, Data: []byte("x")}, "class_name"},
		{"missing lecturer", MediaUpload{Meta: models.UploadMetadata{ClassName: "x", Date: "2024-01-01"}, Data: []byte("x")}, "lecturer"},
		{"bad date", MediaUpload{Meta: models.UploadMetadata{ClassName: "x", Lecturer: "y", Date: "05/02/2024"}, Data: []byte("x")}, "date"},
		{"empty file", MediaUpload{Meta: validMeta()}, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.ctrl.Upload(context.Background(), tt.up)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected field %q, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestImportTranscript(t *testing.T) {
	h := newHarness(t)

	l, err := h.ctrl.ImportTranscript(context.Background(), TranscriptUpload{
		Meta:     validMeta(),
		Subject:  "Science",
		Filename: "notes.txt",
		Data:     []byte("  Polonium and radium.  "),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(l.ID, "transcript-") || l.Subject != "Science" || l.Summary != "" {
		t.Errorf("unexpected lecture %+v", l)
	}
	if l.Transcript != "Polonium and radium." {
		t.Errorf("unexpected transcript %q", l.Transcript)
	}

	_, err = h.ctrl.ImportTranscript(context.Background(), TranscriptUpload{Meta: validMeta(), Filename: "notes.odt", Data: []byte("x")})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected validation error for unsupported file, got %v", err)
	}
}

func TestImportYouTube(t *testing.T) {
	h := newHarness(t)
	videos := &fakeVideos{video: &services.YouTubeVideo{
		ID: "abc123", Title: "Entropy", Channel: "PhysicsTV",
		Duration: 3*time.Minute + 5*time.Second, Transcript: "[00:00] Heat flows.", Timed: true,
	}}
	h.ctrl.videos = videos
	ctx := context.Background()

	l, created, err := h.ctrl.ImportYouTube(ctx, models.ImportYouTubeRequest{URL: "https://youtu.be/abc123"})
	if err != nil {
		t.Fatal(err)
	}
	if !created || l.ID != "youtube-abc123" || l.Duration != "3:05" || l.Date != "Mar 14, 2026" {
		t.Errorf("unexpected import %+v (created=%v)", l, created)
	}
	if videos.downloads != 0 {
		t.Error("captions present, audio should not be downloaded")
	}

	again, created, err := h.ctrl.ImportYouTube(ctx, models.ImportYouTubeRequest{URL: "https://youtu.be/abc123"})
	if err != nil || created || again.ID != l.ID {
		t.Errorf("expected existing lecture, got %+v created=%v err=%v", again, created, err)
	}
}

func TestImportYouTube_TranscribesAudioWithoutCaptions(t *testing.T) {
	h := newHarness(t)
	h.ctrl.videos = &fakeVideos{
		video: &services.YouTubeVideo{ID: "nocap", Title: "Silent"},
		audio: []byte("audio"),
	}
	h.assistant.analysis = models.MediaAnalysis{Summary: "Sum.", Transcript: "Spoken words."}

	l, _, err := h.ctrl.ImportYouTube(context.Background(), models.ImportYouTubeRequest{URL: "https://youtu.be/nocap"})
	if err != nil {
		t.Fatal(err)
	}
	if l.Transcript != "Spoken words." || l.Summary != "Sum." {
		t.Errorf("unexpected lecture %+v", l)
	}
}

func TestImportYouTube_DownloadFailure(t *testing.T) {
	h := newHarness(t)
	h.ctrl.videos = &fakeVideos{
		video:       &services.YouTubeVideo{ID: "broken", Title: "Broken"},
		downloadErr: errors.New("403"),
	}

	l, _, err := h.ctrl.ImportYouTube(context.Background(), models.ImportYouTubeRequest{URL: "https://youtu.be/broken"})
	if err != nil {
		t.Fatal(err)
	}
	if l.Transcript != services.FallbackTranscription {
		t.Errorf("expected fallback transcript, got %q", l.Transcript)
	}
}

func TestImportYouTube_Validation(t *testing.T) {
	h := newHarness(t)
	h.ctrl.videos = &fakeVideos{fetchErr: errors.New("invalid video id")}

	var verr *models.ValidationError
	if _, _, err := h.ctrl.ImportYouTube(context.Background(), models.ImportYouTubeRequest{}); !errors.As(err, &verr) {
		t.Errorf("expected validation error for empty url, got %v", err)
	}
	if _, _, err := h.ctrl.ImportYouTube(context.Background(), models.ImportYouTubeRequest{URL: "nope"}); !errors.As(err, &verr) {
		t.Errorf("expected validation error for bad url, got %v", err)
	}
}
