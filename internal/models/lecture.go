package models

// Lecture is a recorded session in the library.
type Lecture struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Instructor   string `json:"instructor"`
	Date         string `json:"date"`     // display label, e.g. "Oct 12, 2023"
	Duration     string `json:"duration"` // display label, e.g. "10:00"
	Subject      string `json:"subject"`
	ThumbnailURL string `json:"thumbnail_url"`
	VideoURL     string `json:"video_url,omitempty"`
	Transcript   string `json:"transcript"`
	Summary      string `json:"summary,omitempty"`
}

// HasVideo reports whether the lecture declares a playable source at all.
func (l *Lecture) HasVideo() bool {
	return l.VideoURL != ""
}

// TranscriptSegment is a timestamped slice of a transcript. Derived, never persisted.
type TranscriptSegment struct {
	StartSeconds int    `json:"start_seconds"`
	DisplayTime  string `json:"display_time"`
	Text         string `json:"text"`
}

// LectureSummaryView is the lightweight projection sent to the library assistant.
type LectureSummaryView struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Instructor        string `json:"instructor"`
	Subject           string `json:"subject"`
	Summary           string `json:"summary"`
	TranscriptSnippet string `json:"transcript_snippet"`
}

// MediaAnalysis is what the AI returns for an uploaded recording.
type MediaAnalysis struct {
	Summary    string `json:"summary"`
	Transcript string `json:"transcript"`
}

// LibrarySearchResult is the library assistant's reply.
type LibrarySearchResult struct {
	Answer      string   `json:"answer"`
	RelevantIDs []string `json:"relevant_ids"`
}

type UploadMetadata struct {
	ClassName string `json:"class_name"`
	Lecturer  string `json:"lecturer"`
	Date      string `json:"date"` // YYYY-MM-DD
	Duration  string `json:"duration"`
}

type ImportYouTubeRequest struct {
	URL     string `json:"url"`
	Subject string `json:"subject"`
}

type LectureFilter struct {
	Search     string
	Subject    string
	Instructor string
	From       string // YYYY-MM-DD, inclusive
	To         string // YYYY-MM-DD, inclusive
}
