// Package transcript turns raw lecture transcripts into timestamped segments
// and tracks which segment matches the current playback position.
package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"lectura-dashboard/internal/models"
)

// FormatVersion identifies the "[MM:SS] text" convention shared with the
// media-analysis prompt and Format.
const FormatVersion = 1

// markerPattern matches [MM:SS] and [MMM:SS] (lectures longer than 99 minutes).
var markerPattern = regexp.MustCompile(`\[(\d{2,3}):(\d{2})\]`)

// Parse splits text at timestamp markers. ok is false when the text holds no
// marker at all, which callers render as one unstructured block.
//
// Text before the first marker belongs to no segment and is discarded.
// Markers followed only by whitespace produce no segment. Segments keep input
// order even if the timestamps are not monotonic.
func Parse(text string) (segments []models.TranscriptSegment, ok bool) {
	if text == "" {
		return nil, false
	}

	locs := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil, false
	}

	segments = make([]models.TranscriptSegment, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		content := strings.TrimSpace(text[loc[1]:end])
		if content == "" {
			continue
		}

		minutes, _ := strconv.Atoi(text[loc[2]:loc[3]])
		seconds, _ := strconv.Atoi(text[loc[4]:loc[5]])

		segments = append(segments, models.TranscriptSegment{
			StartSeconds: minutes*60 + seconds,
			DisplayTime:  text[loc[0]+1 : loc[1]-1],
			Text:         content,
		})
	}

	return segments, true
}

// FormatTimestamp renders a position as the marker Parse understands.
func FormatTimestamp(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("[%02d:%02d]", totalSeconds/60, totalSeconds%60)
}

// Cue is a timed caption line used to build a marked transcript.
type Cue struct {
	StartSeconds int
	Text         string
}

// Format writes cues as "[MM:SS] text" lines. Blank cues are skipped.
//
// Minutes are capped at 999 by the marker grammar; later cues are clamped to
// [999:59] so the output always parses.
func Format(cues []Cue) string {
	var b strings.Builder
	for _, c := range cues {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		start := c.StartSeconds
		if start > 999*60+59 {
			start = 999*60 + 59
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTimestamp(start))
		b.WriteString(" ")
		b.WriteString(text)
	}
	return b.String()
}
