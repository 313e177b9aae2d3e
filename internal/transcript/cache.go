package transcript

import (
	"sync"

	"lectura-dashboard/internal/models"
)

type cacheEntry struct {
	text     string
	segments []models.TranscriptSegment
	ok       bool
}

// Cache memoises Parse per lecture and recomputes when the text changes.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

func (c *Cache) Segments(lectureID, text string) ([]models.TranscriptSegment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, hit := c.entries[lectureID]; hit && e.text == text {
		return e.segments, e.ok
	}

	segments, ok := Parse(text)
	c.entries[lectureID] = cacheEntry{text: text, segments: segments, ok: ok}
	return segments, ok
}
