// Package catalog loads the seed lecture collection from YAML.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"lectura-dashboard/internal/models"
)

//go:embed seed.yaml
var defaultSeed []byte

type entry struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	Instructor   string `yaml:"instructor"`
	Date         string `yaml:"date"`
	Duration     string `yaml:"duration"`
	Subject      string `yaml:"subject"`
	ThumbnailURL string `yaml:"thumbnail_url"`
	VideoURL     string `yaml:"video_url"`
	Transcript   string `yaml:"transcript"`
	Summary      string `yaml:"summary"`
}

type seedFile struct {
	Lectures []entry `yaml:"lectures"`
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) ([]models.Lecture, error) {
	if path == "" {
		return Parse(defaultSeed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a catalog document. Every lecture needs a unique, non-empty id.
func Parse(data []byte) ([]models.Lecture, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Lectures))
	lectures := make([]models.Lecture, 0, len(f.Lectures))
	for i, e := range f.Lectures {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, id)
		}
		seen[id] = struct{}{}

		lectures = append(lectures, models.Lecture{
			ID:           id,
			Title:        e.Title,
			Instructor:   e.Instructor,
			Date:         e.Date,
			Duration:     e.Duration,
			Subject:      e.Subject,
			ThumbnailURL: e.ThumbnailURL,
			VideoURL:     e.VideoURL,
			Transcript:   strings.TrimSpace(e.Transcript),
			Summary:      e.Summary,
		})
	}
	return lectures, nil
}
