package app

import (
	"context"
	"strings"
	"time"

	"lectura-dashboard/internal/models"
	"lectura-dashboard/internal/recents"
	"lectura-dashboard/internal/services"
)

const (
	filterDateLayout  = "2006-01-02"
	lectureDateLayout = "Jan 2, 2006"
	allFacet          = "All"
)

type Facets struct {
	Subjects    []string `json:"subjects"`
	Instructors []string `json:"instructors"`
}

// LibraryAnswer is the library assistant reply with its lectures resolved.
type LibraryAnswer struct {
	Answer   string           `json:"answer"`
	Lectures []models.Lecture `json:"lectures"`
}

// Lectures returns the collection filtered by f, in collection order.
func (c *Controller) Lectures(f models.LectureFilter) ([]models.Lecture, error) {
	c.mu.Lock()
	all := c.snapshotLectures()
	c.mu.Unlock()
	return FilterLectures(all, f)
}

func (c *Controller) Facets() Facets {
	c.mu.Lock()
	defer c.mu.Unlock()
	return BuildFacets(c.lectures)
}

// SearchLibrary asks the assistant which lectures match query. IDs the
// assistant returns that are not in the collection are dropped.
func (c *Controller) SearchLibrary(ctx context.Context, query string) (LibraryAnswer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return LibraryAnswer{}, models.NewValidationError("query", "query is required")
	}

	c.mu.Lock()
	corpus := services.LibraryContext(c.lectures)
	c.mu.Unlock()

	result := c.assistant.SearchLibrary(ctx, query, corpus)

	c.mu.Lock()
	matched := recents.Resolve(result.RelevantIDs, c.lectures)
	c.mu.Unlock()

	return LibraryAnswer{Answer: result.Answer, Lectures: matched}, nil
}

// FilterLectures applies the library filters. Search matches title,
// instructor or transcript case-insensitively; subject and instructor match
// exactly unless empty or "All"; dates are inclusive and lectures with an
// unreadable date never match a date filter.
func FilterLectures(lectures []models.Lecture, f models.LectureFilter) ([]models.Lecture, error) {
	from, err := parseFilterDate("from", f.From)
	if err != nil {
		return nil, err
	}
	to, err := parseFilterDate("to", f.To)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Lecture, 0, len(lectures))
	for _, l := range lectures {
		if term != "" &&
			!strings.Contains(strings.ToLower(l.Title), term) &&
			!strings.Contains(strings.ToLower(l.Instructor), term) &&
			!strings.Contains(strings.ToLower(l.Transcript), term) {
			continue
		}
		if !facetMatches(f.Subject, l.Subject) || !facetMatches(f.Instructor, l.Instructor) {
			continue
		}
		if !from.IsZero() || !to.IsZero() {
			d, err := time.Parse(lectureDateLayout, l.Date)
			if err != nil {
				continue
			}
			if !from.IsZero() && d.Before(from) {
				continue
			}
			if !to.IsZero() && d.After(to) {
				continue
			}
		}
		out = append(out, l)
	}
	return out, nil
}

func facetMatches(want, got string) bool {
	return want == "" || want == allFacet || want == got
}

func parseFilterDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(filterDateLayout, v)
	if err != nil {
		return time.Time{}, models.NewValidationError(field, "date must be YYYY-MM-DD")
	}
	return t, nil
}

// BuildFacets lists distinct subjects and instructors in first-seen order,
// each headed by "All".
func BuildFacets(lectures []models.Lecture) Facets {
	f := Facets{Subjects: []string{allFacet}, Instructors: []string{allFacet}}
	seenSubject := map[string]bool{}
	seenInstructor := map[string]bool{}
	for _, l := range lectures {
		if !seenSubject[l.Subject] {
			seenSubject[l.Subject] = true
			f.Subjects = append(f.Subjects, l.Subject)
		}
		if !seenInstructor[l.Instructor] {
			seenInstructor[l.Instructor] = true
			f.Instructors = append(f.Instructors, l.Instructor)
		}
	}
	return f
}
