// Package recents keeps the bounded most-recently-viewed lecture list.
package recents

import "lectura-dashboard/internal/models"

// Capacity is the maximum number of remembered lectures.
const Capacity = 5

// RecordView moves id to the front of list, dropping duplicates and anything
// beyond Capacity. The input slice is not modified.
func RecordView(list []string, id string) []string {
	out := make([]string, 0, Capacity)
	out = append(out, id)
	seen := map[string]bool{id: true}
	for _, existing := range list {
		if len(out) == Capacity {
			break
		}
		if seen[existing] {
			continue
		}
		seen[existing] = true
		out = append(out, existing)
	}
	return out
}

// Resolve maps IDs to live lectures in list order. IDs with no matching
// lecture are skipped.
func Resolve(list []string, lectures []models.Lecture) []models.Lecture {
	byID := make(map[string]models.Lecture, len(lectures))
	for _, l := range lectures {
		byID[l.ID] = l
	}

	out := make([]models.Lecture, 0, len(list))
	for _, id := range list {
		if l, ok := byID[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Recommended returns up to limit lectures that are not among the resolved recents.
func Recommended(recent, lectures []models.Lecture, limit int) []models.Lecture {
	seen := make(map[string]struct{}, len(recent))
	for _, l := range recent {
		seen[l.ID] = struct{}{}
	}

	out := make([]models.Lecture, 0, limit)
	for _, l := range lectures {
		if len(out) == limit {
			break
		}
		if _, ok := seen[l.ID]; ok {
			continue
		}
		out = append(out, l)
	}
	return out
}
