package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lectura-dashboard/internal/app"
	"lectura-dashboard/internal/models"
)

type PlaybackHandler struct {
	ctrl *app.Controller
}

func NewPlaybackHandler(ctrl *app.Controller) *PlaybackHandler {
	return &PlaybackHandler{ctrl: ctrl}
}

type tickRequest struct {
	Time *float64 `json:"time"`
}

type seekRequest struct {
	Segment *int     `json:"segment"`
	Seconds *float64 `json:"seconds"`
}

func (h *PlaybackHandler) Tick(w http.ResponseWriter, r *http.Request) {
	var req tickRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Time == nil {
		handleServiceError(w, r, models.NewValidationError("time", "time is required"))
		return
	}

	tick, err := h.ctrl.PlaybackTick(chi.URLParam(r, "id"), *req.Time)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tick)
}

// Seek accepts either a segment index or an absolute position.
func (h *PlaybackHandler) Seek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	var (
		seek models.SeekRequest
		err  error
	)
	switch {
	case req.Segment != nil:
		seek, err = h.ctrl.SeekSegment(r.Context(), id, *req.Segment)
	case req.Seconds != nil:
		if *req.Seconds < 0 {
			err = models.NewValidationError("seconds", "must not be negative")
			break
		}
		seek, err = h.ctrl.SeekSeconds(r.Context(), id, *req.Seconds)
	default:
		err = models.NewValidationError("segment", "segment or seconds is required")
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seek)
}

// VideoError records that the lecture's video could not be loaded.
func (h *PlaybackHandler) VideoError(w http.ResponseWriter, r *http.Request) {
	detail, err := h.ctrl.ReportVideoError(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
