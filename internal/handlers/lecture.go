package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lectura-dashboard/internal/app"
	"lectura-dashboard/internal/models"
)

type LectureHandler struct {
	ctrl *app.Controller
}

func NewLectureHandler(ctrl *app.Controller) *LectureHandler {
	return &LectureHandler{ctrl: ctrl}
}

func (h *LectureHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lectures, err := h.ctrl.Lectures(models.LectureFilter{
		Search:     q.Get("q"),
		Subject:    q.Get("subject"),
		Instructor: q.Get("instructor"),
		From:       q.Get("from"),
		To:         q.Get("to"),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"lectures": lectures})
}

func (h *LectureHandler) Facets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Facets())
}

func (h *LectureHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.ctrl.Lecture(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// View marks the lecture as opened by the learner.
func (h *LectureHandler) View(w http.ResponseWriter, r *http.Request) {
	detail, err := h.ctrl.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *LectureHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ctrl.Summarize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}
