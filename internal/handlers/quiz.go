package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lectura-dashboard/internal/app"
	"lectura-dashboard/internal/quiz"
)

type QuizHandler struct {
	ctrl *app.Controller
}

func NewQuizHandler(ctrl *app.Controller) *QuizHandler {
	return &QuizHandler{ctrl: ctrl}
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.QuizSnapshot())
}

// Command applies one quiz step. Generation runs in the background; the
// client learns about it from the quiz_ready / quiz_failed events or by
// polling Get.
func (h *QuizHandler) Command(w http.ResponseWriter, r *http.Request) {
	var req quiz.CommandRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.ctrl.QuizCommand(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Quiz.State == quiz.StateLoading {
		status = http.StatusAccepted
	}
	writeJSON(w, status, res)
}

// Open starts a quiz for the lecture from the video page.
func (h *QuizHandler) Open(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ctrl.OpenQuiz(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
