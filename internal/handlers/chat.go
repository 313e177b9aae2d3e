package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lectura-dashboard/internal/app"
	"lectura-dashboard/internal/models"
)

type ChatHandler struct {
	ctrl *app.Controller
}

func NewChatHandler(ctrl *app.Controller) *ChatHandler {
	return &ChatHandler{ctrl: ctrl}
}

// AskQuestion answers a question about one lecture's transcript. The client
// sends the conversation so far with every request.
func (h *ChatHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := h.ctrl.Chat(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}
