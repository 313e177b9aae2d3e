package handlers

import (
	"net/http"

	"lectura-dashboard/internal/app"
)

type LibraryHandler struct {
	ctrl *app.Controller
}

func NewLibraryHandler(ctrl *app.Controller) *LibraryHandler {
	return &LibraryHandler{ctrl: ctrl}
}

type librarySearchRequest struct {
	Query string `json:"query"`
}

func (h *LibraryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req librarySearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	answer, err := h.ctrl.SearchLibrary(r.Context(), req.Query)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}
