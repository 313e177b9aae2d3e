package handlers

import (
	"net/http"

	"lectura-dashboard/internal/app"
	"lectura-dashboard/internal/models"
)

type SettingsHandler struct {
	ctrl *app.Controller
}

func NewSettingsHandler(ctrl *app.Controller) *SettingsHandler {
	return &SettingsHandler{ctrl: ctrl}
}

type themeRequest struct {
	Theme models.Theme `json:"theme"`
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Settings())
}

func (h *SettingsHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	settings, err := h.ctrl.SetTheme(r.Context(), req.Theme)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	settings, err := h.ctrl.ToggleTheme(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) SetQuizDefaults(w http.ResponseWriter, r *http.Request) {
	var req models.QuizDefaults
	if !decodeJSON(w, r, &req) {
		return
	}
	settings, err := h.ctrl.SetQuizDefaults(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
