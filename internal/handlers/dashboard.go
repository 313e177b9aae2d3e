package handlers

import (
	"net/http"

	"lectura-dashboard/internal/app"
)

type DashboardHandler struct {
	ctrl *app.Controller
}

func NewDashboardHandler(ctrl *app.Controller) *DashboardHandler {
	return &DashboardHandler{ctrl: ctrl}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Dashboard())
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Stats())
}
