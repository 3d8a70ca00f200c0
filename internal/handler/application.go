package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/doraapp/dora/internal/auth"
	"github.com/doraapp/dora/internal/model"
	"github.com/doraapp/dora/internal/store"
	"github.com/doraapp/dora/internal/websocket"
)

type ApplicationHandler struct {
	appStore *store.ApplicationStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewApplicationHandler(as *store.ApplicationStore, hub *websocket.Hub, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{appStore: as, hub: hub, logger: logger}
}

func (h *ApplicationHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type applicationRequest struct {
	DestinationCountry string          `json:"destination_country"`
	VisaType           string          `json:"visa_type"`
	TotalSteps         int             `json:"total_steps"`
	Status             string          `json:"status"`
	CurrentStep        int             `json:"current_step"`
	DocumentsInfo      map[string]bool `json:"documents_info"`
}

type stepRequest struct {
	Step          int             `json:"step"`
	DocumentsInfo map[string]bool `json:"documents_info"`
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.DestinationCountry == "" {
		writeError(w, http.StatusBadRequest, "destination_country is required")
		return
	}

	app, err := h.appStore.Create(auth.UserID(r.Context()), req.DestinationCountry, req.VisaType, req.TotalSteps)
	if err != nil {
		h.logger.Error("create application", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create application")
		return
	}

	h.broadcast(websocket.NewMessage("application", "created", app.ID, nil))
	writeData(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.appStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list applications", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	if apps == nil {
		apps = []model.VisaApplication{}
	}
	writeData(w, http.StatusOK, apps)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, ok := h.ownedApplication(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, app)
}

// Update accepts full or partial field updates. Status transitions asserted by
// the admin panel (processing, approved, rejected, expired) arrive here as
// plain field updates and are accepted as-is.
func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	app, ok := h.ownedApplication(w, r)
	if !ok {
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.DestinationCountry != "" {
		app.DestinationCountry = req.DestinationCountry
	}
	if req.VisaType != "" {
		app.VisaType = req.VisaType
	}
	if req.TotalSteps > 0 {
		app.TotalSteps = req.TotalSteps
	}
	if req.CurrentStep > 0 {
		app.CurrentStep = req.CurrentStep
	}
	if req.Status != "" {
		if !model.ValidAppStatus(req.Status) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		app.Status = req.Status
	}
	if req.DocumentsInfo != nil {
		app.DocumentsInfo = req.DocumentsInfo
	}

	updated, err := h.appStore.Update(app)
	if err != nil {
		h.logger.Error("update application", "id", app.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update application")
		return
	}

	h.broadcast(websocket.NewMessage("application", "updated", updated.ID, map[string]any{"status": updated.Status}))
	writeData(w, http.StatusOK, updated)
}

// UpdateStep advances the wizard. Progress and status are derived server-side
// so the percentage invariant holds regardless of what the client sends.
func (h *ApplicationHandler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	app, ok := h.ownedApplication(w, r)
	if !ok {
		return
	}

	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Step < 1 || req.Step > app.TotalSteps {
		writeError(w, http.StatusBadRequest, "step out of range")
		return
	}

	updated, err := h.appStore.UpdateStep(app.ID, req.Step, req.DocumentsInfo)
	if err != nil {
		h.logger.Error("update step", "id", app.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update step")
		return
	}

	h.broadcast(websocket.NewMessage("application", "step", updated.ID, map[string]any{
		"current_step": updated.CurrentStep,
		"status":       updated.Status,
	}))
	writeData(w, http.StatusOK, updated)
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	app, ok := h.ownedApplication(w, r)
	if !ok {
		return
	}

	if err := h.appStore.Delete(app.ID); err != nil {
		h.logger.Error("delete application", "id", app.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete application")
		return
	}

	h.broadcast(websocket.NewMessage("application", "deleted", app.ID, nil))
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ownedApplication loads the application in the path and enforces ownership
// (admins may access any application).
func (h *ApplicationHandler) ownedApplication(w http.ResponseWriter, r *http.Request) (*model.VisaApplication, bool) {
	id := r.PathValue("id")
	app, err := h.appStore.GetByID(id)
	if err != nil {
		h.logger.Error("get application", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get application")
		return nil, false
	}
	if app == nil {
		writeError(w, http.StatusNotFound, "application not found")
		return nil, false
	}
	if app.UserID != auth.UserID(r.Context()) && !auth.IsAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "not your application")
		return nil, false
	}
	return app, true
}
