package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/doraapp/dora/internal/auth"
	"github.com/doraapp/dora/internal/model"
	"github.com/doraapp/dora/internal/store"
)

type UserHandler struct {
	userStore *store.UserStore
	logger    *slog.Logger
}

func NewUserHandler(us *store.UserStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{userStore: us, logger: logger}
}

// List returns every registered user for the admin panel. The route carries
// the admin check.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStore.List()
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeData(w, http.StatusOK, users)
}

// GetLocation returns the stored location for a user. Users may only read
// their own location unless they are admins.
func (h *UserHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	user, ok := h.ownedUser(w, r)
	if !ok {
		return
	}
	if user.Location == nil {
		writeError(w, http.StatusNotFound, "no location set")
		return
	}
	writeData(w, http.StatusOK, user.Location)
}

func (h *UserHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	user, ok := h.ownedUser(w, r)
	if !ok {
		return
	}

	var loc model.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		writeError(w, http.StatusBadRequest, "coordinates out of range")
		return
	}

	updated, err := h.userStore.SetLocation(user.ID, loc)
	if err != nil {
		h.logger.Error("set location", "id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set location")
		return
	}
	writeData(w, http.StatusOK, updated.Location)
}

func (h *UserHandler) ownedUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	if id != auth.UserID(r.Context()) && !auth.IsAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "not your profile")
		return nil, false
	}

	user, err := h.userStore.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return nil, false
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	return user, true
}
