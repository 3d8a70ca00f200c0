package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/doraapp/dora/internal/auth"
	"github.com/doraapp/dora/internal/model"
	"github.com/doraapp/dora/internal/store"
)

const tokenValidity = 24 * time.Hour

type AuthHandler struct {
	userStore *store.UserStore
	secret    []byte
	logger    *slog.Logger
}

func NewAuthHandler(us *store.UserStore, secret []byte, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{userStore: us, secret: secret, logger: logger}
}

type registerRequest struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	FullName           string `json:"full_name"`
	LegalStatus        string `json:"legal_status"`
	DestinationCountry string `json:"destination_country"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if req.LegalStatus == "" {
		req.LegalStatus = model.StatusTourist
	}

	existing, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user, err := h.userStore.Create(req.Email, hash, req.FullName, req.LegalStatus, req.DestinationCountry)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Role, h.secret, tokenValidity)
	if err != nil {
		h.logger.Error("generate token", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeData(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.userStore.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		h.logger.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Role, h.secret, tokenValidity)
	if err != nil {
		h.logger.Error("generate token", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeData(w, http.StatusOK, authResponse{Token: token, User: user})
}
