package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/doraapp/dora/internal/auth"
	"github.com/doraapp/dora/internal/model"
	"github.com/doraapp/dora/internal/store"
	"github.com/doraapp/dora/internal/websocket"
)

type PostHandler struct {
	postStore *store.PostStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewPostHandler(ps *store.PostStore, hub *websocket.Hub, logger *slog.Logger) *PostHandler {
	return &PostHandler{postStore: ps, hub: hub, logger: logger}
}

func (h *PostHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type postRequest struct {
	CountryCode string `json:"country_code"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Status      string `json:"status"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	post, err := h.postStore.Create(auth.UserID(r.Context()), req.CountryCode, req.Title, req.Content)
	if err != nil {
		h.logger.Error("create post", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	h.broadcast(websocket.NewMessage("post", "created", strconv.FormatInt(post.ID, 10), nil))
	writeData(w, http.StatusCreated, post)
}

// List returns approved posts to regular users. Admins may filter by any
// moderation status with ?status=.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.PostApproved
	if auth.IsAdmin(r.Context()) {
		status = r.URL.Query().Get("status")
	}

	posts, err := h.postStore.List(status)
	if err != nil {
		h.logger.Error("list posts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	if posts == nil {
		posts = []model.CommunityPost{}
	}
	writeData(w, http.StatusOK, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	post, err := h.postStore.GetByID(id)
	if err != nil {
		h.logger.Error("get post", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeData(w, http.StatusOK, post)
}

// Moderate handles PATCH: admins move a post between moderation states.
func (h *PostHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !model.ValidPostStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "status must be pending, approved, or rejected")
		return
	}

	post, err := h.postStore.GetByID(id)
	if err != nil {
		h.logger.Error("get post", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	updated, err := h.postStore.SetStatus(id, req.Status)
	if err != nil {
		h.logger.Error("moderate post", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to moderate post")
		return
	}

	h.broadcast(websocket.NewMessage("post", req.Status, strconv.FormatInt(id, 10), nil))
	writeData(w, http.StatusOK, updated)
}

func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	post, err := h.postStore.Like(id)
	if err != nil {
		h.logger.Error("like post", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to like post")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeData(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	post, err := h.postStore.GetByID(id)
	if err != nil {
		h.logger.Error("get post", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if post.AuthorID != auth.UserID(r.Context()) && !auth.IsAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "not your post")
		return
	}

	if err := h.postStore.Delete(id); err != nil {
		h.logger.Error("delete post", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	h.broadcast(websocket.NewMessage("post", "deleted", strconv.FormatInt(id, 10), nil))
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}
