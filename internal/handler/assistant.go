package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/doraapp/dora/internal/chatbot"
)

type AssistantHandler struct {
	svc *chatbot.Service
}

func NewAssistantHandler(svc *chatbot.Service) *AssistantHandler {
	return &AssistantHandler{svc: svc}
}

type askRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

// Ask forwards a user question to the assistant. The service degrades to a
// canned reply on any upstream failure, so this endpoint never reports one.
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := h.svc.Ask(r.Context(), req.Message, req.Context)
	writeData(w, http.StatusOK, askResponse{Reply: reply})
}
