package handler

import (
	"net/http"

	"github.com/doraapp/dora/internal/visasteps"
)

type StepsHandler struct{}

func NewStepsHandler() *StepsHandler {
	return &StepsHandler{}
}

type stepsResponse struct {
	Steps             []visasteps.Step `json:"steps"`
	Tips              []string         `json:"tips"`
	TotalDuration     string           `json:"total_duration"`
	RequiredDocuments []string         `json:"required_documents"`
}

// Get assembles the visa checklist for a legal status and destination
// country. The rule engine never fails; unknown inputs simply produce a
// shorter checklist.
func (h *StepsHandler) Get(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	country := r.URL.Query().Get("country")
	if status == "" || country == "" {
		writeError(w, http.StatusBadRequest, "status and country are required")
		return
	}

	steps := visasteps.GenerateStepsForUser(status, country)
	writeData(w, http.StatusOK, stepsResponse{
		Steps:             steps,
		Tips:              visasteps.Tips(status, country),
		TotalDuration:     visasteps.CalculateTotalDuration(steps),
		RequiredDocuments: visasteps.RequiredDocuments(status, country),
	})
}
