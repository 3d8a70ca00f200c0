package handler

import (
	"net/http"

	"github.com/doraapp/dora/internal/model"
)

// The catalog is static: categories of services a newcomer typically needs.
var serviceCatalog = []model.ServiceEntry{
	{ID: "embassy", Name: "Embassies & Consulates", Category: "official", Query: "embassy"},
	{ID: "immigration-office", Name: "Immigration Offices", Category: "official", Query: "immigration office"},
	{ID: "translator", Name: "Certified Translators", Category: "paperwork", Query: "certified translator"},
	{ID: "photo", Name: "Passport Photos", Category: "paperwork", Query: "passport photo"},
	{ID: "medical", Name: "Panel Physicians", Category: "health", Query: "immigration medical exam"},
	{ID: "language-school", Name: "Language Schools", Category: "education", Query: "language school"},
	{ID: "bank", Name: "Banks", Category: "settling", Query: "bank branch"},
	{ID: "housing", Name: "Housing Agencies", Category: "settling", Query: "rental agency"},
}

type IntegrationHandler struct{}

func NewIntegrationHandler() *IntegrationHandler {
	return &IntegrationHandler{}
}

func (h *IntegrationHandler) Services(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		writeData(w, http.StatusOK, serviceCatalog)
		return
	}

	filtered := []model.ServiceEntry{}
	for _, s := range serviceCatalog {
		if s.Category == category {
			filtered = append(filtered, s)
		}
	}
	writeData(w, http.StatusOK, filtered)
}
