package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/doraapp/dora/internal/model"
	"github.com/doraapp/dora/internal/store"
)

// ImageLister resolves the gallery images for a country. Implemented by the
// S3-backed image store; nil-safe at the handler level.
type ImageLister interface {
	List(ctx context.Context, countryCode string) ([]model.CountryImage, error)
}

type CountryHandler struct {
	countryStore *store.CountryStore
	images       ImageLister
	logger       *slog.Logger
}

func NewCountryHandler(cs *store.CountryStore, images ImageLister, logger *slog.Logger) *CountryHandler {
	return &CountryHandler{countryStore: cs, images: images, logger: logger}
}

func (h *CountryHandler) List(w http.ResponseWriter, r *http.Request) {
	countries, err := h.countryStore.List()
	if err != nil {
		h.logger.Error("list countries", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list countries")
		return
	}
	if countries == nil {
		countries = []model.Country{}
	}
	writeData(w, http.StatusOK, countries)
}

func (h *CountryHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	country, err := h.countryStore.GetByCode(code)
	if err != nil {
		h.logger.Error("get country", "code", code, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get country")
		return
	}
	if country == nil {
		writeError(w, http.StatusNotFound, "country not found")
		return
	}
	writeData(w, http.StatusOK, country)
}

// Images returns presigned gallery URLs for a country. An unconfigured image
// store yields an empty list rather than an error.
func (h *CountryHandler) Images(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if h.images == nil {
		writeData(w, http.StatusOK, []model.CountryImage{})
		return
	}

	imgs, err := h.images.List(r.Context(), code)
	if err != nil {
		h.logger.Warn("list country images", "code", code, "error", err)
		writeData(w, http.StatusOK, []model.CountryImage{})
		return
	}
	if imgs == nil {
		imgs = []model.CountryImage{}
	}
	writeData(w, http.StatusOK, imgs)
}
