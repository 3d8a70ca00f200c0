package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/doraapp/dora/internal/cache"
	"github.com/doraapp/dora/internal/model"
)

// The services catalog is small and static, so a baked-in copy backs the
// places search when both the backend and the mirror come up empty.
var fallbackServices = []model.ServiceEntry{
	{ID: "embassy", Name: "Embassies & Consulates", Category: "official", Query: "embassy"},
	{ID: "immigration-office", Name: "Immigration Offices", Category: "official", Query: "immigration office"},
	{ID: "translator", Name: "Certified Translators", Category: "paperwork", Query: "certified translator"},
	{ID: "bank", Name: "Banks", Category: "settling", Query: "bank branch"},
}

// Services returns the nearby-services catalog for the places search,
// remote-first, then mirror, then the baked-in fallback. Never empty-handed
// unless a category filter matches nothing.
func (c *Client) Services(ctx context.Context, category string) ([]model.ServiceEntry, Source) {
	path := "/integration/services"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}

	var services []model.ServiceEntry
	if err := c.request(ctx, http.MethodGet, path, nil, &services); err == nil {
		if services == nil {
			services = []model.ServiceEntry{}
		}
		if category == "" {
			if err := c.cache.Set(cache.KeyServices, services); err != nil {
				c.logger.Warn("persist services mirror", "error", err)
			}
		}
		return services, SourceRemote
	}

	var mirror []model.ServiceEntry
	if ok, err := c.cache.Get(cache.KeyServices, &mirror); !ok || err != nil || len(mirror) == 0 {
		mirror = fallbackServices
	}
	if category == "" {
		return mirror, SourceLocal
	}

	filtered := []model.ServiceEntry{}
	for _, s := range mirror {
		if s.Category == category {
			filtered = append(filtered, s)
		}
	}
	return filtered, SourceLocal
}
