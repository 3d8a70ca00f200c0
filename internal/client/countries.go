package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/doraapp/dora/internal/cache"
	"github.com/doraapp/dora/internal/model"
)

// Countries lists all destination countries, remote-first with a wholesale
// mirror replace. The result is never nil.
func (c *Client) Countries(ctx context.Context) ([]model.Country, Source) {
	var countries []model.Country
	if err := c.request(ctx, http.MethodGet, "/countries", nil, &countries); err == nil {
		if countries == nil {
			countries = []model.Country{}
		}
		if err := c.cache.Set(cache.KeyCountries, countries); err != nil {
			c.logger.Warn("persist countries mirror", "error", err)
		}
		return countries, SourceRemote
	}

	return c.localCountries(), SourceLocal
}

// Country fetches one country by code, scanning the mirror when the backend
// is down.
func (c *Client) Country(ctx context.Context, code string) (*model.Country, Source, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var country model.Country
	if err := c.request(ctx, http.MethodGet, "/countries/"+code, nil, &country); err == nil {
		return &country, SourceRemote, nil
	}

	for _, cc := range c.localCountries() {
		if cc.Code == code {
			return &cc, SourceLocal, nil
		}
	}
	return nil, SourceLocal, ErrNotFound
}

// CheckVisaRequirement reports whether a visa is required for the country.
// Offline, the mirror answers; an unknown country defaults to "required",
// the conservative answer.
func (c *Client) CheckVisaRequirement(ctx context.Context, code string) (bool, Source) {
	country, source, err := c.Country(ctx, code)
	if err != nil {
		return true, SourceLocal
	}
	return country.VisaRequired, source
}

// CountryImages returns the gallery for a country. Presigned URLs expire, so
// they are never mirrored; offline the gallery is simply empty.
func (c *Client) CountryImages(ctx context.Context, code string) ([]model.CountryImage, Source) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var imgs []model.CountryImage
	if err := c.request(ctx, http.MethodGet, "/countries/"+code+"/images", nil, &imgs); err == nil {
		if imgs == nil {
			imgs = []model.CountryImage{}
		}
		return imgs, SourceRemote
	}
	return []model.CountryImage{}, SourceLocal
}

func (c *Client) localCountries() []model.Country {
	var countries []model.Country
	if ok, err := c.cache.Get(cache.KeyCountries, &countries); !ok || err != nil {
		return []model.Country{}
	}
	return countries
}
