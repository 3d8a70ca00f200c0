package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/doraapp/dora/internal/cache"
	"github.com/doraapp/dora/internal/model"
)

// Location reads the user's stored location, remote-first. Offline the
// mirror answers; a user with no location at all gets a zero Location and
// SourceLocal, never an error.
func (c *Client) Location(ctx context.Context, userID int64) (model.Location, Source) {
	var loc model.Location
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("/users/%d/location", userID), nil, &loc); err == nil {
		if err := c.cache.Set(cache.KeyUserLocation, loc); err != nil {
			c.logger.Warn("persist location mirror", "error", err)
		}
		return loc, SourceRemote
	}

	c.cache.Get(cache.KeyUserLocation, &loc)
	return loc, SourceLocal
}

// SetLocation writes the user's location remote-first; either way the mirror
// ends up holding the latest value. Never fails.
func (c *Client) SetLocation(ctx context.Context, userID int64, loc model.Location) (model.Location, Source) {
	source := SourceLocal

	var stored model.Location
	if err := c.request(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/location", userID), loc, &stored); err == nil {
		loc = stored
		source = SourceRemote
	}

	if err := c.cache.Set(cache.KeyUserLocation, loc); err != nil {
		c.logger.Warn("persist location mirror", "error", err)
	}
	return loc, source
}
