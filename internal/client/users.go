package client

import (
	"context"
	"net/http"

	"github.com/doraapp/dora/internal/cache"
	"github.com/doraapp/dora/internal/model"
)

// Users lists all registered users for the admin panel, remote-first with a
// wholesale mirror replace. The result is never nil.
func (c *Client) Users(ctx context.Context) ([]model.User, Source) {
	var users []model.User
	if err := c.request(ctx, http.MethodGet, "/users", nil, &users); err == nil {
		if users == nil {
			users = []model.User{}
		}
		if err := c.cache.Set(cache.KeyUsers, users); err != nil {
			c.logger.Warn("persist users mirror", "error", err)
		}
		return users, SourceRemote
	}

	var mirror []model.User
	if ok, err := c.cache.Get(cache.KeyUsers, &mirror); !ok || err != nil || mirror == nil {
		mirror = []model.User{}
	}
	return mirror, SourceLocal
}
