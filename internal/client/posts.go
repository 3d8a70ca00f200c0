package client

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/doraapp/dora/internal/cache"
	"github.com/doraapp/dora/internal/model"
)

// Posts lists community posts, remote-first with a wholesale mirror replace.
// The result is never nil.
func (c *Client) Posts(ctx context.Context) ([]model.CommunityPost, Source) {
	var posts []model.CommunityPost
	if err := c.request(ctx, http.MethodGet, "/community-posts", nil, &posts); err == nil {
		if posts == nil {
			posts = []model.CommunityPost{}
		}
		c.persistPosts(posts)
		return posts, SourceRemote
	}

	return c.localPosts(), SourceLocal
}

// Post fetches one post by id, scanning the mirror when the backend is down.
func (c *Client) Post(ctx context.Context, id int64) (*model.CommunityPost, Source, error) {
	var post model.CommunityPost
	if err := c.request(ctx, http.MethodGet, "/community-posts/"+strconv.FormatInt(id, 10), nil, &post); err == nil {
		return &post, SourceRemote, nil
	}

	for _, p := range c.localPosts() {
		if p.ID == id {
			return &p, SourceLocal, nil
		}
	}
	return nil, SourceLocal, ErrNotFound
}

// NewPost describes a create request.
type NewPost struct {
	CountryCode string `json:"country_code"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}

// CreatePost submits a post remote-first. Offline, a pending post with a
// negative synthetic id is kept in the mirror; negative ids cannot collide
// with server-assigned ones.
func (c *Client) CreatePost(ctx context.Context, req NewPost) (*model.CommunityPost, Source) {
	var post model.CommunityPost
	if err := c.request(ctx, http.MethodPost, "/community-posts", req, &post); err == nil {
		c.persistPosts(prependPost(post, c.localPosts()))
		return &post, SourceRemote
	}

	now := time.Now().UTC()
	posts := c.localPosts()
	local := model.CommunityPost{
		ID:          nextLocalPostID(posts),
		CountryCode: req.CountryCode,
		Title:       req.Title,
		Content:     req.Content,
		Status:      model.PostPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.persistPosts(prependPost(local, posts))
	return &local, SourceLocal
}

// PostUpdate carries the fields an update may change; moderation arrives as
// a status update. Nil pointers leave the field alone.
type PostUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Status  *string `json:"status,omitempty"`
}

// UpdatePost applies a partial update remote-first; on failure the partial
// is spliced straight into the mirror. ErrNotFound only when no local or
// remote record with the id exists.
func (c *Client) UpdatePost(ctx context.Context, id int64, upd PostUpdate) (*model.CommunityPost, Source, error) {
	var post model.CommunityPost
	if err := c.request(ctx, http.MethodPatch, "/community-posts/"+strconv.FormatInt(id, 10), upd, &post); err == nil {
		c.persistPosts(splicePost(post, c.localPosts()))
		return &post, SourceRemote, nil
	}

	posts := c.localPosts()
	for i := range posts {
		if posts[i].ID != id {
			continue
		}
		if upd.Title != nil {
			posts[i].Title = *upd.Title
		}
		if upd.Content != nil {
			posts[i].Content = *upd.Content
		}
		if upd.Status != nil {
			posts[i].Status = *upd.Status
		}
		posts[i].UpdatedAt = time.Now().UTC()
		c.persistPosts(posts)
		local := posts[i]
		return &local, SourceLocal, nil
	}
	return nil, SourceLocal, ErrNotFound
}

// ModeratePost approves or rejects a post, which is a status-only update.
func (c *Client) ModeratePost(ctx context.Context, id int64, status string) (*model.CommunityPost, Source, error) {
	return c.UpdatePost(ctx, id, PostUpdate{Status: &status})
}

// LikePost bumps the like counter. Offline the bump lands on the mirror copy
// only; ErrNotFound when neither side knows the post.
func (c *Client) LikePost(ctx context.Context, id int64) (*model.CommunityPost, Source, error) {
	var post model.CommunityPost
	if err := c.request(ctx, http.MethodPost, "/community-posts/"+strconv.FormatInt(id, 10)+"/like", nil, &post); err == nil {
		c.persistPosts(splicePost(post, c.localPosts()))
		return &post, SourceRemote, nil
	}

	posts := c.localPosts()
	for i := range posts {
		if posts[i].ID == id {
			posts[i].Likes++
			posts[i].UpdatedAt = time.Now().UTC()
			c.persistPosts(posts)
			local := posts[i]
			return &local, SourceLocal, nil
		}
	}
	return nil, SourceLocal, ErrNotFound
}

// DeletePost removes a post; the mirror entry goes away regardless of the
// remote outcome. Idempotent, always true.
func (c *Client) DeletePost(ctx context.Context, id int64) bool {
	c.request(ctx, http.MethodDelete, "/community-posts/"+strconv.FormatInt(id, 10), nil, nil)

	posts := c.localPosts()
	kept := posts[:0]
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.persistPosts(kept)
	return true
}

func (c *Client) localPosts() []model.CommunityPost {
	var posts []model.CommunityPost
	if ok, err := c.cache.Get(cache.KeyPosts, &posts); !ok || err != nil {
		return []model.CommunityPost{}
	}
	return posts
}

func (c *Client) persistPosts(posts []model.CommunityPost) {
	if err := c.cache.Set(cache.KeyPosts, posts); err != nil {
		c.logger.Warn("persist posts mirror", "error", err)
	}
}

// nextLocalPostID returns the next synthetic id for an offline post: one
// below the lowest id already mirrored, so the sequence -1, -2, ... is
// deterministic and rapid offline creates never collide.
func nextLocalPostID(posts []model.CommunityPost) int64 {
	var low int64
	for _, p := range posts {
		if p.ID < low {
			low = p.ID
		}
	}
	return low - 1
}

func prependPost(post model.CommunityPost, posts []model.CommunityPost) []model.CommunityPost {
	return append([]model.CommunityPost{post}, posts...)
}

func splicePost(post model.CommunityPost, posts []model.CommunityPost) []model.CommunityPost {
	for i := range posts {
		if posts[i].ID == post.ID {
			posts[i] = post
			return posts
		}
	}
	return prependPost(post, posts)
}
