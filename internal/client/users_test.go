package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doraapp/dora/internal/cache"
	"github.com/doraapp/dora/internal/model"
)

func TestUsersRemoteReplacesMirror(t *testing.T) {
	mux := healthyMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, []model.User{
			{ID: 1, Email: "amina@example.com", FullName: "Amina Diallo"},
			{ID: 2, Email: "jo@example.com", FullName: "Jo Tremblay"},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	if err := c.cache.Set(cache.KeyUsers, []model.User{{ID: 9, Email: "stale@example.com"}}); err != nil {
		t.Fatalf("seed mirror: %v", err)
	}

	users, source := c.Users(context.Background())
	if source != SourceRemote {
		t.Errorf("source = %v, want remote", source)
	}
	if len(users) != 2 || users[0].Email != "amina@example.com" {
		t.Errorf("users = %+v, want the server's two", users)
	}

	server.Close()
	users, source = c.Users(context.Background())
	if source != SourceLocal {
		t.Errorf("fallback source = %v, want local", source)
	}
	if len(users) != 2 || users[1].FullName != "Jo Tremblay" {
		t.Errorf("mirror = %+v, want the replaced remote list", users)
	}
}

func TestUsersEmptyMirrorNotNil(t *testing.T) {
	c := deadClient(t)

	users, source := c.Users(context.Background())
	if source != SourceLocal {
		t.Errorf("source = %v, want local", source)
	}
	if users == nil {
		t.Error("users is nil, want empty slice")
	}
	if len(users) != 0 {
		t.Errorf("users = %+v, want none", users)
	}
}
