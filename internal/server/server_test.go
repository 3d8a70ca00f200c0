package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/doraapp/dora/internal/database"
	"github.com/doraapp/dora/internal/model"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, Config{JWTSecret: []byte("test-secret")}, logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, apiEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func registerUser(t *testing.T, baseURL string) string {
	t.Helper()
	resp, env := doJSON(t, http.MethodPost, baseURL+"/auth/register", "", map[string]string{
		"email":               "test@example.com",
		"password":            "hunter2hunter2",
		"full_name":           "Test User",
		"legal_status":        "student",
		"destination_country": "CA",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status = %d, message = %q", resp.StatusCode, env.Message)
	}
	var auth struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &auth); err != nil {
		t.Fatalf("decode auth data: %v", err)
	}
	if auth.Token == "" {
		t.Fatal("register returned no token")
	}
	return auth.Token
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/health", "", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Errorf("health: status = %d success = %v", resp.StatusCode, env.Success)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/applications", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if env.Success {
		t.Error("unauthorized response must not claim success")
	}
}

func TestRegisterLoginAndApplicationLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts.URL)

	// Login with the same credentials
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{
		"email":    "test@example.com",
		"password": "hunter2hunter2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status = %d", resp.StatusCode)
	}

	// Create an application
	resp, env := doJSON(t, http.MethodPost, ts.URL+"/applications", token, map[string]any{
		"destination_country": "CA",
		"visa_type":           "study",
		"total_steps":         4,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create application: status = %d, message = %q", resp.StatusCode, env.Message)
	}
	var app model.VisaApplication
	if err := json.Unmarshal(env.Data, &app); err != nil {
		t.Fatalf("decode application: %v", err)
	}
	if app.Status != model.AppDraft || app.CurrentStep != 1 {
		t.Errorf("new application = %+v, want draft at step 1", app)
	}

	// Advance to the final step
	resp, env = doJSON(t, http.MethodPatch, ts.URL+"/applications/"+app.ID+"/step", token, map[string]any{
		"step": 4,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update step: status = %d, message = %q", resp.StatusCode, env.Message)
	}
	if err := json.Unmarshal(env.Data, &app); err != nil {
		t.Fatalf("decode application: %v", err)
	}
	if app.Status != model.AppSubmitted {
		t.Errorf("status = %q, want submitted at final step", app.Status)
	}
	if app.ProgressPercentage != 100 {
		t.Errorf("progress = %d, want 100", app.ProgressPercentage)
	}

	// Delete it
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/applications/"+app.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/applications/"+app.ID, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want 404", resp.StatusCode)
	}
}

func TestVisaStepsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/visa-steps?status=student&country=CA", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("visa-steps: status = %d", resp.StatusCode)
	}
	var data struct {
		Steps         []struct{ ID int } `json:"steps"`
		TotalDuration string             `json:"total_duration"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode steps: %v", err)
	}
	if len(data.Steps) == 0 {
		t.Fatal("expected a non-empty checklist for student/CA")
	}
	if data.TotalDuration == "" {
		t.Error("expected a rendered total duration")
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/visa-steps?status=student", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing country: status = %d, want 400", resp.StatusCode)
	}
}

func TestModerationRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts.URL)

	// Create a post as a regular user
	resp, env := doJSON(t, http.MethodPost, ts.URL+"/community-posts", token, map[string]string{
		"country_code": "CA",
		"title":        "Timeline question",
		"content":      "How long did your study permit take?",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post: status = %d, message = %q", resp.StatusCode, env.Message)
	}
	var post model.CommunityPost
	if err := json.Unmarshal(env.Data, &post); err != nil {
		t.Fatalf("decode post: %v", err)
	}

	// A non-admin cannot moderate
	resp, _ = doJSON(t, http.MethodPatch, ts.URL+"/community-posts/"+strconv.FormatInt(post.ID, 10), token, map[string]string{
		"status": model.PostApproved,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("moderate as user: status = %d, want 403", resp.StatusCode)
	}
}

func TestUserListRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts.URL)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/users", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("list users as user: status = %d, want 403", resp.StatusCode)
	}
}
