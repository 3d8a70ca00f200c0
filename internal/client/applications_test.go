package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doraapp/dora/internal/model"
)

// deadServer returns a client pointed at a server that is already closed, so
// every remote attempt fails.
func deadClient(t *testing.T) *Client {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	return newTestClient(t, server.URL)
}

func TestApplicationsRemoteReplacesMirror(t *testing.T) {
	remote := []model.VisaApplication{
		{ID: "r1", Status: model.AppSubmitted},
		{ID: "r2", Status: model.AppDraft},
	}
	mux := healthyMux()
	mux.HandleFunc("GET /applications", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, remote)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	// Seed a stale mirror that must be overwritten
	c.persistApplications([]model.VisaApplication{{ID: "stale"}})

	apps, source := c.Applications(context.Background())
	if source != SourceRemote {
		t.Errorf("source = %v, want remote", source)
	}
	if len(apps) != 2 || apps[0].ID != "r1" {
		t.Errorf("apps = %+v, want remote list", apps)
	}

	mirror := c.localApplications()
	if len(mirror) != 2 || mirror[0].ID != "r1" {
		t.Errorf("mirror = %+v, want remote list", mirror)
	}
}

func TestApplicationsFallbackIsIdempotent(t *testing.T) {
	c := deadClient(t)
	c.persistApplications([]model.VisaApplication{{ID: "cached", Status: model.AppDraft}})

	first, source := c.Applications(context.Background())
	if source != SourceLocal {
		t.Errorf("source = %v, want local", source)
	}
	second, _ := c.Applications(context.Background())

	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Errorf("repeated fallback reads differ: %+v vs %+v", first, second)
	}
}

func TestApplicationsEmptyMirrorIsNotAnError(t *testing.T) {
	c := deadClient(t)

	apps, source := c.Applications(context.Background())
	if source != SourceLocal {
		t.Errorf("source = %v, want local", source)
	}
	if apps == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(apps) != 0 {
		t.Errorf("len = %d, want 0", len(apps))
	}
}

func TestCreateApplicationOfflineDurability(t *testing.T) {
	c := deadClient(t)

	app, source := c.CreateApplication(context.Background(), NewApplication{
		DestinationCountry: "CA",
		VisaType:           "study",
		TotalSteps:         6,
	})
	if source != SourceLocal {
		t.Errorf("source = %v, want local", source)
	}
	if app.ID == "" {
		t.Error("expected synthesized id")
	}
	if app.Status != model.AppDraft {
		t.Errorf("status = %q, want draft", app.Status)
	}
	if app.CurrentStep != 1 {
		t.Errorf("current_step = %d, want 1", app.CurrentStep)
	}
	if app.ProgressPercentage != 0 {
		t.Errorf("progress = %d, want 0 for a fresh draft", app.ProgressPercentage)
	}

	// Retrievable while still offline
	got, source, err := c.Application(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if source != SourceLocal {
		t.Errorf("source = %v, want local", source)
	}
	if got.ID != app.ID {
		t.Errorf("id = %q, want %q", got.ID, app.ID)
	}
}

func TestCreateApplicationUniqueLocalIDs(t *testing.T) {
	c := deadClient(t)

	a, _ := c.CreateApplication(context.Background(), NewApplication{DestinationCountry: "CA"})
	b, _ := c.CreateApplication(context.Background(), NewApplication{DestinationCountry: "FR"})
	if a.ID == b.ID {
		t.Errorf("ids collide: %q", a.ID)
	}

	apps, _ := c.Applications(context.Background())
	if len(apps) != 2 {
		t.Fatalf("mirror len = %d, want 2", len(apps))
	}
	// Newest first
	if apps[0].ID != b.ID {
		t.Errorf("apps[0].ID = %q, want %q (prepend order)", apps[0].ID, b.ID)
	}
}

func TestUpdateApplicationOfflineSplice(t *testing.T) {
	c := deadClient(t)
	app, _ := c.CreateApplication(context.Background(), NewApplication{DestinationCountry: "CA", TotalSteps: 4})

	visaType := "work"
	got, source, err := c.UpdateApplication(context.Background(), app.ID, ApplicationUpdate{VisaType: &visaType})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if source != SourceLocal {
		t.Errorf("source = %v, want local", source)
	}
	if got.VisaType != "work" {
		t.Errorf("visa_type = %q, want %q", got.VisaType, "work")
	}

	mirror := c.localApplications()
	if mirror[0].VisaType != "work" {
		t.Error("mirror not updated")
	}
}

func TestUpdateApplicationNotFound(t *testing.T) {
	c := deadClient(t)

	_, _, err := c.UpdateApplication(context.Background(), "missing", ApplicationUpdate{})
	if err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateStepProgressInvariant(t *testing.T) {
	c := deadClient(t)
	app, _ := c.CreateApplication(context.Background(), NewApplication{DestinationCountry: "CA", TotalSteps: 3})

	cases := []struct {
		step         int
		wantProgress int
		wantStatus   string
	}{
		{1, 33, model.AppDraft},
		{2, 67, model.AppInProgress},
		{3, 100, model.AppSubmitted},
	}
	for _, tc := range cases {
		got, _, err := c.UpdateApplicationStep(context.Background(), app.ID, tc.step, nil)
		if err != nil {
			t.Fatalf("step %d: %v", tc.step, err)
		}
		if got.ProgressPercentage != tc.wantProgress {
			t.Errorf("step %d: progress = %d, want %d", tc.step, got.ProgressPercentage, tc.wantProgress)
		}
		if got.Status != tc.wantStatus {
			t.Errorf("step %d: status = %q, want %q", tc.step, got.Status, tc.wantStatus)
		}
	}

	final, _, _ := c.Application(context.Background(), app.ID)
	if final.SubmittedAt == nil {
		t.Error("expected submitted_at stamped on final step")
	}
}

func TestDeleteApplicationIdempotent(t *testing.T) {
	c := deadClient(t)
	app, _ := c.CreateApplication(context.Background(), NewApplication{DestinationCountry: "CA"})

	if !c.DeleteApplication(context.Background(), app.ID) {
		t.Error("first delete should report true")
	}
	if !c.DeleteApplication(context.Background(), app.ID) {
		t.Error("second delete should still report true")
	}

	_, _, err := c.Application(context.Background(), app.ID)
	if err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestDeleteRemovesMirrorEvenWhenRemoteSucceeds(t *testing.T) {
	mux := healthyMux()
	mux.HandleFunc("DELETE /applications/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]bool{"deleted": true})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.persistApplications([]model.VisaApplication{{ID: "a1"}, {ID: "a2"}})

	c.DeleteApplication(context.Background(), "a1")

	mirror := c.localApplications()
	if len(mirror) != 1 || mirror[0].ID != "a2" {
		t.Errorf("mirror = %+v, want only a2", mirror)
	}
}

func TestWriteThroughOnRemoteCreate(t *testing.T) {
	mux := healthyMux()
	mux.HandleFunc("POST /applications", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, model.VisaApplication{ID: "server-1", Status: model.AppDraft, CurrentStep: 1, TotalSteps: 5})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	app, source := c.CreateApplication(context.Background(), NewApplication{DestinationCountry: "CA", TotalSteps: 5})
	if source != SourceRemote {
		t.Errorf("source = %v, want remote", source)
	}

	mirror := c.localApplications()
	if len(mirror) != 1 || mirror[0].ID != app.ID {
		t.Errorf("mirror = %+v, want the remote record", mirror)
	}
}
