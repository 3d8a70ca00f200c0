package store

import (
	"testing"

	"github.com/doraapp/dora/internal/database"
	"github.com/doraapp/dora/internal/model"
)

func setupTestDB(t *testing.T) (*ApplicationStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewApplicationStore(db), NewUserStore(db)
}

func createTestUser(t *testing.T, us *UserStore) *model.User {
	t.Helper()
	u, err := us.Create("alice@example.com", "hash", "Alice", "student", "CA")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestApplicationCreateDefaults(t *testing.T) {
	as, us := setupTestDB(t)
	u := createTestUser(t, us)

	app, err := as.Create(u.ID, "CA", "study", 6)
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if app.ID == "" {
		t.Error("expected non-empty id")
	}
	if app.Status != model.AppDraft {
		t.Errorf("status = %q, want %q", app.Status, model.AppDraft)
	}
	if app.CurrentStep != 1 {
		t.Errorf("current_step = %d, want 1", app.CurrentStep)
	}
	if app.TotalSteps != 6 {
		t.Errorf("total_steps = %d, want 6", app.TotalSteps)
	}
	if app.ProgressPercentage != 0 {
		t.Errorf("progress = %d, want 0 for a fresh draft", app.ProgressPercentage)
	}
}

func TestApplicationUpdateStepProgress(t *testing.T) {
	as, us := setupTestDB(t)
	u := createTestUser(t, us)
	app, _ := as.Create(u.ID, "CA", "study", 4)

	got, err := as.UpdateStep(app.ID, 2, nil)
	if err != nil {
		t.Fatalf("update step: %v", err)
	}
	if got.ProgressPercentage != 50 {
		t.Errorf("progress = %d, want 50", got.ProgressPercentage)
	}
	if got.Status != model.AppInProgress {
		t.Errorf("status = %q, want %q", got.Status, model.AppInProgress)
	}
	if got.SubmittedAt != nil {
		t.Error("submitted_at should be nil before final step")
	}
}

func TestApplicationSubmitOnFinalStep(t *testing.T) {
	as, us := setupTestDB(t)
	u := createTestUser(t, us)
	app, _ := as.Create(u.ID, "CA", "study", 3)

	got, err := as.UpdateStep(app.ID, 3, map[string]bool{"passport": true})
	if err != nil {
		t.Fatalf("update step: %v", err)
	}
	if got.Status != model.AppSubmitted {
		t.Errorf("status = %q, want %q", got.Status, model.AppSubmitted)
	}
	if got.ProgressPercentage != 100 {
		t.Errorf("progress = %d, want 100", got.ProgressPercentage)
	}
	if got.SubmittedAt == nil {
		t.Error("expected submitted_at to be stamped")
	}
	if !got.DocumentsInfo["passport"] {
		t.Error("expected passport document flag to persist")
	}
}

func TestApplicationUpdateRejectsInvalidStatus(t *testing.T) {
	as, us := setupTestDB(t)
	u := createTestUser(t, us)
	app, _ := as.Create(u.ID, "FR", "tourist", 2)

	app.Status = "bogus"
	if _, err := as.Update(app); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestApplicationAdminTransitionAccepted(t *testing.T) {
	as, us := setupTestDB(t)
	u := createTestUser(t, us)
	app, _ := as.Create(u.ID, "FR", "tourist", 2)

	app.Status = model.AppProcessing
	got, err := as.Update(app)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != model.AppProcessing {
		t.Errorf("status = %q, want %q", got.Status, model.AppProcessing)
	}
}

func TestApplicationListByUser(t *testing.T) {
	as, us := setupTestDB(t)
	u := createTestUser(t, us)
	other, _ := us.Create("bob@example.com", "hash", "Bob", "worker", "DE")

	as.Create(u.ID, "CA", "study", 4)
	as.Create(u.ID, "FR", "tourist", 3)
	as.Create(other.ID, "DE", "work", 5)

	apps, err := as.ListByUser(u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(apps))
	}
	for _, a := range apps {
		if a.UserID != u.ID {
			t.Errorf("unexpected user id %d", a.UserID)
		}
	}
}

func TestApplicationDeleteIdempotent(t *testing.T) {
	as, us := setupTestDB(t)
	u := createTestUser(t, us)
	app, _ := as.Create(u.ID, "CA", "study", 4)

	if err := as.Delete(app.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := as.Delete(app.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	got, err := as.GetByID(app.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
