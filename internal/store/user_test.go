package store

import (
	"testing"

	"github.com/doraapp/dora/internal/database"
	"github.com/doraapp/dora/internal/model"
)

func setupUserStore(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreateAndGet(t *testing.T) {
	us := setupUserStore(t)

	u, err := us.Create("bob@example.com", "hash", "Bob", "worker", "AU")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == 0 {
		t.Error("expected non-zero id")
	}
	if u.Role != model.RoleUser {
		t.Errorf("role = %q, want default user role", u.Role)
	}
	if u.Location != nil {
		t.Error("new user should have no location")
	}

	byEmail, err := us.GetByEmail("bob@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Errorf("get by email = %+v, want id %d", byEmail, u.ID)
	}
}

func TestUserGetMissingReturnsNil(t *testing.T) {
	us := setupUserStore(t)

	u, err := us.GetByID(999)
	if err != nil {
		t.Fatalf("get missing user: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil for missing user, got %+v", u)
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	us := setupUserStore(t)

	if _, err := us.Create("dup@example.com", "hash", "One", "student", "CA"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("dup@example.com", "hash", "Two", "student", "CA"); err == nil {
		t.Error("expected error for duplicate email")
	}
}

func TestUserSetLocation(t *testing.T) {
	us := setupUserStore(t)
	u, err := us.Create("carol@example.com", "hash", "Carol", "student", "CA")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	updated, err := us.SetLocation(u.ID, model.Location{
		Latitude:  45.5019,
		Longitude: -73.5674,
		City:      "Montréal",
		Country:   "CA",
	})
	if err != nil {
		t.Fatalf("set location: %v", err)
	}
	if updated.Location == nil {
		t.Fatal("expected location after update")
	}
	if updated.Location.City != "Montréal" {
		t.Errorf("city = %q, want Montréal", updated.Location.City)
	}
}

func TestUserUpdateProfile(t *testing.T) {
	us := setupUserStore(t)
	u, err := us.Create("dave@example.com", "hash", "Dave", "tourist", "FR")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	updated, err := us.UpdateProfile(u.ID, "David", "student", "CA")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FullName != "David" || updated.LegalStatus != "student" || updated.DestinationCountry != "CA" {
		t.Errorf("profile = %+v, want updated fields", updated)
	}
}

func TestUserDelete(t *testing.T) {
	us := setupUserStore(t)
	u, err := us.Create("erin@example.com", "hash", "Erin", "student", "CA")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := us.Delete(u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	gone, err := us.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get deleted user: %v", err)
	}
	if gone != nil {
		t.Error("expected user to be gone")
	}
}
