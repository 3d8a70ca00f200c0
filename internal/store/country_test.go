package store

import (
	"testing"

	"github.com/doraapp/dora/internal/database"
	"github.com/doraapp/dora/internal/model"
)

func setupCountryTestDB(t *testing.T) *CountryStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCountryStore(db)
}

func TestCountryUpsert(t *testing.T) {
	cs := setupCountryTestDB(t)

	c, err := cs.Upsert(model.Country{
		Code: "CA", Name: "Canada", Flag: "🇨🇦", Region: "Americas",
		VisaRequired: true, ProcessingFee: 150, Currency: "CAD",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !c.VisaRequired {
		t.Error("expected visa_required true")
	}

	// Second upsert with same code updates in place
	c, err = cs.Upsert(model.Country{Code: "CA", Name: "Canada", ProcessingFee: 155})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if c.ProcessingFee != 155 {
		t.Errorf("processing_fee = %v, want 155", c.ProcessingFee)
	}

	all, err := cs.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("list len = %d, want 1", len(all))
	}
}

func TestCountryGetMissing(t *testing.T) {
	cs := setupCountryTestDB(t)
	c, err := cs.GetByCode("ZZ")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c != nil {
		t.Error("expected nil for missing country")
	}
}

func TestCountryListOrdering(t *testing.T) {
	cs := setupCountryTestDB(t)
	cs.Upsert(model.Country{Code: "FR", Name: "France"})
	cs.Upsert(model.Country{Code: "CA", Name: "Canada"})
	cs.Upsert(model.Country{Code: "AU", Name: "Australia"})

	all, err := cs.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Australia", "Canada", "France"}
	for i, w := range want {
		if all[i].Name != w {
			t.Errorf("all[%d].Name = %q, want %q", i, all[i].Name, w)
		}
	}
}
