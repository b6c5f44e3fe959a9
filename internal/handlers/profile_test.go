package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/policy"
)

func seedProfile(t *testing.T, db *gorm.DB, user models.User, taxID string) models.ClientProfile {
	t.Helper()
	p := models.ClientProfile{UserID: user.ID, TaxID: taxID}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func TestProfileDetailOwn(t *testing.T) {
	db := testDB(t)
	h := NewProfileHandler(db, policy.NewResolver(db))
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	seedProfile(t, db, alice, "TX-A")
	seedProfile(t, db, bob, "TX-B")

	w := httptest.NewRecorder()
	h.Detail(w, newRequest(http.MethodGet, "/api/profile", "", &alice, 0))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got models.ClientProfile
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TaxID != "TX-A" {
		t.Errorf("tax id = %q, want own profile TX-A", got.TaxID)
	}
}

func TestProfileOverrideStaffOnly(t *testing.T) {
	db := testDB(t)
	h := NewProfileHandler(db, policy.NewResolver(db))
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	staff := seedUser(t, db, "boss", true)
	seedProfile(t, db, alice, "TX-A")
	seedProfile(t, db, bob, "TX-B")

	target := "/api/profile?user_id=" + itoa(bob.ID)

	w := httptest.NewRecorder()
	h.Detail(w, newRequest(http.MethodGet, target, "", &alice, 0))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-staff override status = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	h.Detail(w, newRequest(http.MethodGet, target, "", &staff, 0))
	if w.Code != http.StatusOK {
		t.Fatalf("staff override status = %d, want 200", w.Code)
	}
	var got models.ClientProfile
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TaxID != "TX-B" {
		t.Errorf("tax id = %q, want TX-B", got.TaxID)
	}
}

func TestProfileUpdate(t *testing.T) {
	db := testDB(t)
	h := NewProfileHandler(db, policy.NewResolver(db))
	alice := seedUser(t, db, "alice", false)
	seedProfile(t, db, alice, "")

	w := httptest.NewRecorder()
	h.Update(w, newRequest(http.MethodPut, "/api/profile", `{"tax_id":"TX-9","address":"1 Main St"}`, &alice, 0))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}

	var got models.ClientProfile
	if err := db.Where("user_id = ?", alice.ID).First(&got).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TaxID != "TX-9" || got.Address != "1 Main St" {
		t.Errorf("profile = %+v", got)
	}
}

func TestProfileAnonymous(t *testing.T) {
	db := testDB(t)
	h := NewProfileHandler(db, policy.NewResolver(db))

	w := httptest.NewRecorder()
	h.Detail(w, newRequest(http.MethodGet, "/api/profile", "", nil, 0))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
