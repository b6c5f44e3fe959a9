package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/auth"
	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/services"
)

func newAuthHandler(db *gorm.DB) *AuthHandler {
	tokens := auth.NewTokenManager("testsecret", 30*time.Minute, 24*time.Hour)
	sessions := auth.NewSessions("testsecret")
	return NewAuthHandler(services.NewUserService(db), tokens, sessions)
}

func TestRegisterEndpoint(t *testing.T) {
	db := testDB(t)
	h := newAuthHandler(db)

	// is_staff in the payload must be ignored on self-registration.
	body := `{"username":"alice","email":"alice@example.com","password":"sup3rsecret","is_staff":true}`
	w := httptest.NewRecorder()
	h.Register(w, newRequest(http.MethodPost, "/api/auth/register", body, nil, 0))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}

	var got models.User
	if err := db.Where("username = ?", "alice").First(&got).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.IsStaff {
		t.Error("self-registration must not grant the staff flag")
	}

	// The hashed password never leaves the API.
	if body := w.Body.String(); len(body) > 0 {
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if _, ok := resp["password"]; ok {
			t.Error("response exposes the password field")
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	db := testDB(t)
	h := newAuthHandler(db)

	body := `{"username":"alice","password":"sup3rsecret"}`
	w := httptest.NewRecorder()
	h.Register(w, newRequest(http.MethodPost, "/api/auth/register", body, nil, 0))
	if w.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Register(w, newRequest(http.MethodPost, "/api/auth/register", body, nil, 0))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want 400", w.Code)
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	db := testDB(t)
	h := newAuthHandler(db)
	if _, err := services.NewUserService(db).Register(services.RegisterInput{Username: "alice", Password: "sup3rsecret"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	w := httptest.NewRecorder()
	h.Login(w, newRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"sup3rsecret"}`, nil, 0))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie")
	}

	w = httptest.NewRecorder()
	h.Login(w, newRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"wrong"}`, nil, 0))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", w.Code)
	}
}

func TestTokenObtainAndRefresh(t *testing.T) {
	db := testDB(t)
	h := newAuthHandler(db)
	if _, err := services.NewUserService(db).Register(services.RegisterInput{Username: "alice", Password: "sup3rsecret"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	w := httptest.NewRecorder()
	h.TokenObtain(w, newRequest(http.MethodPost, "/api/token", `{"username":"alice","password":"sup3rsecret"}`, nil, 0))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	var pair map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pair["access"] == "" || pair["refresh"] == "" {
		t.Fatalf("pair = %v, want both tokens", pair)
	}

	w = httptest.NewRecorder()
	h.TokenRefresh(w, newRequest(http.MethodPost, "/api/token/refresh", `{"refresh":"`+pair["refresh"]+`"}`, nil, 0))
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d; body %s", w.Code, w.Body.String())
	}

	// An access token in the refresh slot is rejected.
	w = httptest.NewRecorder()
	h.TokenRefresh(w, newRequest(http.MethodPost, "/api/token/refresh", `{"refresh":"`+pair["access"]+`"}`, nil, 0))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("access-as-refresh status = %d, want 401", w.Code)
	}
}
