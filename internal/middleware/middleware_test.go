package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/kontrib/kontrib/internal/auth"
	"github.com/kontrib/kontrib/internal/models"
)

func TestRequireAuth(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret", time.Minute)

	var gotID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = IdentityID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	router := mux.NewRouter()
	router.Handle("/protected", handler)
	router.Use(RequireAuth(jwtMgr))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid token passes identity through", func(t *testing.T) {
		token, err := jwtMgr.Generate(&models.Identity{ID: "id-42", Phone: "+2348000000001"})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotID != "id-42" {
			t.Errorf("IdentityID = %q, want id-42", gotID)
		}
	})
}

func TestIdentityIDWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := IdentityID(req.Context()); got != "" {
		t.Errorf("IdentityID = %q, want empty", got)
	}
}
