package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityDomain "github.com/quickcut/backend/internal/identity/domain"
)

func TestAuthenticatorMiddleware(t *testing.T) {
	auth := NewAuthenticator("test-secret")
	userID := uuid.New()

	protected := auth.Middleware(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUserFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, identityDomain.RoleClient, user.Role)
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("accepts a valid bearer token", func(t *testing.T) {
		token, err := auth.IssueToken(userID, identityDomain.RoleClient)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		rec := httptest.NewRecorder()

		protected(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		other := NewAuthenticator("other-secret")
		token, err := other.IssueToken(userID, identityDomain.RoleClient)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a token with an unknown role", func(t *testing.T) {
		claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  userID.String(),
			"role": "admin",
		})
		token, err := claims.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a non-uuid subject", func(t *testing.T) {
		claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "not-a-uuid",
			"role": "client",
		})
		token, err := claims.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthenticatorRequireRole(t *testing.T) {
	auth := NewAuthenticator("test-secret")

	barbersOnly := auth.RequireRole(identityDomain.RoleBarber, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("admits the matching role", func(t *testing.T) {
		token, err := auth.IssueToken(uuid.New(), identityDomain.RoleBarber)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/availability", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		barbersOnly(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("forbids the other role", func(t *testing.T) {
		token, err := auth.IssueToken(uuid.New(), identityDomain.RoleClient)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/availability", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		barbersOnly(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("still requires a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/availability", nil)
		rec := httptest.NewRecorder()

		barbersOnly(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
