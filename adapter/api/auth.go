package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	identityDomain "github.com/quickcut/backend/internal/identity/domain"
)

type currentUserKey struct{}

// CurrentUser is the authenticated principal extracted from the session
// token.
type CurrentUser struct {
	ID   uuid.UUID
	Role identityDomain.Role
}

// CurrentUserFromContext returns the authenticated user, if any.
func CurrentUserFromContext(ctx context.Context) (CurrentUser, bool) {
	user, ok := ctx.Value(currentUserKey{}).(CurrentUser)
	return user, ok
}

// Authenticator validates bearer tokens and injects the current user
// into the request context.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator with the given HMAC secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), currentUserKey{}, user)))
	}
}

// RequireRole rejects authenticated users whose role does not match.
func (a *Authenticator) RequireRole(role identityDomain.Role, next http.HandlerFunc) http.HandlerFunc {
	return a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		user, _ := CurrentUserFromContext(r.Context())
		if user.Role != role {
			writeError(w, http.StatusForbidden, "insufficient role")
			return
		}
		next(w, r)
	})
}

func (a *Authenticator) authenticate(r *http.Request) (CurrentUser, error) {
	header := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return CurrentUser{}, errors.New("missing bearer token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return CurrentUser{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return CurrentUser{}, errors.New("invalid claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return CurrentUser{}, err
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return CurrentUser{}, errors.New("invalid subject claim")
	}

	role, _ := claims["role"].(string)
	switch identityDomain.Role(role) {
	case identityDomain.RoleClient, identityDomain.RoleBarber:
	default:
		return CurrentUser{}, errors.New("invalid role claim")
	}

	return CurrentUser{ID: userID, Role: identityDomain.Role(role)}, nil
}

// IssueToken signs a session token for a user. Used by the seed command
// and tests; production tokens come from the identity provider.
func (a *Authenticator) IssueToken(userID uuid.UUID, role identityDomain.Role) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": string(role),
	})
	return token.SignedString(a.secret)
}
