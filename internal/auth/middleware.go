package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "careercompass/internal/errors"
)

const claimsContextKey = "auth_claims"

type userIDKey struct{}

// Gate verifies bearer tokens on protected routes and attaches the caller's
// identity to the request before any handler runs.
type Gate struct {
	jwt     *JWTService
	revoked RevocationStore
}

// NewGate creates a new auth gate.
func NewGate(jwt *JWTService, revoked RevocationStore) *Gate {
	return &Gate{jwt: jwt, revoked: revoked}
}

// Middleware returns the echo middleware for the protected route group.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.Verify(c.Request().Context(), token)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(claimsContextKey).(*Claims)
			if !ok {
				return
			}
			if id, err := claims.UserID(); err == nil {
				c.SetRequest(c.Request().WithContext(WithUserID(c.Request().Context(), id)))
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var authErr *apperrors.AuthError
			if errors.As(err, &authErr) {
				return authErr
			}
			if errors.Is(err, echojwt.ErrJWTMissing) || !hasBearer(c.Request().Header.Get(echo.HeaderAuthorization)) {
				return apperrors.ErrMissingToken
			}
			return apperrors.ErrInvalidToken
		},
	})
}

func hasBearer(header string) bool {
	const prefix = "Bearer "
	return len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix)
}

// Verify checks signature, expiry and revocation of a bearer token.
func (g *Gate) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := g.jwt.ValidateToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if g.revoked != nil && claims.ID != "" {
		revoked, err := g.revoked.IsRevoked(ctx, claims.ID)
		if err == nil && revoked {
			return nil, apperrors.ErrRevokedToken
		}
	}
	return claims, nil
}

// ClaimsFrom returns the verified claims of the current request.
func ClaimsFrom(c echo.Context) (*Claims, error) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, apperrors.ErrMissingToken
	}
	return claims, nil
}

// UserID returns the verified user id of the current request.
func UserID(c echo.Context) (uuid.UUID, error) {
	if id, ok := UserIDFromContext(c.Request().Context()); ok {
		return id, nil
	}
	claims, err := ClaimsFrom(c)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidToken
	}
	return id, nil
}

// WithUserID returns a copy of ctx carrying the user id.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromContext returns the user id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok
}
