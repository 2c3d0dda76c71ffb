package middleware

import (
	"net/http"
	"strings"

	"approveit-backend/internal/domain/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const identityContextKey = "auth.identity"

// Claims issued by the auth provider for a signed-in user.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Auth verifies the Bearer token on every request and stashes the
// verified identity in the echo context. Handlers read it via ActorFrom
// and pass it explicitly into the usecases; nothing below the adapter
// reads ambient auth state.
func Auth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if !strings.HasPrefix(raw, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not_authenticated"})
			}
			token := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))

			var claims Claims
			parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !parsed.Valid || claims.Email == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not_authenticated"})
			}

			c.Set(identityContextKey, identity.Identity{
				Email:       strings.ToLower(claims.Email),
				DisplayName: claims.Name,
			})
			return next(c)
		}
	}
}

// ActorFrom returns the identity the Auth middleware verified for this
// request.
func ActorFrom(c echo.Context) (identity.Identity, bool) {
	actor, ok := c.Get(identityContextKey).(identity.Identity)
	return actor, ok && actor.Valid()
}
