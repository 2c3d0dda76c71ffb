package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, email, name string) string {
	t.Helper()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func authEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Auth(testSecret))
	e.GET("/whoami", func(c echo.Context) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, map[string]string{"email": actor.Email, "name": actor.DisplayName})
	})
	return e
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"valid token", "Bearer " + signTokenHelper(t, "Alice@X.com", "Alice"), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signTokenWrongSecret(t), http.StatusUnauthorized},
		{"empty email claim", "Bearer " + signTokenHelper(t, "", "Alice"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := authEcho()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func signTokenHelper(t *testing.T, email, name string) string {
	return signToken(t, testSecret, email, name)
}

func signTokenWrongSecret(t *testing.T) string {
	return signToken(t, []byte("other-secret"), "a@x.com", "Alice")
}

func TestAuth_LowercasesEmail(t *testing.T) {
	e := authEcho()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, testSecret, "Alice@X.com", "Alice"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); !strings.Contains(got, `"email":"alice@x.com"`) {
		t.Fatalf("body = %s, want lowercased email", got)
	}
}
