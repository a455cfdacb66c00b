package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookmarket/internal/utils"
)

const testSecret = "unit-test-secret"

func echoContext(t *testing.T, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"email": c.Get("email"), "is_admin": c.Get("is_admin")})
}

func signToken(t *testing.T, email string, admin bool) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, 1, email, admin, 1)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	return tok.Token
}

func TestJWTAuthMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/user/orders", nil)
	c, rec := echoContext(t, req)

	if err := JWTAuth(testSecret)(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthBearerHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/user/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u@example.com", false))
	c, rec := echoContext(t, req)

	if err := JWTAuth(testSecret)(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if got := c.Get("email"); got != "u@example.com" {
		t.Errorf("email claim = %v", got)
	}
}

func TestJWTAuthCookieFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/user/orders", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: signToken(t, "cookie@example.com", false)})
	c, rec := echoContext(t, req)

	if err := JWTAuth(testSecret)(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := c.Get("email"); got != "cookie@example.com" {
		t.Errorf("email claim = %v", got)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 1, "u@example.com", false, 1)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/user/orders", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	c, rec := echoContext(t, req)

	if err := JWTAuth(testSecret)(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	run := func(admin bool) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/pending", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "a@example.com", admin))
		c, rec := echoContext(t, req)
		h := JWTAuth(testSecret)(RequireAdmin()(okHandler))
		if err := h(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		return rec.Code
	}

	if code := run(true); code != http.StatusOK {
		t.Errorf("admin request: status = %d, want 200", code)
	}
	if code := run(false); code != http.StatusUnauthorized {
		t.Errorf("non-admin request: status = %d, want 401", code)
	}
}
