package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, expires, err := issuer.Issue("labadmin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if time.Until(expires) < 59*time.Minute {
		t.Error("expected expiry about an hour out")
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.User != "labadmin" {
		t.Errorf("expected user labadmin, got %s", claims.User)
	}
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, -time.Minute)

	token, _, err := issuer.Issue("labadmin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := issuer.Parse(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	other := NewTokenIssuer("another-secret-another-secret-42", time.Hour)

	token, _, err := issuer.Issue("labadmin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := other.Parse(token); err == nil {
		t.Error("expected token signed with different secret to be rejected")
	}
}

func TestMiddleware_AllowsValidToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	token, _, _ := issuer.Issue("labadmin")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		user, _ := c.Get(string(UserKey)).(string)
		if user != "labadmin" {
			t.Errorf("expected auth_user labadmin, got %s", user)
		}
		if UserFromContext(c.Request().Context()) != "labadmin" {
			t.Error("expected operator on request context")
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := Middleware(issuer)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMiddleware_RejectsMissingHeader(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	err := Middleware(issuer)(handler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestMiddleware_RejectsMalformedHeader(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	err := Middleware(issuer)(handler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestDevMiddleware_SetsDefaultUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		user, _ := c.Get(string(UserKey)).(string)
		if user != "dev-user" {
			t.Errorf("expected dev-user, got %s", user)
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := DevMiddleware()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandler_Login(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	h := NewHandler(issuer, "labadmin", "s3cret")

	e := echo.New()
	body := `{"username":"labadmin","password":"s3cret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"token"`) {
		t.Error("expected token in response")
	}
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	h := NewHandler(issuer, "labadmin", "s3cret")

	e := echo.New()
	body := `{"username":"labadmin","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
