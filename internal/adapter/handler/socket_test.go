package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sentrymeet/sentrymeet/internal/infrastructure/ws"
	"github.com/sentrymeet/sentrymeet/pkg/jwt"
)

func serveSocket(t *testing.T, h *Socket, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Serve(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.Code
}

func TestSocketServe_RejectsMalformedToken(t *testing.T) {
	m := jwt.NewManager("test-secret", 15*time.Minute)
	hub := ws.NewHub(nil, zap.NewNop())
	defer hub.Close()
	h := NewSocket(hub, nil, m, nil, zap.NewNop())

	rec := serveSocket(t, h, "/ws?token=not.a.token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "AUTH_INVALID_TOKEN" {
		t.Fatalf("error code = %q, want AUTH_INVALID_TOKEN", code)
	}
}

func TestSocketServe_RejectsExpiredToken(t *testing.T) {
	expired := jwt.NewManager("test-secret", -time.Minute)
	token, err := expired.GenerateAccessToken(uuid.New(), "Alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	hub := ws.NewHub(nil, zap.NewNop())
	defer hub.Close()
	h := NewSocket(hub, nil, jwt.NewManager("test-secret", 15*time.Minute), nil, zap.NewNop())

	rec := serveSocket(t, h, "/ws?token="+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "AUTH_TOKEN_EXPIRED" {
		t.Fatalf("error code = %q, want AUTH_TOKEN_EXPIRED", code)
	}
}
