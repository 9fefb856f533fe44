package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newCSRFTestServer() http.Handler {
	mw := NewCSRFMiddleware([]byte("0123456789abcdef0123456789abcdef"), false, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(csrf.Token(r)))
	})
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	return mw.Handle(mux)
}

func issueToken(t *testing.T, h http.Handler) (string, []*http.Cookie) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from token endpoint, got %d", rec.Code)
	}
	token := rec.Body.String()
	if token == "" {
		t.Fatal("expected a token")
	}
	return token, rec.Result().Cookies()
}

func TestCSRF_RejectsMissingToken(t *testing.T) {
	h := newCSRFTestServer()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("expected a JSON body, got %v", err)
	}
	if body.Success || body.Message == "" {
		t.Errorf("expected success=false with a message, got %+v", body)
	}
}

func TestCSRF_AcceptsHeaderToken(t *testing.T) {
	h := newCSRFTestServer()
	token, cookies := issueToken(t, h)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(CSRFHeaderName, token)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestCSRF_AcceptsFormField(t *testing.T) {
	h := newCSRFTestServer()
	token, cookies := issueToken(t, h)

	form := url.Values{CSRFFieldName: {token}, "name": {"Ada"}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestCSRF_RejectsTokenWithoutCookie(t *testing.T) {
	h := newCSRFTestServer()
	token, _ := issueToken(t, h)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(CSRFHeaderName, token)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}
