package middleware

import (
	"net/http"

	"slot-booking/pkg/response"

	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"
)

const (
	CSRFFieldName  = "_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRFMiddleware guards the public booking form with a double-submit token:
// a signed cookie plus the _token field or X-CSRF-Token header.
type CSRFMiddleware struct {
	protect func(http.Handler) http.Handler
	secure  bool
}

func NewCSRFMiddleware(authKey []byte, secure bool, log *logrus.Logger) *CSRFMiddleware {
	protect := csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.FieldName(CSRFFieldName),
		csrf.RequestHeader(CSRFHeaderName),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Warnf("Rejected request to %s: %v", r.URL.Path, csrf.FailureReason(r))
			response.Forbidden(w, "Invalid or missing anti-forgery token")
		})),
	)
	return &CSRFMiddleware{protect: protect, secure: secure}
}

func (m *CSRFMiddleware) Handle(next http.Handler) http.Handler {
	protected := m.protect(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.secure {
			// without TLS the Referer check has nothing to compare against
			r = csrf.PlaintextHTTPRequest(r)
		}
		protected.ServeHTTP(w, r)
	})
}
