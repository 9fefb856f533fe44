package middleware

import "net/http"

// CORSMiddleware lets a booking widget on another origin call the API. With
// no configured origins any origin is allowed, without credentials.
type CORSMiddleware struct {
	allowed map[string]bool
}

func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &CORSMiddleware{allowed: allowed}
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h := w.Header()
		if len(m.allowed) == 0 {
			h.Set("Access-Control-Allow-Origin", "*")
		} else if origin := req.Header.Get("Origin"); m.allowed[origin] {
			// the anti-forgery cookie only travels on credentialed requests
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+CSRFHeaderName)
		h.Set("Access-Control-Expose-Headers", CSRFHeaderName)

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, req)
	})
}
