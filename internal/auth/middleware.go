package auth

import (
	"log"
	"net/http"
	"strings"
)

// Middleware authenticates analysis API requests and enforces the role
// policy.
type Middleware struct {
	secret []byte
	policy Policy
	logger *log.Logger
}

// NewMiddleware constructs the middleware. logger may be nil to silence
// rejected-request logging.
func NewMiddleware(secret []byte, policy Policy, logger *log.Logger) *Middleware {
	return &Middleware{secret: secret, policy: policy, logger: logger}
}

// Wrap guards next with token validation and role checks. Exempt paths and
// routes without a policy entry pass through untouched.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, ok := m.policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := ParseToken(bearerToken(r), m.secret)
		if err != nil {
			m.reject(w, r, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		if !RoleAtLeast(identity.Role, required) {
			m.reject(w, r, http.StatusForbidden, "forbidden",
				"role "+string(identity.Role)+" below required "+string(required))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, status int, message, reason string) {
	if m.logger != nil {
		m.logger.Printf("auth reject %s %s: %s", r.Method, r.URL.Path, reason)
	}
	http.Error(w, message, status)
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
