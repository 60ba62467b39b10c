package chi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/lightsoft-dev/light-archive/internal/domain"
)

const bearerPrefix = "Bearer "

// BearerAuthMiddleware guards admin routes with a session token or static API key.
// If auth has nothing configured, authentication is disabled (pass-through).
func BearerAuthMiddleware(auth AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !auth.Enabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing authorization header")
				return
			}
			if !strings.HasPrefix(header, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized,
					"authorization header must use Bearer scheme")
				return
			}
			if err := auth.Validate(r.Context(), header[len(bearerPrefix):]); err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid or expired token")
					return
				}
				handleDomainError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Login handles POST /auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !s.decode(w, r, &req) {
		return
	}
	sess, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

// Logout handles POST /auth/logout. Unknown tokens are not an error.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), bearerPrefix)
	if token != "" {
		if err := s.auth.Logout(r.Context(), token); err != nil {
			handleDomainError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
