package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const studentIDKey contextKey = "studentId"

// RequireStudent validates the bearer token and puts the student id on
// the request context.
func (s *Service) RequireStudent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := s.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), studentIDKey, claims.StudentID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// StudentID extracts the authenticated student id from context.
func StudentID(ctx context.Context) string {
	if v := ctx.Value(studentIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
