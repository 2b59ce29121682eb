package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewService("test-secret")

	token, err := svc.IssueToken("student1")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.StudentID != "student1" {
		t.Errorf("StudentID = %q, want student1", claims.StudentID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewService("secret-a").IssueToken("student1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewService("secret-b").ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewService("test-secret")
	if _, err := svc.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := NewService("test-secret")

	hash, err := HashPassword("parola123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := svc.CheckPassword(hash, "parola123"); err != nil {
		t.Errorf("CheckPassword() error = %v", err)
	}
	if err := svc.CheckPassword(hash, "yanlis"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRequireStudentMiddleware(t *testing.T) {
	svc := NewService("test-secret")
	token, err := svc.IssueToken("student1")
	if err != nil {
		t.Fatal(err)
	}

	var gotStudentID string
	handler := svc.RequireStudent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStudentID = StudentID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "valid bearer token", authHeader: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", authHeader: "Token abc", wantStatus: http.StatusUnauthorized},
		{name: "bad token", authHeader: "Bearer garbage", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/chat/status", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotStudentID != "student1" {
				t.Errorf("StudentID = %q, want student1", gotStudentID)
			}
		})
	}
}

func TestStudentIDMissing(t *testing.T) {
	if got := StudentID(context.Background()); got != "" {
		t.Errorf("StudentID = %q, want empty", got)
	}
}
