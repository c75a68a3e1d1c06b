package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"schoolhr/internal/domain/auth"
)

type failingPerms struct{}

func (failingPerms) HasPermission(context.Context, string, string) (bool, error) {
	return false, errors.New("store down")
}

func serveWithRole(t *testing.T, store PermissionStore, role string) int {
	t.Helper()
	handler := RequirePermission(auth.PermAttendanceApprove, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/review", nil)
	if role != "" {
		req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u1", SchoolID: "s1", RoleName: role}))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequirePermission(t *testing.T) {
	if code := serveWithRole(t, auth.StaticPermissions{}, ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", code)
	}
	if code := serveWithRole(t, auth.StaticPermissions{}, auth.RoleAccountant); code != http.StatusForbidden {
		t.Fatalf("expected 403 for accountant approving, got %d", code)
	}
	if code := serveWithRole(t, auth.StaticPermissions{}, auth.RolePrincipal); code != http.StatusNoContent {
		t.Fatalf("expected principal to approve, got %d", code)
	}
	if code := serveWithRole(t, failingPerms{}, auth.RolePrincipal); code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the permission store fails, got %d", code)
	}
}

func TestCan(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if Can(req, auth.StaticPermissions{}, auth.PermPayrollExport) {
		t.Fatal("anonymous request must not hold permissions")
	}
	req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u1", RoleName: auth.RoleAccountant}))
	if !Can(req, auth.StaticPermissions{}, auth.PermPayrollExport) {
		t.Fatal("expected accountant to export")
	}
}
