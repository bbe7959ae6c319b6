package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"leavedesk/internal/domain/auth"
)

func TestRequestIDGenerated(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, captured)
	require.Equal(t, captured, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDPropagated(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "req-abc", captured)
	require.Equal(t, "req-abc", rec.Header().Get("X-Request-ID"))
}

func TestLoggerEmitsAccessLine(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(previous)

	handler := RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/leave/policies", nil)
	req.Header.Set("X-Request-ID", "req-log")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "GET", entry["method"])
	require.Equal(t, "/leave/policies", entry["path"])
	require.Equal(t, float64(http.StatusTeapot), entry["status"])
	require.Equal(t, "req-log", entry["requestId"])
}

type fakePermStore struct {
	grants map[string]map[string]bool
	err    error
}

func (f *fakePermStore) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.grants[roleID][permission], nil
}

func userRequest(role, roleID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithUser(req.Context(), auth.UserContext{
		UserID:   "user-1",
		TenantID: "tenant-1",
		RoleID:   roleID,
		RoleName: role,
	})
	return req.WithContext(ctx)
}

func TestRequirePermissionAllows(t *testing.T) {
	store := &fakePermStore{grants: map[string]map[string]bool{
		"role-hr": {auth.PermLeaveConfigure: true},
	}}

	called := false
	handler := RequirePermission(auth.PermLeaveConfigure, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, userRequest(auth.RoleHR, "role-hr"))

	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermissionForbids(t *testing.T) {
	store := &fakePermStore{grants: map[string]map[string]bool{}}

	handler := RequirePermission(auth.PermLeaveConfigure, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, userRequest(auth.RoleEmployee, "role-emp"))

	require.Equal(t, http.StatusForbidden, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "forbidden", body.Error.Code)
}

func TestRequirePermissionAnonymous(t *testing.T) {
	store := &fakePermStore{}

	handler := RequirePermission(auth.PermLeaveRead, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareAttachesUser(t *testing.T) {
	token, err := auth.GenerateToken("secret", auth.Claims{
		UserID:   "user-1",
		TenantID: "tenant-1",
		RoleID:   "role-1",
		RoleName: auth.RoleEmployee,
	}, time.Hour)
	require.NoError(t, err)

	var got auth.UserContext
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "user-1", got.UserID)
	require.Equal(t, auth.RoleEmployee, got.RoleName)
}

func TestAuthMiddlewareInvalidTokenIsAnonymous(t *testing.T) {
	var ok bool
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.False(t, ok)
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	handler := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitKeysByUser(t *testing.T) {
	handler := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, userRequest(auth.RoleEmployee, "role-emp"))
	require.Equal(t, http.StatusOK, first.Code)

	// Same IP but a different authenticated actor gets its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithUser(req.Context(), auth.UserContext{UserID: "user-2", RoleID: "role-emp"})
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req.WithContext(ctx))
	require.Equal(t, http.StatusOK, second.Code)
}
