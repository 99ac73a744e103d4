package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/study-scheduler/internal/logging"
)

func TestRequireOwner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		headers      map[string]string
		wantStatus   int
		wantUsername string
	}{
		{name: "missing id", wantStatus: http.StatusUnauthorized},
		{name: "blank id", headers: map[string]string{headerOwnerID: "   "}, wantStatus: http.StatusUnauthorized},
		{
			name:         "full headers",
			headers:      map[string]string{headerOwnerID: "owner-1", headerOwnerName: "amina", headerOwnerEmail: "amina@example.com"},
			wantStatus:   http.StatusOK,
			wantUsername: "amina",
		},
		{
			name:         "username defaults to id",
			headers:      map[string]string{headerOwnerID: "owner-2"},
			wantStatus:   http.StatusOK,
			wantUsername: "owner-2",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var gotUsername string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				owner, ok := OwnerFromContext(r.Context())
				require.True(t, ok)
				gotUsername = owner.Username
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			RequireOwner(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantUsername, gotUsername)
		})
	}
}

func TestRequireAdminToken(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	open := RequireAdminToken("", nil)(ok)
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	guarded := RequireAdminToken("s3cret", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))(ok)
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(headerAdminToken, "wrong")
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req.Header.Set(headerAdminToken, "s3cret")
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLoggerAttachesLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	var sawLogger bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = logging.FromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	RequestLogger(base)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/venues", nil))

	assert.True(t, sawLogger)
	out := buf.String()
	assert.True(t, strings.Contains(out, "request completed"), out)
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "path=/venues")
}

func TestRecovererReturns500(t *testing.T) {
	t.Parallel()

	handler := NewRouter(RouterConfig{
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Middleware: []func(http.Handler) http.Handler{
			func(http.Handler) http.Handler {
				return http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
			},
		},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
