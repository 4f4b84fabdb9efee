package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/listonic-sync/internal/service"
)

// serveParam routes path through a chi pattern and returns what the handler saw
func serveParam(t *testing.T, pattern, path string, extract func(r *http.Request) (any, error)) (any, error) {
	t.Helper()

	var (
		value any
		err   error
	)
	r := chi.NewRouter()
	r.Get(pattern, func(_ http.ResponseWriter, req *http.Request) {
		value, err = extract(req)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	return value, err
}

func TestGetAndValidateURLParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		wantValue string
		wantErr   bool
	}{
		{name: "plain account", path: "/accounts/home", wantValue: "home"},
		{name: "dashes and dots", path: "/accounts/my-home.v2", wantValue: "my-home.v2"},
		{name: "url-encoded at symbol", path: "/accounts/home%40family", wantValue: "home@family"},
		{name: "encoded space", path: "/accounts/my%20home", wantErr: true},
		{name: "encoded tab", path: "/accounts/home%09", wantErr: true},
		{name: "whitespace only", path: "/accounts/%20%20", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			value, err := serveParam(t, "/accounts/{account}", tt.path, func(r *http.Request) (any, error) {
				return GetAndValidateURLParam(r, "account")
			})

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, service.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestGetIDParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		wantID  int64
		wantErr bool
	}{
		{name: "positive id", path: "/lists/123", wantID: 123},
		{name: "large id", path: "/lists/9007199254740993", wantID: 9007199254740993},
		{name: "zero", path: "/lists/0", wantErr: true},
		{name: "negative", path: "/lists/-4", wantErr: true},
		{name: "not a number", path: "/lists/abc", wantErr: true},
		{name: "fraction", path: "/lists/1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			value, err := serveParam(t, "/lists/{listID}", tt.path, func(r *http.Request) (any, error) {
				return GetIDParam(r, "listID")
			})

			if tt.wantErr {
				assert.ErrorIs(t, err, service.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, value)
		})
	}
}
