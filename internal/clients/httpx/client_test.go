package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripflow/tripflow-api/internal/types"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{200, nil},
		{204, nil},
		{429, types.ErrTransient},
		{500, types.ErrTransient},
		{503, types.ErrTransient},
		{401, types.ErrConfiguration},
		{403, types.ErrConfiguration},
		{400, types.ErrValidation},
		{404, types.ErrValidation},
	}

	for _, tt := range tests {
		err := classifyStatus(tt.status)
		if tt.want == nil {
			assert.NoError(t, err, "status %d", tt.status)
			continue
		}
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}
}

func TestGetJSONDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		w.Write([]byte(`{"name":"Paris","cod":200}`))
	}))
	defer srv.Close()

	c := New("test", Config{}, slog.Default())

	var out struct {
		Name string `json:"name"`
		Cod  int    `json:"cod"`
	}
	err := c.GetJSON(context.Background(), srv.URL, map[string][]string{"q": {"Paris"}}, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "Paris", out.Name)
	assert.Equal(t, 200, out.Cod)
}

func TestServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New("test", Config{}, slog.Default())
	err := c.GetJSON(context.Background(), srv.URL, nil, nil, nil)
	assert.ErrorIs(t, err, types.ErrTransient)
}

func TestUnauthorizedIsConfiguration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("test", Config{}, slog.Default())
	err := c.GetJSON(context.Background(), srv.URL, nil, nil, nil)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := New("test", Config{}, slog.Default())
	err := c.GetJSON(context.Background(), srv.URL, nil, nil, nil)
	assert.ErrorIs(t, err, types.ErrTransient)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("flaky", Config{BreakerMinRequests: 3, BreakerFailureThreshold: 0.5}, slog.Default())
	for i := 0; i < 5; i++ {
		_ = c.GetJSON(context.Background(), srv.URL, nil, nil, nil)
	}

	// Once open, failures short-circuit but stay classified as transient.
	err := c.GetJSON(context.Background(), srv.URL, nil, nil, nil)
	assert.ErrorIs(t, err, types.ErrTransient)
}

func TestPostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostFormValue("grant_type"))
		w.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer srv.Close()

	c := New("test", Config{}, slog.Default())

	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := c.PostForm(context.Background(), srv.URL, map[string][]string{"grant_type": {"client_credentials"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "tok", out.AccessToken)
}
