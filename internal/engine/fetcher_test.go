package engine_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/engine"
)

// TestHTTPFetcher_Fetch_Success checks headers (User-Agent, Accept, Basic
// Auth) and body integrity.
func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	const body = "BEGIN:VCARD\nVERSION:3.0\nFN:Asha Kumari\nBDAY:2024-01-01\nEND:VCARD"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "Basic auth header should be present")
		assert.Equal(t, "anm", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, config.UserAgent, r.Header.Get("User-Agent"))
		assert.Contains(t, r.Header.Get("Accept"), "text/vcard")

		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), engine.RemoteSource{
		URL: ts.URL, User: "anm", Pass: "secret",
	})
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestHTTPFetcher_Fetch_SizeCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer ts.Close()

	f := engine.NewHTTPFetcher()
	f.MaxSize = 10

	rc, err := f.Fetch(context.Background(), engine.RemoteSource{URL: ts.URL})
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	assert.Len(t, got, 10)
	require.Error(t, err, "an oversized body must not end quietly")
	assert.ErrorContains(t, err, config.ErrSourceTooLarge)
	var tooLarge *http.MaxBytesError
	require.ErrorAs(t, err, &tooLarge)
	assert.EqualValues(t, 10, tooLarge.Limit)
}

func TestHTTPFetcher_Fetch_ExactlyAtCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 10)))
	}))
	defer ts.Close()

	f := engine.NewHTTPFetcher()
	f.MaxSize = 10

	rc, err := f.Fetch(context.Background(), engine.RemoteSource{URL: ts.URL})
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestHTTPFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    string
	}{
		{"NotFound", http.StatusNotFound, "404"},
		{"ServerError", http.StatusInternalServerError, "500"},
		{"Unauthorized", http.StatusUnauthorized, "401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer ts.Close()

			rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), engine.RemoteSource{URL: ts.URL})

			require.Error(t, err)
			assert.Nil(t, rc)
			assert.Contains(t, err.Error(), config.ErrFetchStatus)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := engine.NewHTTPFetcher().Fetch(ctx, engine.RemoteSource{URL: ts.URL})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPFetcher_Fetch_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"control character", string([]byte{0x7f}), config.ErrInvalidURL},
		{"ftp", "ftp://example.com/book.vcf", config.ErrProtocol},
		{"file", "file:///etc/passwd", config.ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.NewHTTPFetcher().Fetch(context.Background(), engine.RemoteSource{URL: tt.url})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
