package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("Branch Name,Total Target\nA,100\n"))
	}))
	defer srv.Close()

	text, err := New(time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Branch Name,Total Target\nA,100\n", text)
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(time.Second).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(time.Second).Fetch(context.Background(), url)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetch_NotConfigured(t *testing.T) {
	_, err := New(0).Fetch(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "spreadsheet link not configured", Message(ErrNotConfigured))
	assert.Equal(t, "failed to load data", Message(ErrFetch))
	assert.Equal(t, "failed to load data", Message(context.DeadlineExceeded))
}
