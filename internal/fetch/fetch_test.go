package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.JSONEq(t, `{"ok":true}`, string(result.Body))
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "application/json", result.ContentType)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "404")
}

func TestURL_NoContentIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, nil)
	assert.NoError(t, err)
}

func TestHTTPSource_ResolvesRelativePaths(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte("body"))
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL+"/site", nil)
	require.NoError(t, err)

	body, err := src.Fetch(context.Background(), "/data/resumes.json")
	require.NoError(t, err)
	assert.Equal(t, "body", string(body))
	assert.Equal(t, "/site/data/resumes.json", gotPath)
}

func TestNewHTTPSource_InvalidBase(t *testing.T) {
	_, err := NewHTTPSource("relative/only", nil)
	assert.Error(t, err)
}

func TestDirSource(t *testing.T) {
	src := NewFSSource(fstest.MapFS{
		"data/resumes.json": {Data: []byte(`{}`)},
	})

	body, err := src.Fetch(context.Background(), "data/resumes.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))

	_, err = src.Fetch(context.Background(), "data/missing.json")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	_, err = src.Fetch(context.Background(), "../etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
}

func TestDirSource_CanceledContext(t *testing.T) {
	src := NewDirSource(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Fetch(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}
