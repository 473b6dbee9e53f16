package repositories

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rohits-web03/sitedrop/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewR2StorageValidates(t *testing.T) {
	_, err := NewR2Storage(R2Options{AccountID: "acc"})
	require.Error(t, err)

	_, err = NewR2Storage(R2Options{BucketName: "b"})
	require.Error(t, err)
}

func TestPresignArtifact(t *testing.T) {
	store, err := NewR2Storage(R2Options{
		AccountID:       "acc123",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "artifacts",
	})
	require.NoError(t, err)

	raw, err := store.PresignArtifact(context.Background(), "my-site", 2, 10*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "acc123.r2.cloudflarestorage.com", u.Host)
	assert.Equal(t, "/artifacts/deployments/my-site/2", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestArchiveUploadsEveryFile(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies = map[string]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies[r.URL.Path] = string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	store, err := NewR2Storage(R2Options{
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "artifacts",
		Endpoint:        srv.URL,
	})
	require.NoError(t, err)

	files := []session.StagedFile{
		{Name: "index.html", Content: []byte("<html></html>")},
		{Name: "style.css", Content: []byte("body{}")},
	}
	require.NoError(t, store.Archive(context.Background(), "my-site", files))

	mu.Lock()
	defer mu.Unlock()
	paths := make([]string, 0, len(bodies))
	for p := range bodies {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{
		"/artifacts/deployments/my-site/0",
		"/artifacts/deployments/my-site/1",
	}, paths)
	assert.True(t, strings.Contains(bodies["/artifacts/deployments/my-site/0"], "<html></html>"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/css; charset=utf-8", contentType("style.css"))
	assert.Equal(t, "application/octet-stream", contentType("README"))
}

func TestHasArtifact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead && r.URL.Path == "/artifacts/deployments/my-site/0" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	store, err := NewR2Storage(R2Options{
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "artifacts",
		Endpoint:        srv.URL,
	})
	require.NoError(t, err)

	ok, err := store.HasArtifact(context.Background(), "my-site", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.HasArtifact(context.Background(), "my-site", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
