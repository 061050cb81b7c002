package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"response":"  {\"intent\":\"WHOAMI\"}\n","done":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "phi")
	out, err := c.Generate(context.Background(), "who is this")
	require.NoError(t, err)
	require.Equal(t, `{"intent":"WHOAMI"}`, out)
	require.Equal(t, "phi", got.Model)
	require.Equal(t, "who is this", got.Prompt)
	require.False(t, got.Stream)
}

func TestClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"model missing", http.StatusNotFound, `{"error":"model 'phi' not found"}`, ErrModelNotFound},
		{"bad body", http.StatusOK, `not json`, ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "phi").Generate(context.Background(), "x")
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL, "phi").Generate(ctx, "x")
	require.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func TestClient_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "phi").Generate(context.Background(), "x")
	require.True(t, errors.Is(err, ErrNotRunning), "got %v", err)
}

func TestClient_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[{"name":"phi:latest"},{"name":"llama3:8b"}]}`))
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, "phi").Available(context.Background()))
	require.NoError(t, NewClient(srv.URL, "llama3:8b").Available(context.Background()))

	err := NewClient(srv.URL, "mistral").Available(context.Background())
	require.True(t, errors.Is(err, ErrModelNotFound), "got %v", err)
}

func fakeOllama(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ollama")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	return path
}

func TestCLI_Generate(t *testing.T) {
	bin := fakeOllama(t, `[ "$1" = run ] || exit 2; echo "model=$2"; cat`)

	c := &CLI{Binary: bin, Model: "phi"}
	out, err := c.Generate(context.Background(), "hello there")
	require.NoError(t, err)
	require.Equal(t, "model=phi\nhello there", out)
}

func TestCLI_Failure(t *testing.T) {
	bin := fakeOllama(t, `echo "pull model first" >&2; exit 1`)

	_, err := (&CLI{Binary: bin, Model: "phi"}).Generate(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "pull model first")
}

func TestCLI_MissingBinary(t *testing.T) {
	c := &CLI{Binary: filepath.Join(t.TempDir(), "does-not-exist"), Model: "phi"}
	_, err := c.Generate(context.Background(), "x")
	require.True(t, errors.Is(err, ErrNotRunning), "got %v", err)
}
