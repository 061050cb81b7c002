package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInvoke(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		timeout time.Duration
		want    string
	}{
		{
			name:    "reply passes through",
			backend: BackendFunc(func(ctx context.Context, p string) (string, error) { return "ok:" + p, nil }),
			timeout: time.Second,
			want:    "ok:hi",
		},
		{
			name:    "error yields empty",
			backend: BackendFunc(func(ctx context.Context, p string) (string, error) { return "partial", errors.New("down") }),
			timeout: time.Second,
			want:    "",
		},
		{
			name: "timeout yields empty",
			backend: BackendFunc(func(ctx context.Context, p string) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}),
			timeout: 10 * time.Millisecond,
			want:    "",
		},
		{
			name: "late reply is discarded",
			backend: BackendFunc(func(ctx context.Context, p string) (string, error) {
				<-ctx.Done()
				return "too late", nil
			}),
			timeout: 10 * time.Millisecond,
			want:    "",
		},
		{
			name:    "nil backend",
			backend: nil,
			timeout: time.Second,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Invoke(context.Background(), tt.backend, "hi", tt.timeout, nil)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCachedBackend(t *testing.T) {
	var calls atomic.Int32
	next := BackendFunc(func(ctx context.Context, p string) (string, error) {
		calls.Add(1)
		if p == "empty" {
			return "", nil
		}
		if p == "fail" {
			return "", errors.New("boom")
		}
		return "reply:" + p, nil
	})

	c := NewCachedBackend(next, time.Minute)
	defer c.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		out, err := c.Generate(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, "reply:a", out)
	}
	require.Equal(t, int32(1), calls.Load(), "repeated prompt should hit the cache")

	_, err := c.Generate(ctx, "empty")
	require.NoError(t, err)
	_, err = c.Generate(ctx, "empty")
	require.NoError(t, err)
	require.Equal(t, int32(3), calls.Load(), "empty replies are not cached")

	_, err = c.Generate(ctx, "fail")
	require.Error(t, err)
	require.Equal(t, 1, c.Len())
}
