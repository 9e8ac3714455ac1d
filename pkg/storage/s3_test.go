package storage

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{
			Bucket:    "test-bucket",
			AccessKey: "test-access-key",
			SecretKey: "test-secret-key",
		})
		require.NoError(t, err)
		require.NotNil(t, store)
		require.NotNil(t, store.client)
		require.Equal(t, DefaultRegion, store.cfg.Region)
		require.Equal(t, int64(DefaultMaxObjectSize), store.cfg.MaxObjectSize)
	})

	t.Run("custom endpoint", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{
			Bucket:    "test-bucket",
			AccessKey: "test-access-key",
			SecretKey: "test-secret-key",
			Endpoint:  "http://localhost:9000",
			PathStyle: true,
		})
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{Bucket: "only-bucket"})
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Nil(t, store)
	})
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()

	require.False(t, Config{}.Enabled())
	require.True(t, Config{Bucket: "b"}.Enabled())
}

func TestKeyFromRef(t *testing.T) {
	t.Parallel()

	store, err := New(Config{Bucket: "attachments", AccessKey: "a", SecretKey: "s"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{"bare key", "s3://invoices/2024/01.pdf", "invoices/2024/01.pdf", false},
		{"configured bucket stripped", "s3://attachments/invoices/01.pdf", "invoices/01.pdf", false},
		{"single segment", "s3://flyer.pdf", "flyer.pdf", false},
		{"missing prefix", "invoices/01.pdf", "", true},
		{"empty key", "s3://", "", true},
		{"traversal", "s3://../secret", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := store.KeyFromRef(tt.ref)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSizeGuard(t *testing.T) {
	t.Parallel()

	t.Run("within limit", func(t *testing.T) {
		t.Parallel()
		g := &sizeGuard{body: io.NopCloser(bytes.NewReader([]byte("hello"))), remaining: 5, key: "k"}
		data, err := io.ReadAll(g)
		require.NoError(t, err)
		require.Equal(t, "hello", string(data))
		require.NoError(t, g.Close())
	})

	t.Run("over limit", func(t *testing.T) {
		t.Parallel()
		g := &sizeGuard{body: io.NopCloser(bytes.NewReader([]byte("hello world"))), remaining: 5, key: "k"}
		_, err := io.ReadAll(g)
		require.True(t, errors.Is(err, ErrObjectTooLarge))
	})
}
