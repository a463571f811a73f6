package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolverLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weather.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

	r, err := NewResolver(nil)
	require.NoError(t, err)

	data, err := r.Fetch(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []byte(`[]`), data)
}

func TestResolverLocalFileMissing(t *testing.T) {
	r, err := NewResolver(nil)
	require.NoError(t, err)

	_, err = r.Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolverRemoteUnconfigured(t *testing.T) {
	r, err := NewResolver(nil)
	require.NoError(t, err)

	_, err = r.Fetch(context.Background(), "s3://bucket/weather.json")
	require.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestSplitURI(t *testing.T) {
	bucket, key, err := splitURI("s3://weather/batches/2024.json")
	require.NoError(t, err)
	require.Equal(t, "weather", bucket)
	require.Equal(t, "batches/2024.json", key)

	for _, uri := range []string{"s3://", "s3://bucket", "s3://bucket/"} {
		_, _, err := splitURI(uri)
		require.Error(t, err, uri)
	}
}
