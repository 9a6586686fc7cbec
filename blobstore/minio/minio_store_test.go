package minio

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geodist/blobstore"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-geodist"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	// Check if MinIO is reachable
	_, err = client.ListBuckets(ctx)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "matrices/")

	t.Run("RoundTrip", func(t *testing.T) {
		data := []byte("snapshot payload")
		require.NoError(t, store.Put(ctx, "it/a.bin", data))

		got, err := store.Get(ctx, "it/a.bin")
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("List", func(t *testing.T) {
		names, err := store.List(ctx, "it/")
		require.NoError(t, err)
		assert.Contains(t, names, "it/a.bin")
	})

	t.Run("DeleteAndNotFound", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "it/a.bin"))

		_, err := store.Get(ctx, "it/a.bin")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)

		// Deleting again is not an error.
		assert.NoError(t, store.Delete(ctx, "it/a.bin"))
	})
}
