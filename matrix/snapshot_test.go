package matrix

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geodist"
	"github.com/hupe1980/geodist/blobstore"
	"github.com/hupe1980/geodist/codec"
	"github.com/hupe1980/geodist/resource"
)

func testMatrix(t *testing.T) *Matrix {
	t.Helper()

	m, err := Compute(context.Background(), testPoints(), geodist.FormulaHaversine)
	require.NoError(t, err)

	return m
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := testMatrix(t)

	compressions := map[string]CompressionType{
		"none": CompressionNone,
		"lz4":  CompressionLZ4,
		"zstd": CompressionZSTD,
	}

	for name, ct := range compressions {
		t.Run(name, func(t *testing.T) {
			blob, err := m.Snapshot(WithCompression(ct))
			require.NoError(t, err)

			got, err := FromSnapshot(blob)
			require.NoError(t, err)

			assert.Equal(t, m.Formula(), got.Formula())
			assert.Equal(t, m.Len(), got.Len())
			assert.Equal(t, m.points, got.Points())
			assert.Equal(t, m.values, got.values)
		})
	}
}

func TestSnapshotPreservesNaN(t *testing.T) {
	points := []geodist.Point{
		{Lat: 0, Lng: 0},
		{Lat: 0.5, Lng: 179.5},
	}

	m, err := Compute(context.Background(), points, geodist.FormulaVincenty)
	require.NoError(t, err)
	require.True(t, math.IsNaN(m.At(0, 1)))

	blob, err := m.Snapshot()
	require.NoError(t, err)

	got, err := FromSnapshot(blob)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(got.At(0, 1)))
}

func TestSnapshotWithJSONCodec(t *testing.T) {
	m := testMatrix(t)

	blob, err := m.Snapshot(WithCodec(codec.JSON{}))
	require.NoError(t, err)

	got, err := FromSnapshot(blob)
	require.NoError(t, err)

	assert.Equal(t, m.Len(), got.Len())
}

func TestFromSnapshotBadMagic(t *testing.T) {
	_, err := FromSnapshot([]byte("XXXX\x00\x00\x00\x00"))
	require.Error(t, err)
}

func TestFromSnapshotTruncated(t *testing.T) {
	m := testMatrix(t)

	blob, err := m.Snapshot()
	require.NoError(t, err)

	_, err = FromSnapshot(blob[:len(blob)/2])
	require.Error(t, err)
}

func TestFromSnapshotChecksumMismatch(t *testing.T) {
	m := testMatrix(t)

	blob, err := m.Snapshot(WithCompression(CompressionNone))
	require.NoError(t, err)

	// Flip a payload byte.
	blob[len(blob)-1] ^= 0xff

	_, err = FromSnapshot(blob)
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestWriteAndLoad(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	m := testMatrix(t)

	err := Write(ctx, store, "cities/haversine.snap", m)
	require.NoError(t, err)

	got, err := Load(ctx, store, "cities/haversine.snap")
	require.NoError(t, err)

	assert.Equal(t, m.Len(), got.Len())
	assert.Equal(t, m.At(0, 1), got.At(0, 1))
}

func TestLoadNotFound(t *testing.T) {
	store := blobstore.NewMemoryStore()

	_, err := Load(context.Background(), store, "missing.snap")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestWriteWithIOController(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 16 << 20})

	m := testMatrix(t)

	err := Write(ctx, store, "limited.snap", m, WithIOController(rc))
	require.NoError(t, err)

	got, err := Load(ctx, store, "limited.snap", WithIOController(rc))
	require.NoError(t, err)

	assert.Equal(t, m.Len(), got.Len())
}

func TestCompressBlockFallback(t *testing.T) {
	// Random-ish incompressible data should be stored raw.
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i*7 + 13)
	}

	for _, ct := range []CompressionType{CompressionLZ4, CompressionZSTD} {
		block, err := compressBlock(data, ct)
		require.NoError(t, err)

		got, err := decompressBlock(block, ct)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
}

func TestCompressBlockCompressible(t *testing.T) {
	data := make([]byte, 64<<10) // zeros compress well

	for _, ct := range []CompressionType{CompressionLZ4, CompressionZSTD} {
		block, err := compressBlock(data, ct)
		require.NoError(t, err)
		assert.Less(t, len(block), len(data))

		got, err := decompressBlock(block, ct)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
}
