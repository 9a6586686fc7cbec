package geodist

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineCompute(t *testing.T) {
	ctx := context.Background()
	eng := New()

	t.Run("Haversine", func(t *testing.T) {
		got, err := eng.Compute(ctx, "haversine", 40.7128, -74.0060, 51.5074, -0.1278)
		require.NoError(t, err)
		assert.InDelta(t, 5570, got, 10)
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		got, err := eng.Compute(ctx, "Vincenty", 0, 0, 0, 90)
		require.NoError(t, err)
		assert.InDelta(t, 10018.75, got, 5)
	})

	t.Run("NaNIsAValueNotAnError", func(t *testing.T) {
		got, err := eng.Compute(ctx, "vincenty", 0, 0, 0.5, 179.5)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got))
	})

	t.Run("UnknownFormula", func(t *testing.T) {
		_, err := eng.Compute(ctx, "wormhole")
		assert.ErrorIs(t, err, ErrUnknownFormula)
	})
}

func TestEngineComputeMetrics(t *testing.T) {
	ctx := context.Background()
	collector := &BasicMetricsCollector{}
	eng := New(WithMetricsCollector(collector))

	_, err := eng.Compute(ctx, "euclidean", 0, 0, 3, 4)
	require.NoError(t, err)
	_, err = eng.Compute(ctx, "cosine", 0, 0, 3, 4) // zero vector, NaN
	require.NoError(t, err)

	stats := collector.GetStats()
	assert.EqualValues(t, 2, stats.ComputeCount)
	assert.EqualValues(t, 1, stats.ComputeNaN)
}

func TestEngineComputeBatch(t *testing.T) {
	ctx := context.Background()
	collector := &BasicMetricsCollector{}
	eng := New(WithMetricsCollector(collector), WithParallelism(4))

	argSets := [][]float64{
		{0, 0, 3, 4},
		{1, 1, 1, 1},
		{-1, -1, 2, 3},
	}

	results, err := eng.ComputeBatch(ctx, "euclidean", argSets)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.InDelta(t, 5, results[0], 1e-12)
	assert.Zero(t, results[1])
	assert.InDelta(t, 5, results[2], 1e-12)

	stats := collector.GetStats()
	assert.EqualValues(t, 1, stats.BatchCount)
	assert.EqualValues(t, 3, stats.BatchItems)
}

func TestEngineComputeBatchNaNCounting(t *testing.T) {
	ctx := context.Background()
	collector := &BasicMetricsCollector{}
	eng := New(WithMetricsCollector(collector))

	argSets := [][]float64{
		{0, 0, 0, 90},      // converges
		{0, 0, 0.5, 179.5}, // near-antipodal, NaN
		{10, 10, 10, 10},   // coincident, 0
	}

	results, err := eng.ComputeBatch(ctx, "vincenty", argSets)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(results[0]))
	assert.True(t, math.IsNaN(results[1]))
	assert.Zero(t, results[2])

	assert.EqualValues(t, 1, collector.GetStats().BatchNaN)
}

func TestEngineComputeBatchEmpty(t *testing.T) {
	eng := New()
	_, err := eng.ComputeBatch(context.Background(), "euclidean", nil)
	assert.ErrorIs(t, err, ErrNoArgSets)
}

func TestEngineComputeBatchCanceled(t *testing.T) {
	eng := New(WithParallelism(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	argSets := make([][]float64, 128)
	for i := range argSets {
		argSets[i] = []float64{0, 0, 1, 1}
	}

	_, err := eng.ComputeBatch(ctx, "euclidean", argSets)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineConcurrentUse(t *testing.T) {
	ctx := context.Background()
	eng := New()

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 100 {
				got, err := eng.Compute(ctx, "vincenty", 40.7128, -74.0060, 51.5074, -0.1278)
				if err != nil || math.IsNaN(got) {
					t.Error("concurrent compute failed")
					return
				}
			}
		}()
	}
	for range 8 {
		<-done
	}
}
