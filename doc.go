// Package geodist is a multi-metric distance computation engine for
// geographic and vector coordinates.
//
// Eleven formulas are supported, selected by a case-insensitive name:
// euclidean, haversine, vincenty, manhattan, chebyshev, minkowski, 3d,
// cosine, hamming, jaccard and sorensen-dice. The closed-form metrics
// live in the metric package; the iterative Vincenty geodesic solver
// (WGS-84 ellipsoid) lives in the geodesic package.
//
// # Quick Start
//
//	eng := geodist.New()
//	km, err := eng.Compute(ctx, "vincenty", 40.7128, -74.0060, 51.5074, -0.1278)
//
// Or dispatch without the engine:
//
//	f, _ := geodist.ParseFormula("Haversine")
//	fn, _ := geodist.Provider(f)
//	km := fn([]float64{40.7128, -74.0060, 51.5074, -0.1278})
//
// # Sentinel Semantics
//
// Metric results are plain float64 values. Abnormal numeric conditions
// are encoded in the value, never as an error or panic:
//
//   - 0: coincident points (vincenty short-circuit)
//   - NaN: non-convergence (vincenty on near-antipodal points), or a
//     mathematically undefined input (zero vector in cosine)
//   - +Inf: unguarded overflow (p=0 in minkowski, where the 1/p
//     exponent is infinite)
//
// Check math.IsNaN on results where non-convergence matters. Errors are
// reserved for dispatch problems (unknown formula) and storage/batch
// failures.
//
// # Batch Workloads
//
// The matrix package computes pairwise distance matrices in parallel and
// persists them as compressed snapshots on local disk, S3 or MinIO via
// the blobstore package.
package geodist
