// Package geodesic computes geodesic distances on an oblate ellipsoid.
//
// The inverse problem (distance between two latitude/longitude pairs) is
// solved with Vincenty's formula, an iterative fixed-point refinement of
// the auxiliary longitude difference. When the iteration converges the
// result is accurate to well under a millimeter; for near-antipodal pairs
// the iteration may not converge, in which case NaN is returned.
//
// All functions are pure and safe for unsynchronized concurrent use.
package geodesic

import "math"

// Ellipsoid describes a reference ellipsoid by its semi-major axis A,
// semi-minor axis B (both meters) and flattening F.
type Ellipsoid struct {
	A float64
	B float64
	F float64
}

// WGS84 is the World Geodetic System 1984 reference ellipsoid.
var WGS84 = Ellipsoid{
	A: 6378137.0,
	B: 6356752.31424518,
	F: 1 / 298.257223563,
}

const (
	// maxIterations bounds the lambda iteration. Vincenty's inverse
	// formula converges within a handful of iterations for all but
	// near-antipodal inputs; those are reported as non-convergent.
	maxIterations = 20

	// convergenceTol is the maximum change (radians) between successive
	// lambda iterates for the solver to be considered stabilized.
	convergenceTol = 1e-12
)

// Vincenty returns the geodesic distance in kilometers between two points
// on the WGS84 ellipsoid, given in decimal degrees.
//
// Sentinel results:
//   - 0 for coincident points
//   - NaN if the iteration did not converge (near-antipodal pairs)
func Vincenty(lat1, lng1, lat2, lng2 float64) float64 {
	return WGS84.Inverse(lat1, lng1, lat2, lng2)
}

// Inverse solves the inverse geodesic problem on e: the distance in
// kilometers between (lat1, lng1) and (lat2, lng2), decimal degrees.
//
// Abnormal geometry is encoded in the return value, never a panic:
// coincident points yield 0, a non-convergent iteration yields NaN.
// Callers must check math.IsNaN to distinguish failure from a short
// distance.
func (e Ellipsoid) Inverse(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	l := radians(lng2) - radians(lng1)

	// Reduced latitudes on the auxiliary sphere.
	u1 := math.Atan((1 - e.F) * math.Tan(phi1))
	u2 := math.Atan((1 - e.F) * math.Tan(phi2))

	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	lambdaPrev := 2 * math.Pi

	var (
		sinSigma   float64
		cosSigma   float64
		sigma      float64
		sinAlpha   float64
		cosSqAlpha float64
		cos2SigmaM float64
	)

	for i := 0; i < maxIterations; i++ {
		if math.Abs(lambda-lambdaPrev) <= convergenceTol {
			break
		}

		sinLambda, cosLambda := math.Sincos(lambda)

		sinSigma = math.Hypot(
			cosU2*sinLambda,
			cosU1*sinU2-sinU1*cosU2*cosLambda,
		)
		if sinSigma == 0 {
			// Coincident points.
			return 0
		}

		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha = cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha

		cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		if math.IsNaN(cos2SigmaM) {
			// Both points on the equator (cosSqAlpha == 0).
			cos2SigmaM = 0
		}

		c := e.F / 16 * cosSqAlpha * (4 + e.F*(4-3*cosSqAlpha))

		lambdaPrev = lambda
		lambda = l + (1-c)*e.F*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(2*cos2SigmaM*cos2SigmaM-1)))
	}

	if math.Abs(lambda-lambdaPrev) > convergenceTol {
		// Iteration budget exhausted without stabilizing; typical for
		// near-antipodal pairs. Distinguishable from a legitimate short
		// distance by math.IsNaN.
		return math.NaN()
	}

	uSq := cosSqAlpha * (e.A*e.A - e.B*e.B) / (e.B * e.B)
	a := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	b := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	deltaSigma := b * sinSigma * (cos2SigmaM + b/4*
		(cosSigma*(2*cos2SigmaM*cos2SigmaM-1)-
			b/6*cos2SigmaM*(4*sinSigma*sinSigma-3)*(4*cos2SigmaM*cos2SigmaM-3)))

	// Meters to kilometers.
	return e.B * a * (sigma - deltaSigma) / 1000
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
