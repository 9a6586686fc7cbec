// Package metric provides the closed-form distance metrics of geodist.
//
// Every function is pure, total over finite float64 inputs and safe for
// unsynchronized concurrent use. Mathematically undefined inputs are not
// guarded; they propagate by natural floating-point arithmetic (NaN for
// a zero vector in Cosine, +Inf for p=0 in Minkowski) and callers check
// with math.IsNaN or math.IsInf.
package metric

import "math"

// earthRadiusKm is the mean Earth radius used by Haversine.
const earthRadiusKm = 6371.0

// Euclidean returns the straight-line distance between the coordinate
// pairs, in input units.
func Euclidean(lat1, lng1, lat2, lng2 float64) float64 {
	return math.Hypot(lat1-lat2, lng1-lng2)
}

// Manhattan returns the taxicab distance between the coordinate pairs.
func Manhattan(lat1, lng1, lat2, lng2 float64) float64 {
	return math.Abs(lat1-lat2) + math.Abs(lng1-lng2)
}

// Chebyshev returns the maximum per-axis difference.
func Chebyshev(lat1, lng1, lat2, lng2 float64) float64 {
	return math.Max(math.Abs(lat1-lat2), math.Abs(lng1-lng2))
}

// Minkowski returns the order-p Minkowski distance. p=2 degenerates to
// Euclidean, p=1 to Manhattan. p=0 is not guarded: each term raises to
// the zeroth power (1), and the outer 1/p exponent is +Inf, so the
// result is +Inf by natural float propagation.
func Minkowski(lat1, lng1, lat2, lng2, p float64) float64 {
	sum := math.Pow(math.Abs(lat1-lat2), p) + math.Pow(math.Abs(lng1-lng2), p)
	return math.Pow(sum, 1/p)
}

// Haversine returns the great-circle distance in kilometers between two
// points given in decimal degrees, on a sphere of radius 6371 km.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ThreeDimensional returns the Euclidean norm of the 4-term vector
// (lat1-lat2, lng1-lng2, lat3-lat2, lng3-lng2).
//
// Note the term grouping: the third point is differenced against the
// second, so this is not the conventional distance between two 3-tuples.
// The grouping is kept as-is for compatibility with existing callers.
func ThreeDimensional(lat1, lng1, lat2, lng2, lat3, lng3 float64) float64 {
	d1 := lat1 - lat2
	d2 := lng1 - lng2
	d3 := lat3 - lat2
	d4 := lng3 - lng2
	return math.Sqrt(d1*d1 + d2*d2 + d3*d3 + d4*d4)
}

// Cosine returns the cosine distance (1 - cosine similarity) between the
// vectors (lat1, lng1) and (lat2, lng2). A zero vector on either side
// divides by zero and yields NaN; that is deliberate and not guarded.
func Cosine(lat1, lng1, lat2, lng2 float64) float64 {
	dot := lat1*lat2 + lng1*lng2
	normA := math.Hypot(lat1, lng1)
	normB := math.Hypot(lat2, lng2)
	return 1 - dot/(normA*normB)
}

// Hamming returns the count of positional mismatches between the
// 2-element vectors (n1, n2) and (n3, n4): 0, 1 or 2.
func Hamming(n1, n2, n3, n4 float64) float64 {
	var count float64
	if n1 != n3 {
		count++
	}
	if n2 != n4 {
		count++
	}
	return count
}

// Jaccard returns the Jaccard distance between the sets {lat1, lng1} and
// {lat2, lng2}. Duplicate elements collapse under set semantics. When
// both sets are empty-equivalent the distance is 0 (guarded; 0/0 would
// otherwise be NaN).
func Jaccard(lat1, lng1, lat2, lng2 float64) float64 {
	a := makeSet(lat1, lng1)
	b := makeSet(lat2, lng2)

	inter := intersectionSize(a, b)
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}

	return 1 - float64(inter)/float64(union)
}

// SorensenDice returns the Sørensen–Dice distance between the sets
// {lat1, lng1} and {lat2, lng2}, with the same empty-set guard as
// Jaccard.
func SorensenDice(lat1, lng1, lat2, lng2 float64) float64 {
	a := makeSet(lat1, lng1)
	b := makeSet(lat2, lng2)

	total := len(a) + len(b)
	if total == 0 {
		return 0
	}

	inter := intersectionSize(a, b)
	return 1 - 2*float64(inter)/float64(total)
}

func makeSet(values ...float64) []float64 {
	set := make([]float64, 0, len(values))
	for _, v := range values {
		if !contains(set, v) {
			set = append(set, v)
		}
	}
	return set
}

func intersectionSize(a, b []float64) int {
	n := 0
	for _, v := range a {
		if contains(b, v) {
			n++
		}
	}
	return n
}

func contains(set []float64, v float64) bool {
	for _, e := range set {
		if e == v {
			return true
		}
	}
	return false
}
