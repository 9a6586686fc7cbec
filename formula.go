package geodist

import (
	"strings"

	"github.com/hupe1980/geodist/geodesic"
	"github.com/hupe1980/geodist/metric"
)

// Formula identifies a supported distance formula.
type Formula int

const (
	FormulaEuclidean Formula = iota
	FormulaHaversine
	FormulaVincenty
	FormulaManhattan
	FormulaChebyshev
	FormulaMinkowski
	FormulaThreeDimensional
	FormulaCosine
	FormulaHamming
	FormulaJaccard
	FormulaSorensenDice
)

// formulaNames maps each Formula to its external key.
var formulaNames = map[Formula]string{
	FormulaEuclidean:        "euclidean",
	FormulaHaversine:        "haversine",
	FormulaVincenty:         "vincenty",
	FormulaManhattan:        "manhattan",
	FormulaChebyshev:        "chebyshev",
	FormulaMinkowski:        "minkowski",
	FormulaThreeDimensional: "3d",
	FormulaCosine:           "cosine",
	FormulaHamming:          "hamming",
	FormulaJaccard:          "jaccard",
	FormulaSorensenDice:     "sorensen-dice",
}

func (f Formula) String() string {
	if name, ok := formulaNames[f]; ok {
		return name
	}
	return "unknown"
}

// Formulas returns the external keys of all supported formulas.
func Formulas() []string {
	names := make([]string, 0, len(formulaNames))
	for f := FormulaEuclidean; f <= FormulaSorensenDice; f++ {
		names = append(names, formulaNames[f])
	}
	return names
}

// ParseFormula resolves a formula by its external key. Matching is
// case-insensitive. Unknown names return an *UnknownFormulaError that
// carries the supported key list for the diagnostic.
func ParseFormula(name string) (Formula, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for f, n := range formulaNames {
		if n == key {
			return f, nil
		}
	}
	return 0, &UnknownFormulaError{Name: name}
}

// Func computes a distance from a flat argument vector. Missing
// arguments are read as 0; extra arguments are ignored. Results follow
// the sentinel semantics documented on the package.
type Func func(args []float64) float64

// Provider returns the computation function for the given formula.
func Provider(f Formula) (Func, error) {
	switch f {
	case FormulaEuclidean:
		return func(a []float64) float64 {
			return metric.Euclidean(arg(a, 0), arg(a, 1), arg(a, 2), arg(a, 3))
		}, nil
	case FormulaHaversine:
		return func(a []float64) float64 {
			return metric.Haversine(arg(a, 0), arg(a, 1), arg(a, 2), arg(a, 3))
		}, nil
	case FormulaVincenty:
		return func(a []float64) float64 {
			return geodesic.Vincenty(arg(a, 0), arg(a, 1), arg(a, 2), arg(a, 3))
		}, nil
	case FormulaManhattan:
		return func(a []float64) float64 {
			return metric.Manhattan(arg(a, 0), arg(a, 1), arg(a, 2), arg(a, 3))
		}, nil
	case FormulaChebyshev:
		return func(a []float64) float64 {
			return metric.Chebyshev(arg(a, 0), arg(a, 1), arg(a, 2), arg(a, 3))
		}, nil
	case FormulaMinkowski:
		return func(a []float64) float64 {
			// The exponent defaults to 2 when absent. An explicit 0 is
			// forwarded and yields +Inf.
			p := 2.0
			if len(a) > 4 {
				p = a[4]
			}
			return metric.Minkowski(arg(a, 0), arg(a, 1), arg(a, 2), arg(a, 3), p)
		}, nil
	case FormulaThreeDimensional:
		return func(a []float64) float64 {
			return metric.ThreeDimensional(
				arg(a, 0), arg(a, 1), arg(a, 2), arg(a, 3), arg(a, 4), arg(a, 5))
		}, nil
	case FormulaCosine:
		return func(a []float64) float64 {
			return metric.Cosine(arg(a, 0), arg(a, 1), arg(a, 2), arg(a, 3))
		}, nil
	case FormulaHamming:
		return func(a []float64) float64 {
			return metric.Hamming(arg(a, 0), arg(a, 1), arg(a, 2), arg(a, 3))
		}, nil
	case FormulaJaccard:
		return func(a []float64) float64 {
			return metric.Jaccard(arg(a, 0), arg(a, 1), arg(a, 2), arg(a, 3))
		}, nil
	case FormulaSorensenDice:
		return func(a []float64) float64 {
			return metric.SorensenDice(arg(a, 0), arg(a, 1), arg(a, 2), arg(a, 3))
		}, nil
	default:
		return nil, &UnknownFormulaError{Name: f.String()}
	}
}

// PairProvider returns a two-point distance function for the given
// formula. The points are forwarded as the flat argument vector
// (p.Lat, p.Lng, q.Lat, q.Lng).
func PairProvider(f Formula) (func(p, q Point) float64, error) {
	fn, err := Provider(f)
	if err != nil {
		return nil, err
	}
	return func(p, q Point) float64 {
		return fn([]float64{p.Lat, p.Lng, q.Lat, q.Lng})
	}, nil
}

// arg reads args[i], coercing a missing argument to 0.
func arg(args []float64, i int) float64 {
	if i < len(args) {
		return args[i]
	}
	return 0
}
