// Package geometry holds the numeric side of the tutorial: distances between
// points, p-norm balls and the volume formulas behind the curse of
// dimensionality. Scenes format their captions from these values instead of
// hardcoding the results.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrDimensionMismatch is returned when two points have different lengths.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Metric identifies a member of the Minkowski family used in the scenes.
type Metric int

const (
	// L1 is the Manhattan distance (p=1).
	L1 Metric = iota + 1
	// L2 is the Euclidean distance (p=2).
	L2
	// LInf is the Chebyshev distance (p=∞).
	LInf
)

// String returns the conventional name of the metric.
func (m Metric) String() string {
	switch m {
	case L1:
		return "manhattan"
	case L2:
		return "euclidean"
	case LInf:
		return "chebyshev"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// P returns the Minkowski exponent of the metric.
func (m Metric) P() float64 {
	switch m {
	case L1:
		return 1
	case L2:
		return 2
	default:
		return math.Inf(1)
	}
}

// Distance measures p to q with the metric.
func (m Metric) Distance(p, q []float64) (float64, error) {
	switch m {
	case L1:
		return Manhattan(p, q)
	case L2:
		return Euclidean(p, q)
	case LInf:
		return Chebyshev(p, q)
	default:
		return 0, fmt.Errorf("unknown metric: %v", m)
	}
}

// ParseMetric accepts metric names and the usual short aliases.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l1", "manhattan", "taxicab", "1":
		return L1, nil
	case "l2", "euclidean", "2":
		return L2, nil
	case "linf", "chebyshev", "max", "inf":
		return LInf, nil
	default:
		return 0, fmt.Errorf("unknown metric: %s", s)
	}
}

// Abs1D is the distance between two points on a line.
func Abs1D(a, b float64) float64 {
	return math.Abs(a - b)
}

// Deltas returns |q_i - p_i| for every axis.
func Deltas(p, q []float64) ([]float64, error) {
	if len(p) != len(q) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(p), len(q))
	}
	d := make([]float64, len(p))
	for i := range p {
		d[i] = math.Abs(q[i] - p[i])
	}
	return d, nil
}

// Euclidean returns the L2 distance between p and q.
func Euclidean(p, q []float64) (float64, error) {
	return Minkowski(p, q, 2)
}

// Manhattan returns the L1 distance between p and q.
func Manhattan(p, q []float64) (float64, error) {
	return Minkowski(p, q, 1)
}

// Chebyshev returns the L∞ distance between p and q.
func Chebyshev(p, q []float64) (float64, error) {
	return Minkowski(p, q, math.Inf(1))
}

// Minkowski returns the p-norm of q-p. pNorm must be >= 1 or +Inf.
func Minkowski(p, q []float64, pNorm float64) (float64, error) {
	d, err := Deltas(p, q)
	if err != nil {
		return 0, err
	}
	return Norm(d, pNorm)
}

// Norm returns the p-norm of v.
func Norm(v []float64, pNorm float64) (float64, error) {
	if math.IsNaN(pNorm) || pNorm < 1 {
		return 0, fmt.Errorf("invalid norm exponent %v", pNorm)
	}

	switch {
	case math.IsInf(pNorm, 1):
		m := 0.0
		for _, x := range v {
			m = math.Max(m, math.Abs(x))
		}
		return m, nil
	case pNorm == 1:
		s := 0.0
		for _, x := range v {
			s += math.Abs(x)
		}
		return s, nil
	case pNorm == 2:
		s := 0.0
		for _, x := range v {
			s += x * x
		}
		return math.Sqrt(s), nil
	}

	s := 0.0
	for _, x := range v {
		s += math.Pow(math.Abs(x), pNorm)
	}
	return math.Pow(s, 1/pNorm), nil
}

// AxisPath returns the corners of the axis-aligned walk from p to q, moving
// along one axis at a time: p, (q0,p1,..), (q0,q1,p2,..), ..., q.
func AxisPath(p, q []float64) ([][]float64, error) {
	if len(p) != len(q) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(p), len(q))
	}
	path := make([][]float64, 0, len(p)+1)
	cur := append([]float64(nil), p...)
	path = append(path, append([]float64(nil), cur...))
	for i := range p {
		cur[i] = q[i]
		path = append(path, append([]float64(nil), cur...))
	}
	return path, nil
}
