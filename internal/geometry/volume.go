package geometry

import (
	"math"
)

// BallVolume is the volume of the d-dimensional Euclidean ball of radius r:
// π^(d/2) / Γ(d/2 + 1) · r^d.
func BallVolume(d int, r float64) float64 {
	if d < 0 {
		return 0
	}
	fd := float64(d)
	return math.Pow(math.Pi, fd/2) / math.Gamma(fd/2+1) * math.Pow(r, fd)
}

// CubeVolume is the volume of the cube of side 2r that bounds the ball.
func CubeVolume(d int, r float64) float64 {
	if d < 0 {
		return 0
	}
	return math.Pow(2*r, float64(d))
}

// BallCubeRatio is the fraction of the bounding cube filled by the inscribed
// ball. It does not depend on r and drops towards zero as d grows.
func BallCubeRatio(d int) float64 {
	c := CubeVolume(d, 1)
	if c == 0 {
		return 0
	}
	return BallVolume(d, 1) / c
}

// BallOutline returns the boundary of the 2D p-norm ball of radius r,
// counter-clockwise. p=1 and p=∞ yield the exact diamond and square corners,
// the square starting at (r, r); other exponents are sampled starting on the
// positive x axis.
func BallOutline(pNorm, r float64, samples int) [][2]float64 {
	switch {
	case pNorm == 1:
		return [][2]float64{{r, 0}, {0, r}, {-r, 0}, {0, -r}}
	case math.IsInf(pNorm, 1):
		return [][2]float64{{r, r}, {-r, r}, {-r, -r}, {r, -r}}
	}

	if samples < 8 {
		samples = 8
	}
	pts := make([][2]float64, 0, samples)
	for i := 0; i < samples; i++ {
		a := 2 * math.Pi * float64(i) / float64(samples)
		x, y := math.Cos(a), math.Sin(a)
		n, err := Norm([]float64{x, y}, pNorm)
		if err != nil || n == 0 {
			continue
		}
		pts = append(pts, [2]float64{r * x / n, r * y / n})
	}
	return pts
}
