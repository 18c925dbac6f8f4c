package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbs1D(t *testing.T) {
	a, b, c := 1.0, 2.5, 5.0

	assert.Equal(t, 1.5, Abs1D(a, b))
	assert.Equal(t, 4.0, Abs1D(a, c))
	assert.Equal(t, Abs1D(a, b), Abs1D(b, a))
}

func TestEuclidean2D(t *testing.T) {
	p := []float64{1, 2}
	q := []float64{4, 6}

	d, err := Deltas(p, q)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, d)

	dist, err := Euclidean(p, q)
	require.NoError(t, err)
	assert.Equal(t, 5.0, dist)
}

func TestEuclidean3D(t *testing.T) {
	p := []float64{1, 1, 1}
	q := []float64{3, 2, 4}

	d, err := Deltas(p, q)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 3}, d)

	dist, err := Euclidean(p, q)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(14), dist, 1e-12)
	assert.InDelta(t, 3.74, dist, 0.005)
}

func TestMinkowskiFamily(t *testing.T) {
	p := []float64{1, 2}
	q := []float64{4, 6}

	tests := []struct {
		name string
		fn   func(p, q []float64) (float64, error)
		want float64
	}{
		{"manhattan", Manhattan, 7},
		{"euclidean", Euclidean, 5},
		{"chebyshev", Chebyshev, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(p, q)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	got, err := Minkowski(p, q, 3)
	require.NoError(t, err)
	assert.InDelta(t, math.Cbrt(27+64), got, 1e-9)
}

func TestMinkowskiErrors(t *testing.T) {
	_, err := Euclidean([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Minkowski([]float64{1}, []float64{2}, 0.5)
	assert.Error(t, err)
}

func TestMetric(t *testing.T) {
	for _, m := range []Metric{L1, L2, LInf} {
		parsed, err := ParseMetric(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	assert.True(t, math.IsInf(LInf.P(), 1))
	assert.Equal(t, 2.0, L2.P())

	_, err := ParseMetric("cosine")
	assert.Error(t, err)
}

func TestMetricDistance(t *testing.T) {
	origin, x := []float64{0, 0}, []float64{1, 1}

	tests := []struct {
		metric Metric
		want   float64
	}{
		{L1, 2},
		{L2, math.Sqrt2},
		{LInf, 1},
	}
	for _, tt := range tests {
		t.Run(tt.metric.String(), func(t *testing.T) {
			got, err := tt.metric.Distance(origin, x)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)

			viaP, err := Minkowski(origin, x, tt.metric.P())
			require.NoError(t, err)
			assert.InDelta(t, viaP, got, 1e-12)
		})
	}

	_, err := Metric(0).Distance(origin, x)
	assert.Error(t, err)
	_, err = L1.Distance(origin, []float64{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestAxisPath(t *testing.T) {
	path, err := AxisPath([]float64{1, 1, 1}, []float64{3, 2, 4})
	require.NoError(t, err)

	want := [][]float64{
		{1, 1, 1},
		{3, 1, 1},
		{3, 2, 1},
		{3, 2, 4},
	}
	assert.Equal(t, want, path)
}

func TestBallCubeRatio(t *testing.T) {
	tests := []struct {
		d    int
		want float64
	}{
		{1, 1.0},
		{2, math.Pi / 4},
		{3, (4.0 / 3.0) * math.Pi / 8},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, BallCubeRatio(tt.d), 1e-12, "d=%d", tt.d)
	}

	assert.InDelta(t, 0.785, BallCubeRatio(2), 0.0005)
	assert.InDelta(t, 0.524, BallCubeRatio(3), 0.0005)

	// The ratio keeps shrinking with the dimension.
	for d := 2; d < 12; d++ {
		assert.Less(t, BallCubeRatio(d), BallCubeRatio(d-1))
	}
}

func TestBallVolume(t *testing.T) {
	r := 1.2
	assert.InDelta(t, 2*r, BallVolume(1, r), 1e-12)
	assert.InDelta(t, math.Pi*r*r, BallVolume(2, r), 1e-12)
	assert.InDelta(t, 4.0/3.0*math.Pi*r*r*r, BallVolume(3, r), 1e-12)
}

func TestBallOutline(t *testing.T) {
	assert.Len(t, BallOutline(1, 1.5, 0), 4)
	assert.Len(t, BallOutline(math.Inf(1), 1.5, 0), 4)

	// The diamond and sampled curves start on the x axis, the square at a corner
	assert.Equal(t, [2]float64{1.5, 0}, BallOutline(1, 1.5, 0)[0])
	assert.Equal(t, [2]float64{1.5, 1.5}, BallOutline(math.Inf(1), 1.5, 0)[0])
	assert.InDelta(t, 0, BallOutline(3, 1.5, 64)[0][1], 1e-12)

	for _, p := range []float64{2, 3} {
		pts := BallOutline(p, 1.5, 64)
		require.Len(t, pts, 64)
		for _, pt := range pts {
			n, err := Norm([]float64{pt[0], pt[1]}, p)
			require.NoError(t, err)
			assert.InDelta(t, 1.5, n, 1e-9)
		}
	}
}
