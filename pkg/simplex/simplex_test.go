package simplex

import(
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A convex quadratic with its minimum at (1, 2, 3, 4), scaled differently on each axis
func quadratic(x []float64) float64 {
	sum := 0.0
	for i := range x {
		d := x[i] - float64(i+1)
		sum += float64(i+1) * d * d
	}
	return sum
}

func rosenbrock(x []float64) float64 {
	a, b := 1.0-x[0], x[1]-x[0]*x[0]
	return a*a + 100.0*b*b
}

func TestQuadratic(t *testing.T) {
	s := Settings{MaxIterations: 5000, Tolerance: 1e-14}
	res, err := Minimize(context.Background(), quadratic, []float64{0, 0, 0, 0}, []float64{1, 1, 1, 1}, s)
	require.NoError(t, err)

	assert.Equal(t, Converged, res.Status)
	assert.Less(t, res.Iterations, s.MaxIterations)
	assert.Greater(t, res.Evaluations, res.Iterations)
	for i := range res.X {
		assert.InDelta(t, float64(i+1), res.X[i], 1e-4)
	}
	assert.Equal(t, quadratic(res.X), res.F, "F must be f(X)")
}

func TestRosenbrock(t *testing.T) {
	s := Settings{MaxIterations: 10000, Tolerance: 1e-18}
	res, err := Minimize(context.Background(), rosenbrock, []float64{-1.2, 1}, []float64{0.5, 0.5}, s)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.X[0], 1e-3)
	assert.InDelta(t, 1.0, res.X[1], 1e-3)
	assert.Equal(t, rosenbrock(res.X), res.F)
}

func TestStartAtMinimum(t *testing.T) {
	// x0 is a vertex, so a start on the minimum is never lost
	res, err := Minimize(context.Background(), quadratic, []float64{1, 2, 3, 4}, []float64{.75, .75, .75, .75}, Settings{Tolerance: 1e-10})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.F)
	assert.Equal(t, []float64{1, 2, 3, 4}, res.X)
}

func TestIterationLimit(t *testing.T) {
	res, err := Minimize(context.Background(), quadratic, []float64{0, 0, 0, 0}, []float64{1, 1, 1, 1}, Settings{MaxIterations: 3})
	require.NoError(t, err)
	assert.Equal(t, IterationLimit, res.Status)
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, quadratic(res.X), res.F)
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Minimize(ctx, quadratic, []float64{0, 0, 0, 0}, []float64{1, 1, 1, 1}, Settings{MaxIterations: 1000})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, Canceled, res.Status)
	assert.Equal(t, 0, res.Iterations)
	require.Len(t, res.X, 4)
	assert.Equal(t, quadratic(res.X), res.F)

	// Cancel partway through
	ctx, cancel = context.WithCancel(context.Background())
	calls := 0
	f := func(x []float64) float64 {
		calls++
		if calls == 50 {
			cancel()
		}
		return quadratic(x)
	}
	res, err = Minimize(ctx, f, []float64{0, 0, 0, 0}, []float64{1, 1, 1, 1}, Settings{MaxIterations: 1000, Tolerance: 1e-30})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, Canceled, res.Status)
	assert.Greater(t, res.Iterations, 0)
	assert.Less(t, res.Iterations, 1000)
}

func TestNonFinite(t *testing.T) {
	f := func(x []float64) float64 {
		if x[0] > 2.5 {
			return math.NaN()
		}
		return quadratic(x)
	}

	res, err := Minimize(context.Background(), f, []float64{0, 0, 0, 0}, []float64{1, 1, 1, 1}, Settings{MaxIterations: 1000, Tolerance: 1e-14})
	if err != nil {
		assert.True(t, errors.Is(err, ErrNonFinite), "got %v", err)
	}
	assert.False(t, math.IsNaN(res.F))

	res, err = Minimize(context.Background(), f, []float64{0, 0}, []float64{3, 0}, Settings{})
	assert.True(t, errors.Is(err, ErrNonFinite), "got %v", err)
	assert.Equal(t, []float64{0, 0}, res.X)
}

func TestParallelMatchesSerial(t *testing.T) {
	x0, step := []float64{-1.2, 1}, []float64{0.5, 0.5}

	serial, err := Minimize(context.Background(), rosenbrock, x0, step, Settings{MaxIterations: 2000, Tolerance: 1e-12})
	require.NoError(t, err)
	parallel, err := Minimize(context.Background(), rosenbrock, x0, step, Settings{MaxIterations: 2000, Tolerance: 1e-12, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, serial.X, parallel.X)
	assert.Equal(t, serial.F, parallel.F)
	assert.Equal(t, serial.Iterations, parallel.Iterations)
	assert.Equal(t, serial.Evaluations, parallel.Evaluations)
}

func TestBadInput(t *testing.T) {
	_, err := Minimize(context.Background(), quadratic, []float64{0, 0}, []float64{1}, Settings{})
	assert.True(t, errors.Is(err, ErrInput))
	_, err = Minimize(context.Background(), quadratic, nil, nil, Settings{})
	assert.True(t, errors.Is(err, ErrInput))
}
