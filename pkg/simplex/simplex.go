// Package simplex is a downhill simplex (Nelder-Mead) minimizer. It needs
// no derivatives, which suits the calibration objectives: they go through
// Lab conversions and row max/min, and nobody wants to differentiate those.
package simplex

import(
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/abworrall/btrgb/pkg/emath"
)

// Func is the objective. It must be a pure function of x, and must not
// keep hold of x after returning.
type Func func(x []float64) float64

type Settings struct {
	MaxIterations int      `yaml:"maxiterations"`
	Tolerance     float64  `yaml:"tolerance"`  // stop once f(worst) - f(best) is no more than this
	Workers       int      `yaml:"workers"`    // >1 evaluates independent points concurrently
}

type Status int

const(
	Converged Status = iota
	IterationLimit
	Canceled
)

func (s Status)String() string {
	switch s {
	case Converged:      return "converged"
	case IterationLimit: return "iteration-limit"
	case Canceled:       return "canceled"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

type Result struct {
	X           []float64
	F           float64  // f(X)
	Iterations  int
	Evaluations int
	Status      Status
}

func (r Result)String() string {
	return fmt.Sprintf("%s after %d iterations (%d evals), f=%.10g", r.Status, r.Iterations, r.Evaluations, r.F)
}

var(
	ErrNonFinite = errors.New("objective returned a non-finite value")
	ErrInput     = errors.New("bad optimizer input")
)

// Coefficients for reflection, expansion, contraction and shrinkage
const(
	alpha = 1.0
	gamma = 2.0
	rho   = 0.5
	sigma = 0.5
)

type minimizer struct {
	f       Func
	workers int
	evals   int

	pts     [][]float64  // n+1 vertices, kept sorted best first
	fs      []float64
}

// Minimize searches for the x that minimizes f. The initial simplex is
// x0, plus one vertex per dimension at x0 + step[i] along that axis.
//
// If ctx is canceled, the best point found so far is returned along with
// ctx.Err(). If f returns NaN or Inf, the run stops with ErrNonFinite,
// again returning the best (finite) point seen.
func Minimize(ctx context.Context, f Func, x0, step []float64, s Settings) (Result, error) {
	n := len(x0)
	if n == 0 || len(step) != n {
		return Result{}, errors.Wrapf(ErrInput, "x0 has %d dims, step has %d", n, len(step))
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = 200 * n
	}

	m := &minimizer{f: f, workers: s.Workers}
	m.pts = make([][]float64, n+1)
	m.fs = make([]float64, n+1)
	for i := range m.pts {
		m.pts[i] = make([]float64, n)
		copy(m.pts[i], x0)
		if i > 0 {
			m.pts[i][i-1] += step[i-1]
		}
	}

	res := Result{}
	if err := m.evalAll(m.pts, m.fs); err != nil {
		return m.result(res), err
	}
	m.sort()

	centroid := make([]float64, n)
	dir := make([]float64, n)
	xr, xe, xc := make([]float64, n), make([]float64, n), make([]float64, n)

	for {
		if m.fs[n] - m.fs[0] <= s.Tolerance {
			res.Status = Converged
			break
		}
		if res.Iterations >= s.MaxIterations {
			res.Status = IterationLimit
			break
		}
		if err := ctx.Err(); err != nil {
			res.Status = Canceled
			return m.result(res), err
		}
		res.Iterations++

		// Centroid of all but the worst, and the direction from the worst through it
		copy(centroid, m.pts[0])
		for i:=1; i<n; i++ {
			floats.Add(centroid, m.pts[i])
		}
		floats.Scale(1.0/float64(n), centroid)
		floats.SubTo(dir, centroid, m.pts[n])

		floats.AddScaledTo(xr, centroid, alpha, dir)
		fr, err := m.eval(xr)
		if err != nil {
			return m.result(res), err
		}

		switch {
		case fr < m.fs[0]:
			floats.AddScaledTo(xe, centroid, gamma, dir)
			fe, err := m.eval(xe)
			if err != nil {
				return m.result(res), err
			}
			if fe < fr {
				m.replaceWorst(xe, fe)
			} else {
				m.replaceWorst(xr, fr)
			}

		case fr < m.fs[n-1]:
			m.replaceWorst(xr, fr)

		default:
			// Contract; outside if the reflection improved on the worst, else inside
			outside := fr < m.fs[n]
			if outside {
				floats.AddScaledTo(xc, centroid, rho, dir)
			} else {
				floats.AddScaledTo(xc, centroid, -rho, dir)
			}
			fc, err := m.eval(xc)
			if err != nil {
				return m.result(res), err
			}

			if (outside && fc <= fr) || (!outside && fc < m.fs[n]) {
				m.replaceWorst(xc, fc)
			} else if err := m.shrink(); err != nil {
				return m.result(res), err
			}
		}

		m.sort()
	}

	return m.result(res), nil
}

// result reports the best finite vertex. The vertices are normally
// sorted, but not if a run was cut short mid-update.
func (m *minimizer)result(r Result) Result {
	best := 0
	for i := range m.fs {
		if emath.IsFinite(m.fs[i]) && (!emath.IsFinite(m.fs[best]) || m.fs[i] < m.fs[best]) {
			best = i
		}
	}

	r.X = make([]float64, len(m.pts[best]))
	copy(r.X, m.pts[best])
	r.F = m.fs[best]
	r.Evaluations = m.evals
	return r
}

func (m *minimizer)eval(x []float64) (float64, error) {
	m.evals++
	v := m.f(x)
	if !emath.IsFinite(v) {
		return v, errors.Wrapf(ErrNonFinite, "f=%v at evaluation %d", v, m.evals)
	}
	return v, nil
}

// evalAll fills in fs for each of xs. The points are independent, so
// they can be farmed out.
func (m *minimizer)evalAll(xs [][]float64, fs []float64) error {
	if m.workers <= 1 {
		for i := range fs {
			fs[i] = math.NaN()  // until evaluated
		}
		for i := range xs {
			v, err := m.eval(xs[i])
			fs[i] = v
			if err != nil {
				return err
			}
		}
		return nil
	}

	g := errgroup.Group{}
	g.SetLimit(m.workers)
	for i := range xs {
		i := i
		g.Go(func() error {
			fs[i] = m.f(xs[i])
			if !emath.IsFinite(fs[i]) {
				return errors.Wrapf(ErrNonFinite, "f=%v at vertex %d", fs[i], i)
			}
			return nil
		})
	}
	err := g.Wait()
	m.evals += len(xs)
	return err
}

func (m *minimizer)replaceWorst(x []float64, fx float64) {
	n := len(m.pts) - 1
	copy(m.pts[n], x)
	m.fs[n] = fx
}

// shrink pulls every vertex halfway towards the best one
func (m *minimizer)shrink() error {
	best := m.pts[0]
	for i:=1; i<len(m.pts); i++ {
		for j := range m.pts[i] {
			m.pts[i][j] = best[j] + sigma*(m.pts[i][j]-best[j])
		}
	}
	return m.evalAll(m.pts[1:], m.fs[1:])
}

// sort puts the vertices in order, best first. It is stable, so runs are
// reproducible however the evaluations were scheduled.
func (m *minimizer)sort() {
	idx := make([]int, len(m.pts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return m.fs[idx[a]] < m.fs[idx[b]] })

	pts := make([][]float64, len(m.pts))
	fs := make([]float64, len(m.fs))
	for i, j := range idx {
		pts[i], fs[i] = m.pts[j], m.fs[j]
	}
	m.pts, m.fs = pts, fs
}
