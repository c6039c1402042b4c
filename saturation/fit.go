package saturation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned by FitMichaelisMenten when there are
// fewer than two saturation points, or when all points share the same
// read depth.
var ErrInsufficientData = errors.New("curve fit requires at least two points with distinct read depths")

// FitConvergenceError reports that the least-squares optimizer failed
// to converge, or converged to a numerically singular solution.
type FitConvergenceError struct {
	Status optimize.Status
	Err    error
}

func (e *FitConvergenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("curve fit did not converge (status %v): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("curve fit did not converge (status %v)", e.Status)
}

func (e *FitConvergenceError) Unwrap() error { return e.Err }

// MichaelisMenten evaluates the two-parameter saturating model
// vmax*x/(km+x).
func MichaelisMenten(x, vmax, km float64) float64 {
	return vmax * x / (km + x)
}

// FitResult holds the fitted Michaelis-Menten parameters, their
// standard errors, and the goodness of fit.
type FitResult struct {
	// Vmax is the fitted saturation asymptote.
	Vmax float64
	// Km is the fitted half-saturation read depth.
	Km float64
	// VmaxStdErr and KmStdErr are the square roots of the diagonal of
	// the fit covariance matrix.
	VmaxStdErr float64
	KmStdErr   float64
	// RSquared is the coefficient of determination.  It is undefined
	// when all observed saturations are identical; RSquaredOK is false
	// in that case and RSquared must not be used.
	RSquared   float64
	RSquaredOK bool
	// MinReads and MaxReads bound the observed read depths and define
	// the curve evaluation range.
	MinReads float64
	MaxReads float64
}

// Eval evaluates the fitted model at read depth x.
func (f *FitResult) Eval(x float64) float64 {
	return MichaelisMenten(x, f.Vmax, f.Km)
}

// FitMichaelisMenten fits the Michaelis-Menten model to the given
// saturation points by nonlinear least squares, starting from
// Vmax = max(saturation) and Km = mean(reads).
func FitMichaelisMenten(points []SaturationPoint) (FitResult, error) {
	n := len(points)
	xs := make([]float64, n)
	ys := make([]float64, n)
	distinct := map[float64]bool{}
	for i, p := range points {
		xs[i] = float64(p.Reads)
		ys[i] = p.Saturation
		distinct[xs[i]] = true
	}
	if n < 2 || len(distinct) < 2 {
		return FitResult{}, ErrInsufficientData
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			ss := 0.0
			for i := range xs {
				r := ys[i] - MichaelisMenten(xs[i], p[0], p[1])
				ss += r * r
			}
			return ss
		},
		Grad: func(grad, p []float64) {
			grad[0], grad[1] = 0, 0
			for i := range xs {
				d := p[1] + xs[i]
				fi := p[0] * xs[i] / d
				r := ys[i] - fi
				grad[0] -= 2 * r * xs[i] / d
				grad[1] += 2 * r * fi / d
			}
		},
	}
	p0 := []float64{floats.Max(ys), stat.Mean(xs, nil)}
	result, err := optimize.Minimize(problem, p0, nil, nil)
	if err != nil {
		return FitResult{}, &FitConvergenceError{Err: err}
	}
	if result.Status == optimize.NotTerminated || result.Status == optimize.Failure {
		return FitResult{}, &FitConvergenceError{Status: result.Status}
	}
	vmax, km := result.X[0], result.X[1]
	if math.IsNaN(vmax) || math.IsInf(vmax, 0) || math.IsNaN(km) || math.IsInf(km, 0) {
		return FitResult{}, &FitConvergenceError{Status: result.Status}
	}

	// Standard errors from the linearized covariance s^2*(J'J)^-1,
	// with J the model Jacobian at the solution.
	jac := mat.NewDense(n, 2, nil)
	ssRes := 0.0
	meanY := stat.Mean(ys, nil)
	ssTot := 0.0
	for i := range xs {
		d := km + xs[i]
		jac.Set(i, 0, xs[i]/d)
		jac.Set(i, 1, -vmax*xs[i]/(d*d))
		r := ys[i] - MichaelisMenten(xs[i], vmax, km)
		ssRes += r * r
		dy := ys[i] - meanY
		ssTot += dy * dy
	}
	var jtj, cov mat.Dense
	jtj.Mul(jac.T(), jac)
	if err := cov.Inverse(&jtj); err != nil {
		return FitResult{}, &FitConvergenceError{Status: result.Status, Err: err}
	}
	s2 := 0.0
	if n > 2 {
		s2 = ssRes / float64(n-2)
	}

	fit := FitResult{
		Vmax:       vmax,
		Km:         km,
		VmaxStdErr: math.Sqrt(s2 * cov.At(0, 0)),
		KmStdErr:   math.Sqrt(s2 * cov.At(1, 1)),
		MinReads:   floats.Min(xs),
		MaxReads:   floats.Max(xs),
	}
	if ssTot > 0 {
		fit.RSquared = 1 - ssRes/ssTot
		fit.RSquaredOK = true
	}
	return fit, nil
}
