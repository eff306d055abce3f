package calib

import(
	"context"

	"github.com/pkg/errors"

	"github.com/abworrall/btrgb/pkg/simplex"
)

var(
	ErrInput             = errors.New("missing calibration input")
	ErrDimension         = errors.New("matrix or image dimensions do not match")
	ErrNumericDegeneracy = errors.New("calibration produced non-finite values")
)

// optimizerError maps what the simplex reports onto our own errors. ctx
// errors are passed through as they are.
func optimizerError(err error, stage string, res simplex.Result) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errors.Wrapf(err, "%s: stopped after %d iterations", stage, res.Iterations)
	case errors.Is(err, simplex.ErrNonFinite):
		return errors.Wrapf(ErrNumericDegeneracy, "%s: %v", stage, err)
	}
	return errors.Wrap(err, stage)
}
