package stboundary

import "github.com/pkg/errors"

// Construction and query failures. They are returned wrapped with the offending values.
var (
	ErrTooFewPoints            = errors.New("st boundary needs at least two point pairs")
	ErrUpperBelowLower         = errors.New("upper s is below lower s")
	ErrPairTimeMismatch        = errors.New("lower and upper t differ within a point pair")
	ErrTimeNotIncreasing       = errors.New("t is not increasing")
	ErrTimeOutOfRange          = errors.New("t is out of range")
	ErrUnsupportedBoundaryType = errors.New("boundary type is not supported")
	ErrChainLengthMismatch     = errors.New("lower and upper chains differ in length")
)
