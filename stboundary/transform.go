package stboundary

import (
	"math"

	"github.com/pkg/errors"
)

// ExpandByS returns a boundary whose chains are pushed outward by s at every sample.
func (b *StBoundary) ExpandByS(s float64) (*StBoundary, error) {
	if s == 0 {
		return b, nil
	}
	pairs := make([]PointPair, 0, len(b.lowerPoints))
	for i := range b.lowerPoints {
		pairs = append(pairs, PointPair{
			Lower: NewSTPoint(b.lowerPoints[i].S-s, b.lowerPoints[i].T),
			Upper: NewSTPoint(b.upperPoints[i].S+s, b.upperPoints[i].T),
		})
	}
	return New(pairs, b.options()...)
}

// ExpandByT returns a boundary with one sample prepended t before the first and one appended t
// after the last, each extrapolated along the slope of the two nearest samples.
func (b *StBoundary) ExpandByT(t float64) (*StBoundary, error) {
	if t == 0 {
		return b, nil
	}
	lower, upper := b.lowerPoints, b.upperPoints
	n := len(lower)
	pairs := make([]PointPair, 0, n+2)

	leftDeltaT := lower[1].T - lower[0].T
	lowerLeftDeltaS := lower[1].S - lower[0].S
	upperLeftDeltaS := upper[1].S - upper[0].S
	first := PointPair{
		Lower: NewSTPoint(lower[0].S-t*lowerLeftDeltaS/leftDeltaT, lower[0].T-t),
		Upper: NewSTPoint(upper[0].S-t*upperLeftDeltaS/leftDeltaT, upper[0].T-t),
	}
	first.Lower.S = math.Min(first.Upper.S-minSEpsilon, first.Lower.S)
	pairs = append(pairs, first)

	for i := range lower {
		pairs = append(pairs, PointPair{Lower: lower[i], Upper: upper[i]})
	}

	rightDeltaT := lower[n-1].T - lower[n-2].T
	lowerRightDeltaS := lower[n-1].S - lower[n-2].S
	upperRightDeltaS := upper[n-1].S - upper[n-2].S
	last := PointPair{
		Lower: NewSTPoint(lower[n-1].S+t*lowerRightDeltaS/rightDeltaT, lower[n-1].T+t),
		Upper: NewSTPoint(upper[n-1].S+t*upperRightDeltaS/rightDeltaT, upper[n-1].T+t),
	}
	last.Upper.S = math.Max(last.Upper.S, last.Lower.S+minSEpsilon)
	pairs = append(pairs, last)

	return New(pairs, b.options()...)
}

// CutOffByT drops every sample whose lower t is before t and rebuilds the boundary from the rest.
func (b *StBoundary) CutOffByT(t float64) (*StBoundary, error) {
	pairs := make([]PointPair, 0, len(b.lowerPoints))
	for i := range b.lowerPoints {
		if b.lowerPoints[i].T < t {
			continue
		}
		pairs = append(pairs, PointPair{Lower: b.lowerPoints[i], Upper: b.upperPoints[i]})
	}
	if len(pairs) < 2 {
		return nil, errors.Wrapf(ErrTooFewPoints, "%d samples remain after cutting at t = %f", len(pairs), t)
	}
	return New(pairs, b.options()...)
}

// WithBoundaryType returns a copy of the boundary carrying a different type.
func (b *StBoundary) WithBoundaryType(t BoundaryType) *StBoundary {
	cp := *b
	cp.boundaryType = t
	return &cp
}

// WithBoundaryID returns a copy of the boundary carrying a different identifier.
func (b *StBoundary) WithBoundaryID(id string) *StBoundary {
	cp := *b
	cp.id = id
	return &cp
}
