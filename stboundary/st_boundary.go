// Package stboundary represents an obstacle's occupancy of the planned path as a polygon in the
// (time, arc-length) plane and answers the containment and range queries used by speed planning.
package stboundary

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// tolerance on the t difference between the two points of a pair.
	pairTimeEpsilon = 1e-9
	// consecutive pairs must be at least this far apart in t.
	minDeltaT = 1e-6
	// perpendicular distance under which a pair is dropped by simplification.
	simplifyMaxDist = 0.1
	// minimum width kept when extrapolating a boundary in time.
	minSEpsilon = 1e-3

	// DefaultSHighLimit is the arc length returned as the upper end of an unconstrained range.
	DefaultSHighLimit = 200.0
)

// StBoundary is an immutable polygon in the ST plane. The lower chain bounds the near edge of the
// obstacle along the path and the upper chain its far edge; both share the same t samples.
type StBoundary struct {
	boundaryType         BoundaryType
	id                   string
	characteristicLength float64
	sHighLimit           float64

	lowerPoints []STPoint
	upperPoints []STPoint
	// lower chain forward followed by the upper chain reversed.
	points []STPoint

	minS float64
	maxS float64
	minT float64
	maxT float64
}

// Option configures the attributes of a boundary under construction.
type Option func(*StBoundary)

// WithID sets the boundary identifier, normally the obstacle id.
func WithID(id string) Option {
	return func(b *StBoundary) { b.id = id }
}

// WithType sets the boundary type.
func WithType(t BoundaryType) Option {
	return func(b *StBoundary) { b.boundaryType = t }
}

// WithCharacteristicLength sets the characteristic length of the obstacle.
func WithCharacteristicLength(length float64) Option {
	return func(b *StBoundary) { b.characteristicLength = length }
}

// WithSHighLimit sets the upper end of the permissible s range.
func WithSHighLimit(limit float64) Option {
	return func(b *StBoundary) { b.sHighLimit = limit }
}

// New validates the point pairs, drops the redundant ones and builds the boundary polygon.
func New(pairs []PointPair, opts ...Option) (*StBoundary, error) {
	if err := validate(pairs); err != nil {
		return nil, err
	}

	b := &StBoundary{boundaryType: Unknown, sHighLimit: DefaultSHighLimit}
	for _, opt := range opts {
		opt(b)
	}

	reduced := removeRedundantPoints(pairs)
	b.lowerPoints = make([]STPoint, 0, len(reduced))
	b.upperPoints = make([]STPoint, 0, len(reduced))
	for _, pair := range reduced {
		t := pair.Lower.T
		b.lowerPoints = append(b.lowerPoints, NewSTPoint(pair.Lower.S, t))
		b.upperPoints = append(b.upperPoints, NewSTPoint(pair.Upper.S, t))
	}
	b.buildPolygon()

	b.minS = math.Inf(1)
	b.maxS = math.Inf(-1)
	for _, p := range b.lowerPoints {
		b.minS = math.Min(b.minS, p.S)
	}
	for _, p := range b.upperPoints {
		b.maxS = math.Max(b.maxS, p.S)
	}
	b.minT = b.lowerPoints[0].T
	b.maxT = b.lowerPoints[len(b.lowerPoints)-1].T
	return b, nil
}

// NewFromChains pairs up separately sampled lower and upper chains and builds a boundary.
func NewFromChains(lower, upper []STPoint, opts ...Option) (*StBoundary, error) {
	if len(lower) != len(upper) {
		return nil, errors.Wrapf(ErrChainLengthMismatch, "lower has %d points, upper has %d", len(lower), len(upper))
	}
	pairs := make([]PointPair, 0, len(lower))
	for i := range lower {
		pairs = append(pairs, PointPair{Lower: lower[i], Upper: upper[i]})
	}
	return New(pairs, opts...)
}

func validate(pairs []PointPair) error {
	if len(pairs) < 2 {
		return errors.Wrapf(ErrTooFewPoints, "got %d", len(pairs))
	}
	for i, pair := range pairs {
		if pair.Upper.S < pair.Lower.S {
			return errors.Wrapf(ErrUpperBelowLower, "pair %d: lower %v, upper %v", i, pair.Lower, pair.Upper)
		}
		if math.Abs(pair.Lower.T-pair.Upper.T) > pairTimeEpsilon {
			return errors.Wrapf(ErrPairTimeMismatch, "pair %d: lower %v, upper %v", i, pair.Lower, pair.Upper)
		}
		if i+1 == len(pairs) {
			break
		}
		next := pairs[i+1]
		if math.Max(pair.Lower.T, pair.Upper.T)+minDeltaT >= math.Min(next.Lower.T, next.Upper.T) {
			return errors.Wrapf(ErrTimeNotIncreasing,
				"pair %d: lower %v, upper %v; pair %d: lower %v, upper %v",
				i, pair.Lower, pair.Upper, i+1, next.Lower, next.Upper)
		}
	}
	return nil
}

// removeRedundantPoints keeps index i and scans j forward. Pair j is dropped when it lies within
// simplifyMaxDist of both the lower and upper segments spanning i to j+1. The last pair is always
// kept. The input is not modified.
func removeRedundantPoints(pairs []PointPair) []PointPair {
	out := make([]PointPair, len(pairs))
	copy(out, pairs)
	if len(out) <= 2 {
		return out
	}

	const maxDistSq = simplifyMaxDist * simplifyMaxDist
	i := 0
	for j := 1; j+1 < len(out); j++ {
		lowerNear := distanceSquareToSegment(out[i].Lower, out[j+1].Lower, out[j].Lower) < maxDistSq
		upperNear := distanceSquareToSegment(out[i].Upper, out[j+1].Upper, out[j].Upper) < maxDistSq
		if !lowerNear || !upperNear {
			i++
			out[i] = out[j]
		}
	}
	i++
	out[i] = out[len(out)-1]
	return out[:i+1]
}

func (b *StBoundary) buildPolygon() {
	b.points = make([]STPoint, 0, 2*len(b.lowerPoints))
	b.points = append(b.points, b.lowerPoints...)
	for i := len(b.upperPoints) - 1; i >= 0; i-- {
		b.points = append(b.points, b.upperPoints[i])
	}
}

// ID returns the boundary identifier.
func (b *StBoundary) ID() string { return b.id }

// Type returns the boundary type.
func (b *StBoundary) Type() BoundaryType { return b.boundaryType }

// CharacteristicLength returns the characteristic length of the obstacle.
func (b *StBoundary) CharacteristicLength() float64 { return b.characteristicLength }

// SHighLimit returns the upper end of the permissible s range.
func (b *StBoundary) SHighLimit() float64 { return b.sHighLimit }

// MinS returns the smallest s of the lower chain.
func (b *StBoundary) MinS() float64 { return b.minS }

// MaxS returns the largest s of the upper chain.
func (b *StBoundary) MaxS() float64 { return b.maxS }

// MinT returns the time of the first sample.
func (b *StBoundary) MinT() float64 { return b.minT }

// MaxT returns the time of the last sample.
func (b *StBoundary) MaxT() float64 { return b.maxT }

// NumSamples returns the number of retained time samples.
func (b *StBoundary) NumSamples() int { return len(b.lowerPoints) }

// LowerPoints returns a copy of the lower chain.
func (b *StBoundary) LowerPoints() []STPoint { return append([]STPoint(nil), b.lowerPoints...) }

// UpperPoints returns a copy of the upper chain.
func (b *StBoundary) UpperPoints() []STPoint { return append([]STPoint(nil), b.upperPoints...) }

// Points returns a copy of the polygon vertices.
func (b *StBoundary) Points() []STPoint { return append([]STPoint(nil), b.points...) }

// PointPairs returns the retained samples as pairs.
func (b *StBoundary) PointPairs() []PointPair {
	pairs := make([]PointPair, 0, len(b.lowerPoints))
	for i := range b.lowerPoints {
		pairs = append(pairs, PointPair{Lower: b.lowerPoints[i], Upper: b.upperPoints[i]})
	}
	return pairs
}

// BottomLeftPoint is the first lower sample.
func (b *StBoundary) BottomLeftPoint() STPoint { return b.lowerPoints[0] }

// BottomRightPoint is the last lower sample.
func (b *StBoundary) BottomRightPoint() STPoint { return b.lowerPoints[len(b.lowerPoints)-1] }

// UpperLeftPoint is the first upper sample.
func (b *StBoundary) UpperLeftPoint() STPoint { return b.upperPoints[0] }

// UpperRightPoint is the last upper sample.
func (b *StBoundary) UpperRightPoint() STPoint { return b.upperPoints[len(b.upperPoints)-1] }

func (b *StBoundary) options() []Option {
	return []Option{
		WithID(b.id),
		WithType(b.boundaryType),
		WithCharacteristicLength(b.characteristicLength),
		WithSHighLimit(b.sHighLimit),
	}
}
