package stboundary

import (
	"math"
	"sort"

	"github.com/golang/geo/r1"
	"github.com/pkg/errors"

	"go.viam.com/planning/utils"
)

// Contains reports whether p lies strictly inside the boundary. Points on either chain, or at or
// beyond the first and last sample times, are not contained.
func (b *StBoundary) Contains(p STPoint) bool {
	if p.T <= b.minT || p.T >= b.maxT {
		return false
	}
	left, right, err := indexRange(b.lowerPoints, p.T)
	if err != nil {
		return false
	}
	checkUpper := crossProd(p, b.upperPoints[left], b.upperPoints[right])
	checkLower := crossProd(p, b.lowerPoints[left], b.lowerPoints[right])
	return checkUpper*checkLower < 0
}

// indexRange brackets t by the greatest index whose time is below t and the index after it. A t
// equal to the first sample time collapses both indices to zero.
func indexRange(points []STPoint, t float64) (int, int, error) {
	if len(points) == 0 || t < points[0].T || t > points[len(points)-1].T {
		return 0, 0, errors.Wrapf(ErrTimeOutOfRange, "t = %f", t)
	}
	firstGE := sort.Search(len(points), func(i int) bool { return points[i].T >= t })
	switch firstGE {
	case 0:
		return 0, 0, nil
	case len(points):
		// unreachable given the range check above.
		return len(points) - 1, len(points) - 1, nil
	default:
		return firstGE - 1, firstGE, nil
	}
}

// IndexRange exposes the sample bracketing used by the range queries.
func (b *StBoundary) IndexRange(t float64) (int, int, error) {
	return indexRange(b.lowerPoints, t)
}

// interpolate returns the lower and upper s of both chains at t.
func (b *StBoundary) interpolate(t float64) (float64, float64, error) {
	left, right, err := indexRange(b.lowerPoints, t)
	if err != nil {
		return 0, 0, err
	}
	if left == right {
		return b.lowerPoints[left].S, b.upperPoints[left].S, nil
	}
	// retained samples are returned as stored; lerp at r == 1 can be off by an ulp.
	if t == b.lowerPoints[right].T {
		return b.lowerPoints[right].S, b.upperPoints[right].S, nil
	}
	r := (t - b.upperPoints[left].T) / (b.upperPoints[right].T - b.upperPoints[left].T)
	lowerS := utils.Lerp(b.lowerPoints[left].S, b.lowerPoints[right].S, r)
	upperS := utils.Lerp(b.upperPoints[left].S, b.upperPoints[right].S, r)
	return lowerS, upperS, nil
}

// UnblockedSRange returns the arc-length interval the vehicle may occupy at time t with respect to
// this obstacle. Outside the boundary time span the whole [0, s high limit] range is free.
// FOLLOW, YIELD and STOP block everything beyond the lower chain; OVERTAKE blocks everything
// behind the upper chain.
func (b *StBoundary) UnblockedSRange(t float64) (r1.Interval, error) {
	free := r1.Interval{Lo: 0, Hi: b.sHighLimit}
	if t < b.minT || t > b.maxT {
		return free, nil
	}
	lowerS, upperS, err := b.interpolate(t)
	if err != nil {
		return r1.EmptyInterval(), err
	}

	switch b.boundaryType {
	case Stop, Yield, Follow:
		free.Hi = lowerS
	case Overtake:
		free.Lo = math.Max(free.Lo, upperS)
	case Unknown, KeepClear:
		return r1.EmptyInterval(), errors.Wrapf(ErrUnsupportedBoundaryType, "boundary %q has type %s", b.id, TypeName(b.boundaryType))
	default:
		return r1.EmptyInterval(), errors.Wrapf(ErrUnsupportedBoundaryType, "boundary %q has type %d", b.id, int(b.boundaryType))
	}
	return free, nil
}

// BoundarySRange returns the arc-length interval occupied by the obstacle at time t, clamped to
// [0, s high limit].
func (b *StBoundary) BoundarySRange(t float64) (r1.Interval, error) {
	if t < b.minT || t > b.maxT {
		return r1.EmptyInterval(), errors.Wrapf(ErrTimeOutOfRange, "t = %f, boundary spans [%f, %f]", t, b.minT, b.maxT)
	}
	lowerS, upperS, err := b.interpolate(t)
	if err != nil {
		return r1.EmptyInterval(), err
	}
	return r1.Interval{Lo: math.Max(lowerS, 0), Hi: math.Min(upperS, b.sHighLimit)}, nil
}
