// Package referenceline builds the lane center lines the planner follows from the routing
// response, and keeps them refreshed in the background.
package referenceline

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/planning/messages"
	"go.viam.com/planning/utils"
)

// consecutive waypoints closer than this are merged.
const minSegmentLength = 1e-3

// ReferencePoint is a sample of a reference line.
type ReferencePoint struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Kappa   float64 `json:"kappa"`
	DKappa  float64 `json:"dkappa"`
	S       float64 `json:"s"`
}

func (p ReferencePoint) vec() r2.Point { return r2.Point{X: p.X, Y: p.Y} }

// ReferenceLine is a polyline with arc length, heading and curvature at every point. It is
// immutable once built.
type ReferenceLine struct {
	ID        string
	LaneIDs   []string
	LaneWidth float64

	points []ReferencePoint
}

// New builds a reference line through the waypoints.
func New(id string, laneIDs []string, laneWidth float64, waypoints []messages.Waypoint) (*ReferenceLine, error) {
	var pts []r2.Point
	for _, wp := range waypoints {
		p := r2.Point{X: wp.X, Y: wp.Y}
		if len(pts) > 0 && pts[len(pts)-1].Sub(p).Norm() < minSegmentLength {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) < 2 {
		return nil, errors.Errorf("reference line %q needs at least two distinct waypoints, got %d", id, len(pts))
	}

	n := len(pts)
	lengths := make([]float64, n-1)
	headings := make([]float64, n-1)
	for i := 0; i+1 < n; i++ {
		d := pts[i+1].Sub(pts[i])
		lengths[i] = d.Norm()
		headings[i] = math.Atan2(d.Y, d.X)
	}
	s := make([]float64, n)
	floats.CumSum(s[1:], lengths)

	points := make([]ReferencePoint, n)
	for i := range pts {
		points[i] = ReferencePoint{X: pts[i].X, Y: pts[i].Y, S: s[i], Heading: headings[min(i, n-2)]}
	}
	for i := 1; i+1 < n; i++ {
		ds := (lengths[i-1] + lengths[i]) / 2
		points[i].Kappa = utils.NormalizeAngle(headings[i]-headings[i-1]) / ds
	}
	for i := 1; i+1 < n; i++ {
		points[i].DKappa = (points[i+1].Kappa - points[i-1].Kappa) / (s[i+1] - s[i-1])
	}

	return &ReferenceLine{
		ID:        id,
		LaneIDs:   append([]string(nil), laneIDs...),
		LaneWidth: laneWidth,
		points:    points,
	}, nil
}

// Points returns a copy of the samples.
func (rl *ReferenceLine) Points() []ReferencePoint {
	return append([]ReferencePoint(nil), rl.points...)
}

// Length is the arc length of the line.
func (rl *ReferenceLine) Length() float64 {
	return rl.points[len(rl.points)-1].S
}

// Interpolate returns the reference point at arc length s, clamped to the line.
func (rl *ReferenceLine) Interpolate(s float64) ReferencePoint {
	s = utils.Clamp(s, 0, rl.Length())
	i := sort.Search(len(rl.points), func(i int) bool { return rl.points[i].S >= s })
	if i == 0 {
		return rl.points[0]
	}
	a, b := rl.points[i-1], rl.points[i]
	r := (s - a.S) / (b.S - a.S)
	return ReferencePoint{
		X:       utils.Lerp(a.X, b.X, r),
		Y:       utils.Lerp(a.Y, b.Y, r),
		Heading: a.Heading,
		Kappa:   utils.Lerp(a.Kappa, b.Kappa, r),
		DKappa:  utils.Lerp(a.DKappa, b.DKappa, r),
		S:       s,
	}
}

// HeadingAt returns the heading of the line at arc length s.
func (rl *ReferenceLine) HeadingAt(s float64) float64 {
	return rl.Interpolate(s).Heading
}

// XYToSL projects (x, y) on the line. l is positive on the left. Points before the start or past
// the end project onto the extension of the first or last segment.
func (rl *ReferenceLine) XYToSL(x, y float64) (s, l float64) {
	p := r2.Point{X: x, Y: y}
	bestDistSq := math.Inf(1)
	last := len(rl.points) - 2
	for i := 0; i <= last; i++ {
		a, b := rl.points[i], rl.points[i+1]
		seg := b.vec().Sub(a.vec())
		segLen := b.S - a.S
		unit := seg.Mul(1 / segLen)
		ap := p.Sub(a.vec())

		proj := ap.Dot(unit)
		if i > 0 {
			proj = math.Max(proj, 0)
		}
		if i < last {
			proj = math.Min(proj, segLen)
		}
		foot := a.vec().Add(unit.Mul(proj))
		d := p.Sub(foot)
		if distSq := d.Dot(d); distSq < bestDistSq {
			bestDistSq = distSq
			s = a.S + proj
			l = unit.Cross(ap)
		}
	}
	return s, l
}

// IsOnLane reports whether an sl position lies within the lane around the line.
func (rl *ReferenceLine) IsOnLane(s, l float64) bool {
	return s >= 0 && s <= rl.Length() && math.Abs(l) <= rl.LaneWidth/2
}

// IsNewRouting reports whether next routes differently from last. A nil response is always new.
func IsNewRouting(last, next *messages.RoutingResponse) bool {
	if last == nil || next == nil {
		return true
	}
	if len(last.RoadSegments) != len(next.RoadSegments) {
		return true
	}
	for i := range last.RoadSegments {
		a, b := last.RoadSegments[i], next.RoadSegments[i]
		if a.ID != b.ID || len(a.Waypoints) != len(b.Waypoints) {
			return true
		}
		for j := range a.Waypoints {
			if a.Waypoints[j] != b.Waypoints[j] {
				return true
			}
		}
	}
	return false
}
