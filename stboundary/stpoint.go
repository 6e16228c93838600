package stboundary

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// STPoint is a point in the (time, arc-length) plane.
type STPoint struct {
	S float64 `json:"s"`
	T float64 `json:"t"`
}

// NewSTPoint returns the point at arc length s and time t.
func NewSTPoint(s, t float64) STPoint {
	return STPoint{S: s, T: t}
}

// vec places t on the x axis and s on the y axis.
func (p STPoint) vec() r2.Point {
	return r2.Point{X: p.T, Y: p.S}
}

func (p STPoint) String() string {
	return fmt.Sprintf("(s: %.4f, t: %.4f)", p.S, p.T)
}

// PointPair bounds the occupied arc-length interval of an obstacle at one instant.
type PointPair struct {
	Lower STPoint `json:"lower"`
	Upper STPoint `json:"upper"`
}

// NewPointPair pairs the lower and upper s of a single time sample.
func NewPointPair(t, lowerS, upperS float64) PointPair {
	return PointPair{Lower: NewSTPoint(lowerS, t), Upper: NewSTPoint(upperS, t)}
}

// crossProd returns the z component of (end1 - start) x (end2 - start).
func crossProd(start, end1, end2 STPoint) float64 {
	return end1.vec().Sub(start.vec()).Cross(end2.vec().Sub(start.vec()))
}

// distanceSquareToSegment is the squared euclidean distance from p to the segment [a, b].
func distanceSquareToSegment(a, b, p STPoint) float64 {
	av, bv, pv := a.vec(), b.vec(), p.vec()
	d := bv.Sub(av)
	lengthSq := d.Dot(d)
	ap := pv.Sub(av)
	if lengthSq < 1e-20 {
		return ap.Dot(ap)
	}
	proj := ap.Dot(d)
	if proj <= 0 {
		return ap.Dot(ap)
	}
	if proj >= lengthSq {
		bp := pv.Sub(bv)
		return bp.Dot(bp)
	}
	cross := d.Cross(ap)
	return cross * cross / lengthSq
}
