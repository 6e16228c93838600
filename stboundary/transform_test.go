package stboundary

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestExpandByS(t *testing.T) {
	b := rectangle(t, WithID("car"), WithType(Yield))
	expanded, err := b.ExpandByS(0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, expanded.MinS(), test.ShouldEqual, 0.5)
	test.That(t, expanded.MaxS(), test.ShouldEqual, 3.5)
	test.That(t, expanded.MinT(), test.ShouldEqual, 0.)
	test.That(t, expanded.MaxT(), test.ShouldEqual, 4.)
	test.That(t, expanded.ID(), test.ShouldEqual, "car")
	test.That(t, expanded.Type(), test.ShouldEqual, Yield)

	// the receiver is untouched
	test.That(t, b.MinS(), test.ShouldEqual, 1.)

	same, err := b.ExpandByS(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, same.PointPairs(), test.ShouldResemble, b.PointPairs())
}

func TestExpandByT(t *testing.T) {
	t.Run("flat", func(t *testing.T) {
		b := rectangle(t)
		expanded, err := b.ExpandByT(1)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, expanded.MinT(), test.ShouldEqual, -1.)
		test.That(t, expanded.MaxT(), test.ShouldEqual, 5.)
		test.That(t, expanded.MinS(), test.ShouldEqual, 1.)
		test.That(t, expanded.MaxS(), test.ShouldEqual, 3.)
		// collinear extension collapses to the end samples
		test.That(t, expanded.NumSamples(), test.ShouldEqual, 2)
	})

	t.Run("sloped", func(t *testing.T) {
		b, err := New([]PointPair{NewPointPair(0, 0, 2), NewPointPair(2, 2, 4)}, WithID("ramp"))
		test.That(t, err, test.ShouldBeNil)
		expanded, err := b.ExpandByT(1)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, expanded.ID(), test.ShouldEqual, "ramp")
		test.That(t, expanded.MinT(), test.ShouldEqual, -1.)
		test.That(t, expanded.MaxT(), test.ShouldEqual, 3.)
		test.That(t, expanded.MinS(), test.ShouldEqual, -1.)
		test.That(t, expanded.MaxS(), test.ShouldEqual, 5.)
	})

	t.Run("crossing extrapolation keeps a minimum width", func(t *testing.T) {
		b, err := New([]PointPair{NewPointPair(0, 1, 1.2), NewPointPair(1, 0, 2)})
		test.That(t, err, test.ShouldBeNil)
		expanded, err := b.ExpandByT(1)
		test.That(t, err, test.ShouldBeNil)
		first := expanded.PointPairs()[0]
		test.That(t, first.Lower.T, test.ShouldEqual, -1.)
		test.That(t, first.Upper.S, test.ShouldAlmostEqual, 0.4)
		test.That(t, first.Lower.S, test.ShouldAlmostEqual, 0.4-minSEpsilon)
		last := expanded.PointPairs()[expanded.NumSamples()-1]
		test.That(t, last.Lower.T, test.ShouldEqual, 2.)
		test.That(t, last.Lower.S, test.ShouldAlmostEqual, -1.)
		test.That(t, last.Upper.S, test.ShouldAlmostEqual, 2.8)
	})

	t.Run("zero", func(t *testing.T) {
		b := zigzag(t)
		same, err := b.ExpandByT(0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, same.PointPairs(), test.ShouldResemble, b.PointPairs())
	})
}

func TestCutOffByT(t *testing.T) {
	b := zigzag(t, WithID("walker"), WithType(Stop), WithCharacteristicLength(0.8))

	cut, err := b.CutOffByT(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cut.NumSamples(), test.ShouldEqual, 3)
	test.That(t, cut.MinT(), test.ShouldEqual, 2.)
	test.That(t, cut.MaxT(), test.ShouldEqual, 4.)
	test.That(t, cut.ID(), test.ShouldEqual, "walker")
	test.That(t, cut.Type(), test.ShouldEqual, Stop)
	test.That(t, cut.CharacteristicLength(), test.ShouldEqual, 0.8)

	cut, err = b.CutOffByT(2.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cut.MinT(), test.ShouldEqual, 3.)

	_, err = b.CutOffByT(3.5)
	test.That(t, errors.Is(err, ErrTooFewPoints), test.ShouldBeTrue)
	test.That(t, b.NumSamples(), test.ShouldEqual, 5)
}

func TestWithBoundaryTypeAndID(t *testing.T) {
	b := zigzag(t, WithID("a"), WithType(Follow))
	yielded := b.WithBoundaryType(Yield)
	test.That(t, yielded.Type(), test.ShouldEqual, Yield)
	test.That(t, yielded.ID(), test.ShouldEqual, "a")
	test.That(t, b.Type(), test.ShouldEqual, Follow)

	renamed := b.WithBoundaryID("b")
	test.That(t, renamed.ID(), test.ShouldEqual, "b")
	test.That(t, b.ID(), test.ShouldEqual, "a")
	test.That(t, renamed.PointPairs(), test.ShouldResemble, b.PointPairs())
}
