package stboundary

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestContains(t *testing.T) {
	b := rectangle(t)
	test.That(t, b.Contains(NewSTPoint(2, 2)), test.ShouldBeTrue)
	test.That(t, b.Contains(NewSTPoint(2.9, 0.1)), test.ShouldBeTrue)

	// on or past the time span
	test.That(t, b.Contains(NewSTPoint(2, 0)), test.ShouldBeFalse)
	test.That(t, b.Contains(NewSTPoint(2, 4)), test.ShouldBeFalse)
	test.That(t, b.Contains(NewSTPoint(2, -1)), test.ShouldBeFalse)
	test.That(t, b.Contains(NewSTPoint(2, 5)), test.ShouldBeFalse)

	// on a chain
	test.That(t, b.Contains(NewSTPoint(1, 2)), test.ShouldBeFalse)
	test.That(t, b.Contains(NewSTPoint(3, 2)), test.ShouldBeFalse)

	// beside the polygon
	test.That(t, b.Contains(NewSTPoint(3.5, 2)), test.ShouldBeFalse)
	test.That(t, b.Contains(NewSTPoint(0.5, 2)), test.ShouldBeFalse)
}

func TestContainsNeverAtEnds(t *testing.T) {
	b := zigzag(t)
	for s := -1.0; s <= 4; s += 0.25 {
		test.That(t, b.Contains(NewSTPoint(s, b.MinT())), test.ShouldBeFalse)
		test.That(t, b.Contains(NewSTPoint(s, b.MaxT())), test.ShouldBeFalse)
	}
	test.That(t, b.Contains(NewSTPoint(1.5, 0.5)), test.ShouldBeTrue)
	test.That(t, b.Contains(NewSTPoint(2.5, 1)), test.ShouldBeTrue)
	test.That(t, b.Contains(NewSTPoint(0.5, 1)), test.ShouldBeFalse)
}

func TestIndexRange(t *testing.T) {
	b := zigzag(t)
	for _, tc := range []struct {
		t           float64
		left, right int
	}{
		{0, 0, 0},
		{0.5, 0, 1},
		{1, 0, 1},
		{1.2, 1, 2},
		{3.999, 3, 4},
		{4, 3, 4},
	} {
		left, right, err := b.IndexRange(tc.t)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, left, test.ShouldEqual, tc.left)
		test.That(t, right, test.ShouldEqual, tc.right)
	}

	_, _, err := b.IndexRange(-0.1)
	test.That(t, errors.Is(err, ErrTimeOutOfRange), test.ShouldBeTrue)
	_, _, err = b.IndexRange(4.5)
	test.That(t, errors.Is(err, ErrTimeOutOfRange), test.ShouldBeTrue)
}

func TestBoundarySRange(t *testing.T) {
	b, err := New([]PointPair{
		NewPointPair(0, 0, 2),
		NewPointPair(1, 0.5, 2.5),
		NewPointPair(2, 1, 3),
	})
	test.That(t, err, test.ShouldBeNil)
	r, err := b.BoundarySRange(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Lo, test.ShouldAlmostEqual, 0.5)
	test.That(t, r.Hi, test.ShouldAlmostEqual, 2.5)

	zz := zigzag(t)
	for i := 0; i <= 4; i++ {
		r, err := zz.BoundarySRange(float64(i))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, r.Lo, test.ShouldEqual, float64(i%2))
		test.That(t, r.Hi, test.ShouldEqual, float64(i%2)+2)
	}

	_, err = zz.BoundarySRange(5)
	test.That(t, errors.Is(err, ErrTimeOutOfRange), test.ShouldBeTrue)

	limited := zigzag(t, WithSHighLimit(2.5))
	r, err = limited.BoundarySRange(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Lo, test.ShouldEqual, 1.)
	test.That(t, r.Hi, test.ShouldEqual, 2.5)

	expanded, err := rectangle(t).ExpandByS(2)
	test.That(t, err, test.ShouldBeNil)
	r, err = expanded.BoundarySRange(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Lo, test.ShouldEqual, 0.)
	test.That(t, r.Hi, test.ShouldEqual, 5.)
}

func TestRangesAtSampleTimes(t *testing.T) {
	b, err := New([]PointPair{
		NewPointPair(2, 3.3, 7.1),
		NewPointPair(3, 0.2, 9.7),
	}, WithType(Follow))
	test.That(t, err, test.ShouldBeNil)

	for _, tc := range []struct {
		t, lower, upper float64
	}{
		{2, 3.3, 7.1},
		{3, 0.2, 9.7},
	} {
		r, err := b.BoundarySRange(tc.t)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, r.Lo, test.ShouldEqual, tc.lower)
		test.That(t, r.Hi, test.ShouldEqual, tc.upper)

		free, err := b.UnblockedSRange(tc.t)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, free.Hi, test.ShouldEqual, tc.lower)
	}
}

func TestUnblockedSRange(t *testing.T) {
	t.Run("blocking types keep the space behind the obstacle", func(t *testing.T) {
		for _, typ := range []BoundaryType{Stop, Follow, Yield} {
			b := zigzag(t, WithType(typ))
			r, err := b.UnblockedSRange(1)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, r.Lo, test.ShouldEqual, 0.)
			test.That(t, r.Hi, test.ShouldEqual, 1.)

			r, err = b.UnblockedSRange(0)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, r.Hi, test.ShouldEqual, 0.)

			r, err = b.UnblockedSRange(0.5)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, r.Hi, test.ShouldAlmostEqual, 0.5)
		}
	})

	t.Run("overtake keeps the space beyond the obstacle", func(t *testing.T) {
		b := zigzag(t, WithType(Overtake))
		r, err := b.UnblockedSRange(1)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, r.Lo, test.ShouldEqual, 3.)
		test.That(t, r.Hi, test.ShouldEqual, DefaultSHighLimit)
	})

	t.Run("outside the time span everything is free", func(t *testing.T) {
		for _, typ := range []BoundaryType{Unknown, Stop, Overtake} {
			b := zigzag(t, WithType(typ))
			r, err := b.UnblockedSRange(5)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, r.Lo, test.ShouldEqual, 0.)
			test.That(t, r.Hi, test.ShouldEqual, DefaultSHighLimit)
		}
	})

	t.Run("types without a range rule fail", func(t *testing.T) {
		for _, typ := range []BoundaryType{Unknown, KeepClear, BoundaryType(42)} {
			b := zigzag(t, WithType(typ))
			_, err := b.UnblockedSRange(1)
			test.That(t, errors.Is(err, ErrUnsupportedBoundaryType), test.ShouldBeTrue)
		}
	})
}
