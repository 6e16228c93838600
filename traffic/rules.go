package traffic

import (
	"context"
	"math"

	"github.com/samber/lo"

	"go.viam.com/planning/frame"
	"go.viam.com/planning/logging"
	"go.viam.com/planning/stboundary"
	"go.viam.com/planning/utils"
)

// backsideObstacle ignores obstacles that are entirely behind the start point when they are
// first seen.
type backsideObstacle struct{}

func (r *backsideObstacle) Name() string { return BacksideObstacle }

func (r *backsideObstacle) Apply(_ context.Context, _ *frame.Frame, c *frame.ReferenceLineInfo) error {
	c.SetBoundaries(lo.Reject(c.Boundaries(), func(b *stboundary.StBoundary, _ int) bool {
		return b.UpperLeftPoint().S < 0
	}))
	return nil
}

// obstacleClassifier decides how the vehicle treats each obstacle.
type obstacleClassifier struct {
	crossingHeading float64
}

func newObstacleClassifier(crossingHeadingDeg float64) *obstacleClassifier {
	return &obstacleClassifier{crossingHeading: crossingHeadingDeg * math.Pi / 180}
}

func (r *obstacleClassifier) Name() string { return ObstacleClassifier }

func (r *obstacleClassifier) Apply(_ context.Context, f *frame.Frame, c *frame.ReferenceLineInfo) error {
	adcS, _ := c.AdcSL()
	line := c.ReferenceLine()
	c.SetBoundaries(lo.Map(c.Boundaries(), func(b *stboundary.StBoundary, _ int) *stboundary.StBoundary {
		obstacle, ok := f.FindObstacle(b.ID())
		switch {
		case !ok:
			return b.WithBoundaryType(stboundary.Follow)
		case obstacle.IsStatic:
			return b.WithBoundaryType(stboundary.Stop)
		}
		lineHeading := line.HeadingAt(adcS + b.BottomLeftPoint().S)
		if math.Abs(utils.NormalizeAngle(obstacle.Heading-lineHeading)) > r.crossingHeading {
			return b.WithBoundaryType(stboundary.Yield)
		}
		return b.WithBoundaryType(stboundary.Follow)
	}))
	return nil
}

// blockedStart marks a candidate as not drivable when an obstacle the vehicle must stay behind
// already covers the start point.
type blockedStart struct {
	window float64
}

func (r *blockedStart) Name() string { return BlockedStart }

func (r *blockedStart) Apply(_ context.Context, _ *frame.Frame, c *frame.ReferenceLineInfo) error {
	for _, b := range c.Boundaries() {
		if t := b.Type(); t != stboundary.Stop && t != stboundary.Follow && t != stboundary.Yield {
			continue
		}
		if b.MinT() > r.window {
			continue
		}
		if b.BottomLeftPoint().S <= 0 && b.UpperLeftPoint().S >= 0 {
			c.SetDrivable(false)
			return nil
		}
	}
	return nil
}

// destination starts a pull over when the end of the route comes within reach. A pull over in
// progress is only cleared by a new routing.
type destination struct {
	distance float64
	logger   logging.Logger
}

func (r *destination) Name() string { return Destination }

func (r *destination) Apply(ctx context.Context, f *frame.Frame, c *frame.ReferenceLineInfo) error {
	if f.PlanningStatus.PullOver.InPullOver {
		return nil
	}
	adcS, _ := c.AdcSL()
	if remaining := c.ReferenceLine().Length() - adcS; remaining <= r.distance {
		f.PlanningStatus.PullOver = frame.PullOverStatus{InPullOver: true, ReferenceLineID: c.ReferenceLine().ID}
		r.logger.CInfow(ctx, "destination ahead, pulling over",
			"reference_line", c.ReferenceLine().ID, "remaining", remaining)
	}
	return nil
}

// referenceLineEnd marks a candidate as not drivable when too little of it is left ahead.
type referenceLineEnd struct {
	minLength float64
}

func (r *referenceLineEnd) Name() string { return ReferenceLineEnd }

func (r *referenceLineEnd) Apply(_ context.Context, _ *frame.Frame, c *frame.ReferenceLineInfo) error {
	adcS, _ := c.AdcSL()
	if c.ReferenceLine().Length()-adcS < r.minLength {
		c.SetDrivable(false)
	}
	return nil
}
