// Package vehiclestate turns localization and chassis samples into the kinematic state used by
// planning.
package vehiclestate

import (
	"math"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/planning/logging"
	"go.viam.com/planning/messages"
	"go.viam.com/planning/utils"
)

// below this yaw rate the vehicle is extrapolated along a straight line.
const minAngularVelocity = 1e-4

// State is a snapshot of the vehicle kinematics.
type State struct {
	X         float64
	Y         float64
	Z         float64
	Timestamp float64

	Roll    float64
	Pitch   float64
	Yaw     float64
	Heading float64
	Kappa   float64

	LinearVelocity     float64
	AngularVelocity    float64
	LinearAcceleration float64

	Gear        messages.Gear
	DrivingMode messages.DrivingMode

	// nil when localization did not report one.
	Orientation *messages.Quaternion
}

// IsValid reports whether every kinematic field is a number.
func (s State) IsValid() bool {
	return !utils.AnyNaN(s.X, s.Y, s.Z, s.Heading, s.Kappa, s.LinearVelocity, s.LinearAcceleration)
}

// Estimator keeps the latest vehicle state built from raw samples.
type Estimator struct {
	mu             sync.Mutex
	state          State
	navigationMode bool
	logger         logging.Logger
}

// NewEstimator returns an estimator. In navigation mode the vehicle is the origin of its own frame
// and the localized position is ignored.
func NewEstimator(navigationMode bool, logger logging.Logger) *Estimator {
	return &Estimator{navigationMode: navigationMode, logger: logger}
}

// Update rebuilds the state from the latest samples. It fails when the localization carries no
// pose; the previous state is kept in that case.
func (e *Estimator) Update(loc *messages.Localization, chassis *messages.Chassis) error {
	if loc == nil || loc.Pose == nil {
		return errors.New("localization has no pose")
	}
	pose := loc.Pose

	var s State
	if !e.navigationMode {
		if pose.Position != nil {
			s.X, s.Y, s.Z = pose.Position.X, pose.Position.Y, pose.Position.Z
		}
		switch {
		case pose.Heading != nil:
			s.Heading = *pose.Heading
		case pose.Orientation != nil:
			s.Heading = QuaternionToHeading(*pose.Orientation)
		}
		if pose.Orientation != nil {
			q := *pose.Orientation
			s.Orientation = &q
		}
	}

	switch {
	case pose.EulerAngles != nil:
		s.Roll, s.Pitch, s.Yaw = pose.EulerAngles.Y, pose.EulerAngles.X, pose.EulerAngles.Z
	case pose.Orientation != nil:
		s.Roll, s.Pitch, s.Yaw = EulerAnglesZXY(*pose.Orientation)
	}
	if pose.AngularVelocity != nil {
		s.AngularVelocity = pose.AngularVelocity.Z
	}
	if pose.LinearAcceleration != nil {
		s.LinearAcceleration = pose.LinearAcceleration.Y
	}

	s.Timestamp = loc.Header.TimestampSec
	s.Gear = messages.GearNone
	if chassis != nil {
		if s.Timestamp <= 0 {
			s.Timestamp = chassis.Header.TimestampSec
		}
		if chassis.SpeedMps != nil {
			s.LinearVelocity = *chassis.SpeedMps
		}
		if chassis.GearLocation != nil {
			s.Gear = *chassis.GearLocation
		}
		s.DrivingMode = chassis.DrivingMode
	}

	if s.LinearVelocity > 0 {
		s.Kappa = s.AngularVelocity / s.LinearVelocity
	}

	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.logger.Debugw("vehicle state updated",
		"x", s.X, "y", s.Y, "heading", s.Heading, "v", s.LinearVelocity, "timestamp", s.Timestamp)
	return nil
}

// State returns a copy of the latest state.
func (e *Estimator) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// EstimateFuturePosition integrates a constant speed, constant yaw rate arc for t seconds from the
// latest state and returns the world position reached.
func (e *Estimator) EstimateFuturePosition(t float64) r2.Point {
	s := e.State()

	v := s.LinearVelocity
	if s.Gear == messages.GearReverse {
		v = -v
	}
	w := s.AngularVelocity

	// vehicle frame, y forward
	var local r2.Point
	if math.Abs(w) < minAngularVelocity {
		local = r2.Point{X: 0, Y: v * t}
	} else {
		local = r2.Point{X: -v / w * (1 - math.Cos(w*t)), Y: math.Sin(w*t) * v / w}
	}

	var offset r2.Point
	if s.Orientation != nil {
		offset = rotate(*s.Orientation, local)
	} else {
		yaw := s.Heading - math.Pi/2
		offset = r2.Point{
			X: local.X*math.Cos(yaw) - local.Y*math.Sin(yaw),
			Y: local.X*math.Sin(yaw) + local.Y*math.Cos(yaw),
		}
	}
	return r2.Point{X: s.X, Y: s.Y}.Add(offset)
}

func rotate(q messages.Quaternion, p r2.Point) r2.Point {
	n := quat.Number{Real: q.QW, Imag: q.QX, Jmag: q.QY, Kmag: q.QZ}
	if norm := quat.Abs(n); norm > 0 {
		n = quat.Scale(1/norm, n)
	}
	r := quat.Mul(quat.Mul(n, quat.Number{Imag: p.X, Jmag: p.Y}), quat.Conj(n))
	return r2.Point{X: r.Imag, Y: r.Jmag}
}

// EulerAnglesZXY decomposes q into roll, pitch and yaw using the z-x-y rotation order of the
// localization frame.
func EulerAnglesZXY(q messages.Quaternion) (roll, pitch, yaw float64) {
	qw, qx, qy, qz := q.QW, q.QX, q.QY, q.QZ
	roll = math.Atan2(2*(qw*qy-qx*qz), 2*(qw*qw+qz*qz)-1)
	pitch = math.Asin(utils.Clamp(2*(qw*qx+qy*qz), -1, 1))
	yaw = math.Atan2(2*(qw*qz-qx*qy), 2*(qw*qw+qy*qy)-1)
	return roll, pitch, yaw
}

// QuaternionToHeading returns the heading, measured from the world x axis, of a vehicle whose
// body y axis points forward.
func QuaternionToHeading(q messages.Quaternion) float64 {
	_, _, yaw := EulerAnglesZXY(q)
	return utils.NormalizeAngle(yaw + math.Pi/2)
}
