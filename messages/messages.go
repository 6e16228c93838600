// Package messages defines the inputs consumed and the trajectory produced by each planning cycle.
package messages

// Header is attached to every message.
type Header struct {
	TimestampSec float64 `json:"timestamp_sec"`
	SequenceNum  uint32  `json:"sequence_num"`
	ModuleName   string  `json:"module_name,omitempty"`
	Status       *Status `json:"status,omitempty"`
}

// Status carries the outcome of the cycle that produced a message.
type Status struct {
	Code ErrorCode `json:"code"`
	Msg  string    `json:"msg,omitempty"`
}

// Point3D is a point or vector in the world frame.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is an orientation in the world frame.
type Quaternion struct {
	QW float64 `json:"qw"`
	QX float64 `json:"qx"`
	QY float64 `json:"qy"`
	QZ float64 `json:"qz"`
}

// Pose is the localization estimate of the vehicle. Absent fields are nil.
type Pose struct {
	Position           *Point3D    `json:"position,omitempty"`
	Orientation        *Quaternion `json:"orientation,omitempty"`
	Heading            *float64    `json:"heading,omitempty"`
	LinearVelocity     *Point3D    `json:"linear_velocity,omitempty"`
	LinearAcceleration *Point3D    `json:"linear_acceleration,omitempty"`
	AngularVelocity    *Point3D    `json:"angular_velocity,omitempty"`
	EulerAngles        *Point3D    `json:"euler_angles,omitempty"`
}

// Localization is the latest pose sample.
type Localization struct {
	Header Header `json:"header"`
	Pose   *Pose  `json:"pose,omitempty"`
}

// Chassis is the latest drive-by-wire report.
type Chassis struct {
	Header       Header      `json:"header"`
	SpeedMps     *float64    `json:"speed_mps,omitempty"`
	GearLocation *Gear       `json:"gear_location,omitempty"`
	DrivingMode  DrivingMode `json:"driving_mode"`
}

// Waypoint is a point on the routed road.
type Waypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RoadSegment is one routed passage, ordered from the vehicle toward the destination.
type RoadSegment struct {
	ID        string     `json:"id"`
	Waypoints []Waypoint `json:"waypoints"`
}

// RoutingResponse is the route to follow.
type RoutingResponse struct {
	Header       Header        `json:"header"`
	RoadSegments []RoadSegment `json:"road_segments"`
}

// Empty reports whether the response routes nowhere.
func (r *RoutingResponse) Empty() bool {
	if r == nil {
		return true
	}
	for _, seg := range r.RoadSegments {
		if len(seg.Waypoints) > 0 {
			return false
		}
	}
	return true
}

// PredictedPoint is one sample of an obstacle's predicted motion.
type PredictedPoint struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Heading      float64 `json:"heading"`
	V            float64 `json:"v"`
	RelativeTime float64 `json:"relative_time"`
}

// PredictionObstacle is a perceived obstacle and its predicted trajectory.
type PredictionObstacle struct {
	ID         string           `json:"id"`
	X          float64          `json:"x"`
	Y          float64          `json:"y"`
	Heading    float64          `json:"heading"`
	Speed      float64          `json:"speed"`
	Length     float64          `json:"length"`
	Width      float64          `json:"width"`
	IsStatic   bool             `json:"is_static"`
	Trajectory []PredictedPoint `json:"trajectory,omitempty"`
}

// PredictionObstacles is the latest prediction output.
type PredictionObstacles struct {
	Header    Header               `json:"header"`
	Obstacles []PredictionObstacle `json:"obstacles"`
}
