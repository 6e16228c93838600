package messages

import "fmt"

// Gear is the transmission position reported by the chassis.
type Gear int

// Gear positions.
const (
	GearNeutral Gear = iota
	GearDrive
	GearReverse
	GearParking
	GearLow
	GearInvalid
	GearNone
)

func (g Gear) String() string {
	switch g {
	case GearNeutral:
		return "GEAR_NEUTRAL"
	case GearDrive:
		return "GEAR_DRIVE"
	case GearReverse:
		return "GEAR_REVERSE"
	case GearParking:
		return "GEAR_PARKING"
	case GearLow:
		return "GEAR_LOW"
	case GearInvalid:
		return "GEAR_INVALID"
	case GearNone:
		return "GEAR_NONE"
	default:
		return fmt.Sprintf("Gear(%d)", int(g))
	}
}

// DrivingMode is who is in control of the vehicle.
type DrivingMode int

// Driving modes.
const (
	CompleteManual DrivingMode = iota
	CompleteAutoDrive
	AutoSteerOnly
	AutoSpeedOnly
	EmergencyMode
)

func (m DrivingMode) String() string {
	switch m {
	case CompleteManual:
		return "COMPLETE_MANUAL"
	case CompleteAutoDrive:
		return "COMPLETE_AUTO_DRIVE"
	case AutoSteerOnly:
		return "AUTO_STEER_ONLY"
	case AutoSpeedOnly:
		return "AUTO_SPEED_ONLY"
	case EmergencyMode:
		return "EMERGENCY_MODE"
	default:
		return fmt.Sprintf("DrivingMode(%d)", int(m))
	}
}

// ErrorCode classifies the outcome of a planning cycle.
type ErrorCode int

// Cycle outcomes.
const (
	OK ErrorCode = iota
	NotReadyError
	UpdateFailure
	ConstructionFailure
	PlanningFailure
)

func (c ErrorCode) String() string {
	switch c {
	case OK:
		return "OK"
	case NotReadyError:
		return "PLANNING_ERROR_NOT_READY"
	case UpdateFailure:
		return "VEHICLE_STATE_UPDATE_FAILED"
	case ConstructionFailure:
		return "FRAME_CONSTRUCTION_FAILED"
	case PlanningFailure:
		return "PLANNING_ERROR"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// RightOfWayStatus tells control whether the planned path is protected.
type RightOfWayStatus int

// Right of way.
const (
	Unprotected RightOfWayStatus = iota
	Protected
)

// EngageAdviceKind tells the driver whether autonomy may be engaged.
type EngageAdviceKind int

// Engage advice.
const (
	UnknownAdvice EngageAdviceKind = iota
	DisallowEngage
	ReadyToEngage
	KeepEngaged
	PrepareDisengage
)

func (a EngageAdviceKind) String() string {
	switch a {
	case UnknownAdvice:
		return "UNKNOWN"
	case DisallowEngage:
		return "DISALLOW_ENGAGE"
	case ReadyToEngage:
		return "READY_TO_ENGAGE"
	case KeepEngaged:
		return "KEEP_ENGAGED"
	case PrepareDisengage:
		return "PREPARE_DISENGAGE"
	default:
		return fmt.Sprintf("EngageAdviceKind(%d)", int(a))
	}
}
