package model

// MotionSource indicates how a vehicle's motion is determined.
type MotionSource int

const (
	MotionSourceStatic    MotionSource = iota
	MotionSourceKinematic              // constant speed along the current heading
	MotionSourceRoute                  // piecewise-linear waypoint following
)

// Pose is a planar vehicle pose: centroid position in metres and heading
// in degrees, counter-clockwise from the +x axis.
type Pose struct {
	X        float64
	Y        float64
	AngleDeg float64
}

// Waypoint is a route vertex in metres.
type Waypoint struct {
	X float64
	Y float64
}

// VehicleDefinition represents a tracked road user (car, truck, bus,
// bicycle). Identity, footprint, and motion; proximity evaluation is
// handled by the core services.
type VehicleDefinition struct {
	ID   string
	Name string
	Type string // e.g. "CAR", "TRUCK", "BUS"

	// Footprint in metres. Length runs along the heading, width across it.
	Width  float64
	Length float64

	// Pose is the centroid pose. Scenario files carry front-bumper
	// positions; the loader converts them before anything is stored.
	Pose Pose

	SpeedMps     float64
	MotionSource MotionSource
	Route        []Waypoint // consumed when MotionSourceRoute
}
