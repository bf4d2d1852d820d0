package core

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/signalsfoundry/traffic-simulator/geom"
	"github.com/signalsfoundry/traffic-simulator/model"
)

// MotionModel updates a vehicle's pose for a given simulation time.
type MotionModel interface {
	UpdatePose(simTime time.Time, v *model.VehicleDefinition)
}

// StaticMotionModel leaves the vehicle's pose unchanged.
type StaticMotionModel struct{}

// UpdatePose for static motion does nothing.
func (m *StaticMotionModel) UpdatePose(simTime time.Time, v *model.VehicleDefinition) {
	// no-op
}

// KinematicMotionModel advances the vehicle at constant speed along the
// heading it had when the model was created. Poses are computed from the
// anchor pose and absolute simulation time, so the result does not depend
// on how many ticks it took to get there.
type KinematicMotionModel struct {
	start  time.Time
	origin model.Pose
	speed  float64 // metres per second
}

// NewKinematicModel anchors a constant-velocity model at the vehicle's
// current pose.
func NewKinematicModel(v *model.VehicleDefinition, start time.Time) *KinematicMotionModel {
	return &KinematicMotionModel{start: start, origin: v.Pose, speed: v.SpeedMps}
}

// UpdatePose moves the vehicle speed*elapsed metres along its heading.
func (m *KinematicMotionModel) UpdatePose(simTime time.Time, v *model.VehicleDefinition) {
	elapsed := simTime.Sub(m.start).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	sin, cos := math.Sincos(m.origin.AngleDeg * math.Pi / 180)
	d := m.speed * elapsed
	v.Pose = model.Pose{
		X:        m.origin.X + d*cos,
		Y:        m.origin.Y + d*sin,
		AngleDeg: m.origin.AngleDeg,
	}
}

// RouteMotionModel follows a piecewise-linear waypoint route at constant
// speed, deriving the heading from the current segment's direction. Once
// the route is exhausted the vehicle parks at the final waypoint.
type RouteMotionModel struct {
	start time.Time
	speed float64
	route []model.Waypoint
}

// NewRouteModel constructs a route follower from the vehicle's route.
func NewRouteModel(v *model.VehicleDefinition, start time.Time) *RouteMotionModel {
	return &RouteMotionModel{start: start, speed: v.SpeedMps, route: append([]model.Waypoint{}, v.Route...)}
}

// UpdatePose places the vehicle speed*elapsed metres along the route.
func (m *RouteMotionModel) UpdatePose(simTime time.Time, v *model.VehicleDefinition) {
	if len(m.route) == 0 {
		return
	}

	elapsed := simTime.Sub(m.start).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	travelled := m.speed * elapsed

	pos := r2.Vec{X: m.route[0].X, Y: m.route[0].Y}
	heading := v.Pose.AngleDeg

	for i := 0; i+1 < len(m.route); i++ {
		a := r2.Vec{X: m.route[i].X, Y: m.route[i].Y}
		b := r2.Vec{X: m.route[i+1].X, Y: m.route[i+1].Y}
		seg := r2.Sub(b, a)
		segLen := r2.Norm(seg)
		if segLen == 0 {
			continue
		}

		angle := math.Atan2(seg.Y, seg.X) * 180 / math.Pi
		if normalized, err := geom.NormalizeAngle(angle); err == nil {
			heading = normalized
		}

		if travelled <= segLen {
			pos = r2.Add(a, r2.Scale(travelled/segLen, seg))
			v.Pose = model.Pose{X: pos.X, Y: pos.Y, AngleDeg: heading}
			return
		}
		travelled -= segLen
		pos = b
	}

	// Past the end of the route: park at the final waypoint with the
	// heading of the last segment.
	v.Pose = model.Pose{X: pos.X, Y: pos.Y, AngleDeg: heading}
}

// NewMotionModel chooses an appropriate MotionModel for the vehicle.
// Routes need at least two waypoints and positive speed, kinematic motion
// needs a non-zero speed, everything else is static.
func NewMotionModel(v *model.VehicleDefinition, start time.Time) MotionModel {
	switch {
	case v.MotionSource == model.MotionSourceRoute && len(v.Route) >= 2 && v.SpeedMps > 0:
		return NewRouteModel(v, start)
	case v.MotionSource == model.MotionSourceKinematic && v.SpeedMps != 0:
		return NewKinematicModel(v, start)
	default:
		return &StaticMotionModel{}
	}
}
