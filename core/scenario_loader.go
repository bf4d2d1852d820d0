// core/scenario_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/signalsfoundry/traffic-simulator/geom"
	"github.com/signalsfoundry/traffic-simulator/kb"
	"github.com/signalsfoundry/traffic-simulator/model"
)

// TrafficScenario is a small summary of what was loaded from JSON.
// It's mainly useful for logging or debugging from main().
type TrafficScenario struct {
	VehicleIDs []string
}

// internal JSON shapes – keep them unexported so we're free to evolve them.
type trafficScenarioJSON struct {
	Vehicles []vehicleJSON `json:"vehicles"`
}

type vehicleJSON struct {
	ID   string `json:"id"` // optional; generated when empty
	Name string `json:"name"`
	Type string `json:"type"` // "CAR" | "TRUCK" | "BUS" | ...

	Width  float64 `json:"width"`
	Length float64 `json:"length"`

	// Position of the front bumper center, the reference point traffic
	// tools report. The loader converts it to the centroid.
	FrontX   float64 `json:"front_x"`
	FrontY   float64 `json:"front_y"`
	AngleDeg float64 `json:"angle_deg"`

	SpeedMps float64        `json:"speed_mps"`
	Motion   string         `json:"motion"` // "static" | "kinematic" | "route"
	Route    []waypointJSON `json:"route"`
}

type waypointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LoadTrafficScenario reads a JSON scenario from r, populates the
// KnowledgeBase with vehicles (front-bumper positions converted to
// centroid poses, headings normalized), and returns a summary of what
// was loaded.
//
// Structural and domain errors fail eagerly: a vehicle with a
// malformed footprint or a non-finite position aborts the whole load.
func LoadTrafficScenario(store *kb.KnowledgeBase, r io.Reader) (*TrafficScenario, error) {
	if store == nil {
		return nil, fmt.Errorf("LoadTrafficScenario: kb is nil")
	}

	var payload trafficScenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadTrafficScenario: decode failed: %w", err)
	}

	result := &TrafficScenario{
		VehicleIDs: make([]string, 0, len(payload.Vehicles)),
	}

	for i, jsV := range payload.Vehicles {
		id := jsV.ID
		if id == "" {
			id = uuid.NewString()
		}

		angle, err := geom.NormalizeAngle(jsV.AngleDeg)
		if err != nil {
			return nil, fmt.Errorf("LoadTrafficScenario: vehicle %d (%q): %w", i, id, err)
		}

		center, err := geom.CenterFromFront(r2.Vec{X: jsV.FrontX, Y: jsV.FrontY}, jsV.Length, angle)
		if err != nil {
			return nil, fmt.Errorf("LoadTrafficScenario: vehicle %d (%q): %w", i, id, err)
		}

		// Building the OBB up front validates the footprint so bad
		// dimensions surface at load time, not mid-simulation.
		if _, err := geom.NewOBB(center.X, center.Y, jsV.Width, jsV.Length, angle); err != nil {
			return nil, fmt.Errorf("LoadTrafficScenario: vehicle %d (%q): %w", i, id, err)
		}

		route := make([]model.Waypoint, 0, len(jsV.Route))
		for _, wp := range jsV.Route {
			route = append(route, model.Waypoint{X: wp.X, Y: wp.Y})
		}

		vehicle := &model.VehicleDefinition{
			ID:           id,
			Name:         jsV.Name,
			Type:         strings.ToUpper(strings.TrimSpace(jsV.Type)),
			Width:        jsV.Width,
			Length:       jsV.Length,
			Pose:         model.Pose{X: center.X, Y: center.Y, AngleDeg: angle},
			SpeedMps:     jsV.SpeedMps,
			MotionSource: motionSourceFromString(jsV.Motion),
			Route:        route,
		}

		if err := store.AddVehicle(vehicle); err != nil {
			return nil, fmt.Errorf("LoadTrafficScenario: vehicle %d: %w", i, err)
		}
		result.VehicleIDs = append(result.VehicleIDs, id)
	}

	return result, nil
}

// motionSourceFromString maps the JSON "motion" string to our
// MotionSource* constants.
//
// We keep this tolerant: unknown / empty values default to static,
// because parked vehicles are the common case in snapshot scenarios.
func motionSourceFromString(s string) model.MotionSource {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kinematic", "constant", "cruise":
		return model.MotionSourceKinematic
	case "route", "waypoints", "path":
		return model.MotionSourceRoute
	default:
		return model.MotionSourceStatic
	}
}
