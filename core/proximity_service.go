// core/proximity_service.go
package core

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/signalsfoundry/traffic-simulator/geom"
	"github.com/signalsfoundry/traffic-simulator/kb"
)

// ProximityService evaluates pairwise vehicle separation at a given
// instant. For each vehicle it runs a cheap centroid radius pre-filter
// over the fleet, then computes exact OBB surface distances for the
// surviving candidates and flags pairs closer than MinSeparation.
type ProximityService struct {
	KB *kb.KnowledgeBase

	// QueryRadius is the neighbour search radius in metres, measured
	// between vehicle surfaces. The centroid pre-filter widens it by the
	// bounding margins of the vehicles involved so that no true
	// candidate is lost to heading.
	QueryRadius float64

	// MinSeparation is the surface distance in metres under which a
	// vehicle pair is reported as a conflict.
	MinSeparation float64
}

// NewProximityService returns a service with defaults suited to urban
// traffic scenarios.
func NewProximityService(store *kb.KnowledgeBase) *ProximityService {
	return &ProximityService{
		KB:            store,
		QueryRadius:   50.0, // metres
		MinSeparation: 2.0,  // metres
	}
}

// VehicleProximity is the per-vehicle result of a proximity sweep.
type VehicleProximity struct {
	VehicleID string
	// Neighbors holds surface distances to every candidate within the
	// query radius, ascending; ties keep fleet insertion order.
	Neighbors []geom.KeyedDistance
	// Conflicts lists neighbour IDs closer than MinSeparation, in the
	// same order they appear in Neighbors.
	Conflicts []string
}

// ProximityReport is a full fleet sweep, one entry per vehicle in KB
// insertion order.
type ProximityReport struct {
	Vehicles []VehicleProximity
}

// ByVehicle returns the entry for the given vehicle ID, or nil.
func (r *ProximityReport) ByVehicle(id string) *VehicleProximity {
	for i := range r.Vehicles {
		if r.Vehicles[i].VehicleID == id {
			return &r.Vehicles[i]
		}
	}
	return nil
}

// ConflictCount returns the number of (directed) conflict entries in the
// report.
func (r *ProximityReport) ConflictCount() int {
	n := 0
	for _, v := range r.Vehicles {
		n += len(v.Conflicts)
	}
	return n
}

// UpdateProximity sweeps the whole fleet. The sweep is deterministic:
// identical KB contents produce an identical report.
func (ps *ProximityService) UpdateProximity() (*ProximityReport, error) {
	vehicles := ps.KB.ListVehicles()
	points := ps.KB.CentroidPoints()
	polys, err := ps.KB.Polygons()
	if err != nil {
		return nil, err
	}

	// Worst-case half-diagonal across the fleet; added to the pre-filter
	// reach so a long rotated candidate cannot slip through.
	maxMargin := 0.0
	for _, v := range vehicles {
		if m := geom.BoundingMargin(v.Length, v.Width); m > maxMargin {
			maxMargin = m
		}
	}

	report := &ProximityReport{Vehicles: make([]VehicleProximity, 0, len(vehicles))}
	for _, v := range vehicles {
		entry, err := ps.sweepOne(v.ID, points, polys, maxMargin, ps.QueryRadius)
		if err != nil {
			return nil, err
		}
		report.Vehicles = append(report.Vehicles, *entry)
	}
	return report, nil
}

// NearestNeighbors returns the ascending surface distances from one
// vehicle to every other vehicle within radius metres. A non-positive
// radius falls back to the service's QueryRadius.
func (ps *ProximityService) NearestNeighbors(id string, radius float64) ([]geom.KeyedDistance, error) {
	if radius <= 0 {
		radius = ps.QueryRadius
	}

	v := ps.KB.GetVehicle(id)
	if v == nil {
		return nil, fmt.Errorf("%w: %q", kb.ErrVehicleNotFound, id)
	}

	points := ps.KB.CentroidPoints()
	polys, err := ps.KB.Polygons()
	if err != nil {
		return nil, err
	}

	maxMargin := 0.0
	for _, other := range ps.KB.ListVehicles() {
		if m := geom.BoundingMargin(other.Length, other.Width); m > maxMargin {
			maxMargin = m
		}
	}

	entry, err := ps.sweepOne(id, points, polys, maxMargin, radius)
	if err != nil {
		return nil, err
	}
	return entry.Neighbors, nil
}

func (ps *ProximityService) sweepOne(id string, points *geom.PointSet, polys *geom.PolygonSet, maxMargin, radius float64) (*VehicleProximity, error) {
	origin, ok := points.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", kb.ErrVehicleNotFound, id)
	}
	egoPoly, ok := polys.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", kb.ErrVehicleNotFound, id)
	}

	ego := ps.KB.GetVehicle(id)
	egoMargin := geom.BoundingMargin(ego.Length, ego.Width)

	// Cheap centroid filter first; its output is a superset of the true
	// candidates, refined by the exact polygon distances below.
	candidates, err := geom.FilterPointsInRadius(origin, points, radius, egoMargin+maxMargin)
	if err != nil {
		return nil, fmt.Errorf("pre-filter for %q: %w", id, err)
	}

	targets := geom.NewPolygonSet()
	candidates.Each(func(key string, _ r2.Vec) {
		if key == id {
			return
		}
		if poly, ok := polys.Get(key); ok {
			targets.Add(key, poly)
		}
	})

	distances, err := geom.PolygonDistances(egoPoly, targets)
	if err != nil {
		return nil, fmt.Errorf("distance sweep for %q: %w", id, err)
	}

	entry := &VehicleProximity{VehicleID: id}
	for _, kd := range distances {
		if kd.Distance > radius {
			// Centroid filter admits false positives; drop them here.
			continue
		}
		entry.Neighbors = append(entry.Neighbors, kd)
		if kd.Distance < ps.MinSeparation {
			entry.Conflicts = append(entry.Conflicts, kd.Key)
		}
	}
	return entry, nil
}
