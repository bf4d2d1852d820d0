package kb

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/signalsfoundry/traffic-simulator/geom"
	"github.com/signalsfoundry/traffic-simulator/model"
)

var (
	// ErrVehicleExists indicates an Add with an already-registered ID.
	ErrVehicleExists = errors.New("vehicle already exists")
	// ErrVehicleNotFound indicates a lookup or update on an unknown ID.
	ErrVehicleNotFound = errors.New("vehicle not found")
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventVehicleUpdated EventType = iota
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type    EventType
	Vehicle model.VehicleDefinition
}

// KnowledgeBase is an in-memory, thread-safe store of vehicles.
//
// Iteration order is insertion order everywhere: proximity reports and
// radius filters are specified to be reproducible across runs, so the KB
// tracks key order alongside the map.
type KnowledgeBase struct {
	mu sync.RWMutex

	order    []string
	vehicles map[string]*model.VehicleDefinition

	subs      []subscriber
	nextSubID int
}

// subscriber carries a stable ID so an unsubscribe removes exactly the
// callback it was issued for, no matter how the slice has shifted since.
type subscriber struct {
	id int
	fn func(Event)
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		vehicles: make(map[string]*model.VehicleDefinition),
	}
}

// AddVehicle adds a new vehicle. It returns an error if the ID already exists.
func (kb *KnowledgeBase) AddVehicle(v *model.VehicleDefinition) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, exists := kb.vehicles[v.ID]; exists {
		return fmt.Errorf("%w: %q", ErrVehicleExists, v.ID)
	}
	// store pointer so that motion models can update in-place
	kb.vehicles[v.ID] = v
	kb.order = append(kb.order, v.ID)
	return nil
}

// GetVehicle returns the vehicle with the given ID, or nil if not found.
func (kb *KnowledgeBase) GetVehicle(id string) *model.VehicleDefinition {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.vehicles[id]
}

// ListVehicles returns a snapshot slice of all vehicles in insertion order.
func (kb *KnowledgeBase) ListVehicles() []*model.VehicleDefinition {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]*model.VehicleDefinition, 0, len(kb.order))
	for _, id := range kb.order {
		res = append(res, kb.vehicles[id])
	}
	return res
}

// UpdateVehiclePose updates a vehicle's centroid pose and notifies
// subscribers.
func (kb *KnowledgeBase) UpdateVehiclePose(id string, pose model.Pose) error {
	kb.mu.Lock()
	v, ok := kb.vehicles[id]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrVehicleNotFound, id)
	}
	v.Pose = pose
	event := Event{
		Type:    EventVehicleUpdated,
		Vehicle: *v, // copy for safety
	}
	subs := append([]subscriber{}, kb.subs...)
	kb.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub.fn(event)
	}
	return nil
}

// CentroidPoints returns a snapshot of the vehicles' centroid positions
// keyed by vehicle ID, in insertion order. This is the input shape the
// radius pre-filter wants.
func (kb *KnowledgeBase) CentroidPoints() *geom.PointSet {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	points := geom.NewPointSet()
	for _, id := range kb.order {
		v := kb.vehicles[id]
		points.Add(id, r2.Vec{X: v.Pose.X, Y: v.Pose.Y})
	}
	return points
}

// Polygons returns a snapshot of the vehicles' current oriented bounding
// boxes keyed by vehicle ID, in insertion order. A vehicle with invalid
// dimensions surfaces the geometry error.
func (kb *KnowledgeBase) Polygons() (*geom.PolygonSet, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	polys := geom.NewPolygonSet()
	for _, id := range kb.order {
		v := kb.vehicles[id]
		obb, err := geom.NewOBB(v.Pose.X, v.Pose.Y, v.Width, v.Length, v.Pose.AngleDeg)
		if err != nil {
			return nil, fmt.Errorf("vehicle %q: %w", id, err)
		}
		polys.Add(id, obb)
	}
	return polys, nil
}

// Subscribe registers a callback for KB events. It returns an unsubscribe
// function; calling it more than once is a no-op.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.nextSubID
	kb.nextSubID++
	kb.subs = append(kb.subs, subscriber{id: id, fn: fn})

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		for i, sub := range kb.subs {
			if sub.id == id {
				kb.subs = append(kb.subs[:i], kb.subs[i+1:]...)
				return
			}
		}
	}
}
