package core

import (
	"time"

	"github.com/signalsfoundry/traffic-simulator/kb"
	"github.com/signalsfoundry/traffic-simulator/model"
)

// SimulationEngine drives the tick loop: motion updates first, then a
// full proximity sweep, then tick listeners.
type SimulationEngine struct {
	KB        *kb.KnowledgeBase
	Proximity *ProximityService

	StartTime time.Time
	Tick      time.Duration

	motions       map[string]MotionModel
	tickListeners []func(tick int, report *ProximityReport)
}

// NewSimulationEngine constructs an engine over the given store.
func NewSimulationEngine(store *kb.KnowledgeBase, start time.Time, tick time.Duration) *SimulationEngine {
	return &SimulationEngine{
		KB:        store,
		Proximity: NewProximityService(store),
		StartTime: start,
		Tick:      tick,
		motions:   make(map[string]MotionModel),
	}
}

// RegisterTickListener adds a callback invoked after every completed tick.
func (se *SimulationEngine) RegisterTickListener(fn func(tick int, report *ProximityReport)) {
	se.tickListeners = append(se.tickListeners, fn)
}

// motionModelFor returns (building on first use) the motion model for a
// vehicle, anchored at the engine start time.
func (se *SimulationEngine) motionModelFor(v *model.VehicleDefinition) MotionModel {
	if m, ok := se.motions[v.ID]; ok {
		return m
	}
	m := NewMotionModel(v, se.StartTime)
	se.motions[v.ID] = m
	return m
}

// Step advances the simulation by one tick: every vehicle's pose is
// updated for the given simulation time, then the fleet is swept.
func (se *SimulationEngine) Step(simTime time.Time) (*ProximityReport, error) {
	for _, v := range se.KB.ListVehicles() {
		se.motionModelFor(v).UpdatePose(simTime, v)
		if err := se.KB.UpdateVehiclePose(v.ID, v.Pose); err != nil {
			return nil, err
		}
	}
	return se.Proximity.UpdateProximity()
}

// Run executes the given number of ticks back to back, notifying tick
// listeners after each sweep. It returns the final report.
func (se *SimulationEngine) Run(ticks int) (*ProximityReport, error) {
	var report *ProximityReport
	for tick := 0; tick < ticks; tick++ {
		simTime := se.StartTime.Add(time.Duration(tick+1) * se.Tick)

		var err error
		report, err = se.Step(simTime)
		if err != nil {
			return nil, err
		}

		for _, fn := range se.tickListeners {
			fn(tick, report)
		}
	}
	return report, nil
}
