// core/simulation_engine_test.go
package core

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/signalsfoundry/traffic-simulator/geom"
	"github.com/signalsfoundry/traffic-simulator/kb"
	"github.com/signalsfoundry/traffic-simulator/model"
)

var engineScenarioJSON = `
{
  "vehicles": [
    {
      "id": "mover",
      "type": "car",
      "width": 2.0,
      "length": 5.0,
      "front_x": 2.5,
      "front_y": 0,
      "angle_deg": 0,
      "speed_mps": 10,
      "motion": "kinematic"
    },
    {
      "id": "parked",
      "type": "car",
      "width": 2.0,
      "length": 5.0,
      "front_x": 102.5,
      "front_y": 0,
      "angle_deg": 0,
      "motion": "static"
    }
  ]
}
`

func newEngineFixture(t *testing.T) *SimulationEngine {
	t.Helper()
	store := kb.NewKnowledgeBase()
	if _, err := LoadTrafficScenario(store, strings.NewReader(engineScenarioJSON)); err != nil {
		t.Fatalf("scenario load failed: %v", err)
	}
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return NewSimulationEngine(store, start, time.Second)
}

func TestEngineStepAdvancesMotion(t *testing.T) {
	eng := newEngineFixture(t)

	// One second at 10 m/s heading east: the mover's centroid goes
	// from x=0 to x=10 while the parked car stays put.
	if _, err := eng.Step(eng.StartTime.Add(time.Second)); err != nil {
		t.Fatalf("Step returned error: %v", err)
	}

	mover := eng.KB.GetVehicle("mover")
	if math.Abs(mover.Pose.X-10) > 1e-9 || math.Abs(mover.Pose.Y) > 1e-9 {
		t.Fatalf("mover pose = (%v, %v), want (10, 0)", mover.Pose.X, mover.Pose.Y)
	}
	parked := eng.KB.GetVehicle("parked")
	if math.Abs(parked.Pose.X-100) > 1e-9 {
		t.Fatalf("parked pose x = %v, want 100", parked.Pose.X)
	}
}

func TestEngineRunProducesReports(t *testing.T) {
	eng := newEngineFixture(t)
	eng.Proximity.QueryRadius = 120

	var ticksSeen []int
	eng.RegisterTickListener(func(tick int, report *ProximityReport) {
		if report == nil {
			t.Fatalf("tick %d: nil report", tick)
		}
		ticksSeen = append(ticksSeen, tick)
	})

	report, err := eng.Run(5)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(ticksSeen) != 5 {
		t.Fatalf("listener fired %d times, want 5", len(ticksSeen))
	}
	for i, tick := range ticksSeen {
		if tick != i {
			t.Fatalf("tick sequence %v, want 0..4", ticksSeen)
		}
	}

	// After 5 s the mover's centroid is at x=50, so the gap between the
	// facing bumpers is 100 - 50 - 2.5 - 2.5 = 45 m.
	vp := report.ByVehicle("mover")
	if vp == nil || len(vp.Neighbors) != 1 {
		t.Fatalf("mover proximity = %+v, want one neighbor", vp)
	}
	if got := vp.Neighbors[0]; got.Key != "parked" || math.Abs(got.Distance-45) > 1e-6 {
		t.Fatalf("mover neighbor = %+v, want parked at 45 m", got)
	}
}

func TestEngineRunDetectsClosingConflict(t *testing.T) {
	eng := newEngineFixture(t)
	eng.Proximity.QueryRadius = 120
	eng.Proximity.MinSeparation = 2

	// The mover covers 10 m per tick. After 9 ticks its nose sits at
	// x=92.5 against the parked tail at x=97.5: a 5 m gap, no conflict.
	report, err := eng.Run(9)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if n := report.ConflictCount(); n != 0 {
		t.Fatalf("conflicts after 9 ticks = %d, want 0", n)
	}

	// A fresh engine run for one more tick drives the mover into the
	// parked car's footprint; distance 0 flags the conflict both ways.
	eng2 := newEngineFixture(t)
	eng2.Proximity.QueryRadius = 120
	eng2.Proximity.MinSeparation = 2
	report2, err := eng2.Run(10)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if n := report2.ConflictCount(); n != 2 {
		t.Fatalf("conflicts after 10 ticks = %d, want 2 (both directions)", n)
	}
	vp := report2.ByVehicle("mover")
	if len(vp.Conflicts) != 1 || vp.Conflicts[0] != "parked" {
		t.Fatalf("mover conflicts = %v, want [parked]", vp.Conflicts)
	}
}

func TestEngineStepEmptyFleet(t *testing.T) {
	store := kb.NewKnowledgeBase()
	eng := NewSimulationEngine(store, time.Now(), time.Second)
	report, err := eng.Step(eng.StartTime.Add(time.Second))
	if err != nil {
		t.Fatalf("Step over empty fleet returned error: %v", err)
	}
	if len(report.Vehicles) != 0 {
		t.Fatalf("empty fleet produced %d report entries", len(report.Vehicles))
	}
}

func TestEngineStepPropagatesSweepErrors(t *testing.T) {
	store := kb.NewKnowledgeBase()
	// Bypass the loader's footprint validation on purpose.
	if err := store.AddVehicle(&model.VehicleDefinition{ID: "flat", Width: 0, Length: 5}); err != nil {
		t.Fatalf("AddVehicle failed: %v", err)
	}
	eng := NewSimulationEngine(store, time.Now(), time.Second)
	if _, err := eng.Step(eng.StartTime.Add(time.Second)); !errors.Is(err, geom.ErrInvalidDimension) {
		t.Fatalf("error = %v, want ErrInvalidDimension", err)
	}
}
