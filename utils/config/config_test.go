package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyScenarioDefaults(t *testing.T) {
	var s Scenario
	ApplyScenarioDefaults(&s)
	assert.InDelta(t, DefaultWorldHalfExtent, s.World.HalfExtent, 1e-9)
	assert.InDelta(t, DefaultFootprintHalf, s.Footprint.HalfWidth, 1e-9)
	assert.Equal(t, DefaultCapacity, s.Engine.Capacity)
	assert.Equal(t, DefaultCapacity/2, s.Engine.Population)
	assert.InDelta(t, DefaultMinSpacing, s.Engine.MinSpacing, 1e-9)
	assert.InDelta(t, DefaultFlashTime, s.Signal.FlashTime, 1e-9)
	assert.NotEmpty(t, s.Engine.Mix)
	assert.InDelta(t, 8.33, s.Engine.Speeds[KindCar].Nominal, 1e-9)
}

func TestApplyScenarioDefaultsKeepsExplicit(t *testing.T) {
	s := Scenario{
		World:     World{HalfExtent: 120},
		Footprint: Footprint{HalfWidth: 20},
		Engine: Engine{
			Capacity:   16,
			MinSpacing: 0.1,
			Speeds:     map[string]KindSpeed{KindCar: {Nominal: 10}},
		},
	}
	ApplyScenarioDefaults(&s)
	assert.InDelta(t, 120, s.World.HalfExtent, 1e-9)
	assert.InDelta(t, 20, s.Footprint.HalfWidth, 1e-9)
	assert.Equal(t, 16, s.Engine.Capacity)
	assert.Equal(t, 8, s.Engine.Population)
	assert.InDelta(t, 0.1, s.Engine.MinSpacing, 1e-9)
	// explicit nominal speed kept, jitter filled in
	assert.InDelta(t, 10, s.Engine.Speeds[KindCar].Nominal, 1e-9)
	assert.InDelta(t, DefaultSpeedJitter, s.Engine.Speeds[KindCar].Jitter, 1e-9)
	// kinds not overridden keep their defaults
	assert.InDelta(t, 4.0, s.Engine.Speeds[KindBicycle].Nominal, 1e-9)
}

func TestInputPathGetCachePath(t *testing.T) {
	assert.Equal(t, "db.col.yml", InputPath{DB: "db", Col: "col"}.GetCachePath())
	assert.Equal(t, "x.yml", InputPath{DB: "db", Col: "col", Cache: "x.yml"}.GetCachePath())
}
