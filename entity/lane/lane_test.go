package lane

import (
	"math"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/config"
)

func testScenario(halfWidth float64) config.Scenario {
	return config.Scenario{
		World:     config.World{HalfExtent: 80},
		Footprint: config.Footprint{HalfWidth: halfWidth},
		Lanes: []config.LaneDef{
			{Name: "ns_through", Axis: "ns", Type: "driving", Turn: "through",
				Start: config.XYZ{X: -4, Y: -80}, End: config.XYZ{X: -4, Y: 80}},
			{Name: "ns_left", Axis: "ns", Type: "driving", Turn: "left",
				Start: config.XYZ{X: -8, Y: -80}, End: config.XYZ{X: -8, Y: 80}},
			{Name: "ew_through", Axis: "ew", Type: "driving",
				Start: config.XYZ{X: -80, Y: 4}, End: config.XYZ{X: 80, Y: 4}},
			{Name: "ns_crosswalk", Axis: "ns", Type: "walking",
				Start: config.XYZ{X: -20, Y: -16}, End: config.XYZ{X: 20, Y: -16}},
			{Name: "side_path", Axis: "ns", Type: "driving",
				Start: config.XYZ{X: 50, Y: -80}, End: config.XYZ{X: 50, Y: 80}},
		},
	}
}

func TestLaneGeometry(t *testing.T) {
	m := NewManager(testScenario(12))
	ns := m.Get(0)
	assert.Equal(t, entity.AxisNS, ns.Axis())
	assert.Equal(t, mapv2.LaneType_LANE_TYPE_DRIVING, ns.Type())
	assert.Equal(t, mapv2.LaneTurn_LANE_TURN_STRAIGHT, ns.Turn())
	assert.InDelta(t, 160, ns.Length(), 1e-9)

	// position lookup interpolates along the center line
	p := ns.GetPositionByS(40)
	assert.InDelta(t, -4, p.X, 1e-9)
	assert.InDelta(t, -40, p.Y, 1e-9)
	// out-of-range s clamps to the endpoints
	p = ns.GetPositionByS(200)
	assert.InDelta(t, 80, p.Y, 1e-9)

	// heading is the segment's atan2 angle
	assert.InDelta(t, math.Pi/2, ns.GetDirectionByS(40).Direction, 1e-9)
	ew := m.Get(2)
	assert.InDelta(t, 0, ew.GetDirectionByS(40).Direction, 1e-9)
}

func TestFootprintThresholds(t *testing.T) {
	// same lane table, two footprint sizes: thresholds follow the geometry
	m12 := NewManager(testScenario(12))
	m20 := NewManager(testScenario(20))

	ns12, ns20 := m12.Get(0), m20.Get(0)
	assert.InDelta(t, 68, ns12.FootprintEntryS(), 1e-9)
	assert.InDelta(t, 92, ns12.FootprintExitS(), 1e-9)
	assert.InDelta(t, 60, ns20.FootprintEntryS(), 1e-9)
	assert.InDelta(t, 100, ns20.FootprintExitS(), 1e-9)

	// a lane outside the footprint has no stop line at all
	side := m12.Get(4)
	assert.True(t, math.IsInf(side.FootprintEntryS(), 1))
	assert.False(t, side.CrossesIntoFootprint(0, side.Length()))

	// the crosswalk ahead of a 12m footprint is outside, inside a 20m one
	cw12, cw20 := m12.Get(3), m20.Get(3)
	assert.True(t, math.IsInf(cw12.FootprintEntryS(), 1))
	assert.False(t, math.IsInf(cw20.FootprintEntryS(), 1))
}

func TestCrossesIntoFootprint(t *testing.T) {
	m := NewManager(testScenario(12))
	ns := m.Get(0) // entryS=68
	assert.True(t, ns.CrossesIntoFootprint(67.9, 68))
	assert.True(t, ns.CrossesIntoFootprint(60, 90))
	// no crossing while still short of the entry point
	assert.False(t, ns.CrossesIntoFootprint(60, 67.9))
	// already inside: the stop line no longer applies
	assert.False(t, ns.CrossesIntoFootprint(68, 90))
	assert.False(t, ns.CrossesIntoFootprint(70, 95))
}

func TestManagerLookup(t *testing.T) {
	m := NewManager(testScenario(12))
	assert.Equal(t, 5, m.Count())
	assert.Equal(t, "ns_left", m.Get(1).Name())
	assert.Panics(t, func() { m.Get(99) })

	_, err := m.GetOrError(99)
	assert.ErrorIs(t, err, ErrInvalidLaneReference)
	_, err = m.GetOrError(-1)
	assert.ErrorIs(t, err, ErrInvalidLaneReference)
	l, err := m.GetOrError(2)
	assert.NoError(t, err)
	assert.Equal(t, "ew_through", l.Name())
}

func TestManagerByType(t *testing.T) {
	m := NewManager(testScenario(12))
	assert.Len(t, m.ByType(mapv2.LaneType_LANE_TYPE_DRIVING), 4)
	assert.Len(t, m.ByType(mapv2.LaneType_LANE_TYPE_WALKING), 1)
	assert.True(t, m.Get(3).IsWalkLane())
	assert.False(t, m.Get(0).IsWalkLane())
}

func TestWorldAndFootprintContains(t *testing.T) {
	m := NewManager(testScenario(12))
	assert.True(t, m.Footprint().Contains(geometry.Point{X: 11, Y: -11}))
	assert.False(t, m.Footprint().Contains(geometry.Point{X: 13, Y: 0}))
	assert.True(t, m.WorldContains(geometry.Point{X: 79, Y: -79}))
	assert.False(t, m.WorldContains(geometry.Point{X: 81, Y: 0}))
}

func TestFootprintCrossedInto(t *testing.T) {
	fp := Footprint{HalfWidth: 12}
	out := geometry.Point{X: -13}
	// entering counts, and so does overshooting the whole square
	assert.True(t, fp.CrossedInto(out, geometry.Point{X: -11}))
	assert.True(t, fp.CrossedInto(out, geometry.Point{X: 17}))
	// staying outside does not
	assert.False(t, fp.CrossedInto(out, geometry.Point{X: -12.5}))
	// starting inside is never a crossing
	assert.False(t, fp.CrossedInto(geometry.Point{X: 11}, geometry.Point{X: 17}))
	// passing beside the square misses it
	assert.False(t, fp.CrossedInto(geometry.Point{X: -13, Y: 20}, geometry.Point{X: 17, Y: 20}))
}

func TestBadLaneDefPanics(t *testing.T) {
	base := testScenario(12)
	for _, mutate := range []func(*config.LaneDef){
		func(d *config.LaneDef) { d.Axis = "diagonal" },
		func(d *config.LaneDef) { d.Type = "rail" },
		func(d *config.LaneDef) { d.Turn = "right" },
		func(d *config.LaneDef) { d.End = d.Start },
	} {
		s := base
		s.Lanes = append([]config.LaneDef{}, base.Lanes...)
		mutate(&s.Lanes[0])
		assert.Panics(t, func() { NewManager(s) })
	}
	assert.Panics(t, func() { NewManager(config.Scenario{}) })
}
