package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity"
)

func TestProgramValidate(t *testing.T) {
	// empty program is invalid
	assert.Error(t, (&Program{}).Validate())
	// non-positive duration is invalid
	p := TwoPhaseProgram(8, 2)
	p.Phases[1].Duration = 0
	assert.Error(t, p.Validate())
	assert.NoError(t, TwoPhaseProgram(8, 2).Validate())
	assert.NoError(t, ProtectedLeftProgram(4, 8, 2, 1).Validate())
}

func TestCycleLength(t *testing.T) {
	assert.InDelta(t, 20, TwoPhaseProgram(8, 2).CycleLength(), 1e-9)
	assert.InDelta(t, 30, ProtectedLeftProgram(4, 8, 2, 1).CycleLength(), 1e-9)
}

func TestTwoPhaseCycle(t *testing.T) {
	c := NewController(TwoPhaseProgram(8, 2), 0)
	// initial phase is ns_green with the full duration remaining
	assert.Equal(t, "ns_green", c.PhaseName())
	assert.Equal(t, ColorGreen, c.PhaseFor(entity.AxisNS))
	assert.Equal(t, ColorRed, c.PhaseFor(entity.AxisEW))
	assert.Equal(t, int32(8), c.CountdownSeconds())

	// one full cycle in 1s steps returns to the initial phase
	for i := 0; i < 20; i++ {
		c.Update(1)
	}
	assert.Equal(t, "ns_green", c.PhaseName())
	assert.InDelta(t, 8, c.RemainingTime(), 1e-9)
}

func TestCarryOverSwitch(t *testing.T) {
	c := NewController(TwoPhaseProgram(8, 2), 0)
	// just before the boundary the phase holds and the countdown rounds up
	c.Update(7.999)
	assert.Equal(t, "ns_green", c.PhaseName())
	assert.Equal(t, int32(1), c.CountdownSeconds())
	// the overshoot carries into the next phase instead of being truncated
	c.Update(0.002)
	assert.Equal(t, "ns_yellow", c.PhaseName())
	assert.InDelta(t, 1.999, c.RemainingTime(), 1e-9)
	// a dt longer than several phases skips through them
	c.Update(1.999 + 8 + 2)
	assert.Equal(t, "ns_green", c.PhaseName())
	assert.InDelta(t, 8, c.RemainingTime(), 1e-9)
}

func TestZeroDtIsNoop(t *testing.T) {
	c := NewController(TwoPhaseProgram(8, 2), 0)
	c.Update(3)
	step, remaining := c.Step(), c.RemainingTime()
	c.Update(0)
	assert.Equal(t, step, c.Step())
	assert.InDelta(t, remaining, c.RemainingTime(), 1e-9)
}

func TestProtectedLeftArrows(t *testing.T) {
	c := NewController(ProtectedLeftProgram(4, 8, 2, 1), 0)
	// ns_left: the arrow is green while the through head stays red
	assert.Equal(t, "ns_left", c.PhaseName())
	assert.Equal(t, ColorGreen, c.ArrowFor(entity.AxisNS))
	assert.Equal(t, ColorRed, c.PhaseFor(entity.AxisNS))
	assert.Equal(t, ColorRed, c.ArrowFor(entity.AxisEW))

	c.Update(4)
	assert.Equal(t, "ns_through", c.PhaseName())
	assert.Equal(t, ColorGreen, c.PhaseFor(entity.AxisNS))
	assert.Equal(t, ColorRed, c.ArrowFor(entity.AxisNS))

	// all-red clearance phase
	c.Update(8)
	c.Update(2)
	assert.Equal(t, "ns_clear", c.PhaseName())
	assert.Equal(t, ColorRed, c.PhaseFor(entity.AxisNS))
	assert.Equal(t, ColorRed, c.PhaseFor(entity.AxisEW))
}

func TestTwoPhaseArrowsOff(t *testing.T) {
	c := NewController(TwoPhaseProgram(8, 2), 0)
	assert.Equal(t, ColorOff, c.ArrowFor(entity.AxisNS))
	assert.Equal(t, ColorOff, c.ArrowFor(entity.AxisEW))
}

func TestPedestrianPhases(t *testing.T) {
	c := NewController(TwoPhaseProgram(8, 2), 3)
	// ns green: ns crosswalk walks, ew crosswalk stops
	assert.Equal(t, PedestrianWalk, c.PedestrianPhaseFor(entity.AxisNS))
	assert.Equal(t, PedestrianStop, c.PedestrianPhaseFor(entity.AxisEW))

	// within the flash window the walk phase turns into a warning flash
	c.Update(5.5)
	assert.InDelta(t, 2.5, c.RemainingTime(), 1e-9)
	assert.Equal(t, PedestrianFlash, c.PedestrianPhaseFor(entity.AxisNS))

	// yellow keeps flashing
	c.Update(2.5)
	assert.Equal(t, "ns_yellow", c.PhaseName())
	assert.Equal(t, PedestrianFlash, c.PedestrianPhaseFor(entity.AxisNS))

	// with the flash window disabled the walk holds until the switch
	cNoFlash := NewController(TwoPhaseProgram(8, 2), 0)
	cNoFlash.Update(7.5)
	assert.Equal(t, PedestrianWalk, cNoFlash.PedestrianPhaseFor(entity.AxisNS))
}

func TestForceOverride(t *testing.T) {
	c := NewController(TwoPhaseProgram(8, 2), 3)
	c.Update(3)
	remaining := c.RemainingTime()

	// the override takes effect on the next update and pauses cycling
	c.Force(ColorRed)
	c.Update(10)
	assert.True(t, c.Forced())
	assert.Equal(t, ColorRed, c.PhaseFor(entity.AxisNS))
	assert.Equal(t, ColorRed, c.PhaseFor(entity.AxisEW))
	assert.Equal(t, ColorRed, c.ArrowFor(entity.AxisNS))
	assert.Equal(t, int32(0), c.CountdownSeconds())
	assert.Equal(t, PedestrianStop, c.PedestrianPhaseFor(entity.AxisNS))

	// forced green never flashes
	c.Force(ColorGreen)
	c.Update(10)
	assert.Equal(t, PedestrianWalk, c.PedestrianPhaseFor(entity.AxisNS))

	// releasing the override resumes where the cycle paused
	c.Unforce()
	c.Update(1)
	assert.False(t, c.Forced())
	assert.Equal(t, "ns_green", c.PhaseName())
	assert.InDelta(t, remaining-1, c.RemainingTime(), 1e-9)
}

func TestSetProgramBuffered(t *testing.T) {
	c := NewController(TwoPhaseProgram(8, 2), 0)
	assert.Error(t, c.Set(&Program{}))
	assert.NoError(t, c.Set(ProtectedLeftProgram(4, 8, 2, 1)))
	// the new program only applies on the next update
	assert.Equal(t, "ns_green", c.PhaseName())
	c.Update(1)
	assert.Equal(t, "ns_left", c.PhaseName())
	assert.InDelta(t, 3, c.RemainingTime(), 1e-9)
}

func TestSetPhase(t *testing.T) {
	c := NewController(TwoPhaseProgram(8, 2), 0)
	c.SetPhase(2, 5)
	c.Update(1)
	assert.Equal(t, "ew_green", c.PhaseName())
	assert.InDelta(t, 4, c.RemainingTime(), 1e-9)
	// out-of-range offsets wrap around
	c.SetPhase(5, 2)
	c.Update(0.5)
	assert.Equal(t, "ns_yellow", c.PhaseName())
	assert.InDelta(t, 1.5, c.RemainingTime(), 1e-9)
}
