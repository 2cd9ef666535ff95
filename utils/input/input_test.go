package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/config"
	"gopkg.in/yaml.v2"
)

const scenarioYAML = `world:
  half_extent: 80
footprint:
  half_width: 12
lanes:
  - name: ns_drive
    axis: ns
    type: driving
    start: {x: 0, y: -80}
    end: {x: 0, y: 80}
signal:
  program: two_phase
  green: 8
  yellow: 2
engine:
  capacity: 32
  population: 16
`

func TestLoadInline(t *testing.T) {
	c := config.Config{Scenario: config.Scenario{World: config.World{HalfExtent: 42}}}
	s := Load(c, "")
	assert.InDelta(t, 42, s.World.HalfExtent, 1e-9)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yml")
	assert.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0o644))

	c := config.Config{Input: &config.Input{Scenario: config.InputPath{File: path}}}
	s := Load(c, "")
	assert.Len(t, s.Lanes, 1)
	assert.Equal(t, "ns_drive", s.Lanes[0].Name)
	assert.Equal(t, "two_phase", s.Signal.Program)
	assert.Equal(t, 32, s.Engine.Capacity)
}

func TestLoadFromFileStrict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yml")
	assert.NoError(t, os.WriteFile(path, []byte("no_such_field: 1\n"), 0o644))

	c := config.Config{Input: &config.Input{Scenario: config.InputPath{File: path}}}
	assert.Panics(t, func() { Load(c, "") })
}

func TestLoadFromCache(t *testing.T) {
	cacheDir := t.TempDir()
	var s config.Scenario
	assert.NoError(t, yaml.Unmarshal([]byte(scenarioYAML), &s))
	data, err := yaml.Marshal(s)
	assert.NoError(t, err)
	p := config.InputPath{DB: "sim", Col: "scenario", OnlyCache: true}
	assert.NoError(t, os.WriteFile(filepath.Join(cacheDir, p.GetCachePath()), data, 0o644))

	c := config.Config{Input: &config.Input{Scenario: p}}
	loaded := Load(c, cacheDir)
	assert.Len(t, loaded.Lanes, 1)
	assert.Equal(t, 16, loaded.Engine.Population)

	// only_cache without a cache file fails fast
	c.Input.Scenario.Col = "missing"
	assert.Panics(t, func() { Load(c, cacheDir) })
}
