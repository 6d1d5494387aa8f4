package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"

	"github.com/tsinghua-fib-lab/parksim-oss/utils/config"
)

func TestDefaultIsValid(t *testing.T) {
	c := config.Default()
	assert.NoError(t, c.Validate())
}

func TestYAMLOverride(t *testing.T) {
	// YAML中出现的字段覆盖默认值，未出现的保持默认
	data := `
vehicle:
  wheelbase: 3.0
controller:
  type: mpc
  horizon: 10
scenario:
  waypoints:
    - {x: 0, y: 0, theta: 0}
    - {x: 5, y: 0, theta: 0}
  noise_std: 0.05
`
	c := config.Default()
	assert.NoError(t, yaml.UnmarshalStrict([]byte(data), &c))
	assert.NoError(t, c.Validate())

	assert.Equal(t, 3.0, c.Vehicle.Wheelbase)
	assert.Equal(t, config.ControllerMPC, c.Controller.Type)
	assert.Equal(t, 10, c.Controller.Horizon)
	assert.Len(t, c.Scenario.Waypoints, 2)
	assert.Equal(t, 5.0, c.Scenario.Waypoints[1].X)
	// 未覆盖字段保持默认
	assert.Equal(t, 2.0, c.Vehicle.MaxSpeed)
	assert.Equal(t, 0.1, c.Control.Step.Interval)
}

func TestYAMLStrict(t *testing.T) {
	// 未知字段在严格模式下报错
	data := `
vehicle:
  wheelbase: 3.0
  no_such_field: 1
`
	c := config.Default()
	assert.Error(t, yaml.UnmarshalStrict([]byte(data), &c))
}

func TestValidate(t *testing.T) {
	c := config.Default()
	c.Vehicle.Wheelbase = 0
	assert.Error(t, c.Validate())

	c = config.Default()
	c.Controller.Type = "lqr"
	assert.Error(t, c.Validate())

	c = config.Default()
	c.Controller.Type = config.ControllerMPC
	c.Controller.Horizon = 0
	assert.Error(t, c.Validate())

	c = config.Default()
	c.Control.Step.Interval = 0
	assert.Error(t, c.Validate())

	c = config.Default()
	c.Trajectory.MinWaypointDistance = 0
	assert.Error(t, c.Validate())
}
