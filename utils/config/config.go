package config

import "fmt"

// 控制器类型的合法取值
const (
	ControllerHybrid      = "hybrid"
	ControllerPurePursuit = "purepursuit"
	ControllerMPC         = "mpc"
	ControllerStanley     = "stanley"
)

// Default 返回带默认值的配置
// 功能：给出一套经过调参的默认参数，YAML中未出现的字段保持默认值
// 说明：默认值在构造时一次性解析，运行期不做字段级回退查找
func Default() Config {
	return Config{
		Vehicle: Vehicle{
			Wheelbase:       2.7,
			Length:          4.5,
			Width:           1.8,
			RearOverhang:    0.9,
			InflationRadius: 0.3,
			MaxSpeed:        2.0,
			MinSpeed:        -1.0,
			MaxSteer:        0.6,
			MaxAccel:        1.0,
			MaxDecel:        1.0,
			MaxLatAccel:     2.0,
		},
		Trajectory: Trajectory{
			MinWaypointDistance: 0.1,
			MaxCurvature:        0.5,
		},
		Controller: Controller{
			Type:              ControllerHybrid,
			K1:                1.0,
			K2:                1.5,
			K3:                0.8,
			Horizon:           6,
			QLat:              2000,
			QLong:             200,
			QTheta:            400,
			RV:                0.5,
			RPhi:              2,
			LookaheadBase:     1.0,
			LookaheadTimeGain: 0.5,
			LookaheadMin:      0.5,
			LookaheadMax:      3.0,
		},
		Control: Control{
			Step: ControlStep{Interval: 0.1},
		},
		Scenario: Scenario{
			Seed:     43,
			HoldTime: 2.0,
		},
	}
}

// Validate 校验配置的一致性
// 功能：检查配置中会导致数值算法失效的取值，返回第一个发现的错误
func (c *Config) Validate() error {
	if c.Vehicle.Wheelbase <= 0 {
		return fmt.Errorf("config: wheelbase must be positive, got %v", c.Vehicle.Wheelbase)
	}
	if c.Vehicle.MaxSpeed <= 0 {
		return fmt.Errorf("config: max_speed must be positive, got %v", c.Vehicle.MaxSpeed)
	}
	if c.Vehicle.MaxAccel <= 0 || c.Vehicle.MaxDecel <= 0 || c.Vehicle.MaxLatAccel <= 0 {
		return fmt.Errorf("config: acceleration limits must be positive")
	}
	if c.Vehicle.MaxSteer <= 0 {
		return fmt.Errorf("config: max_steer must be positive, got %v", c.Vehicle.MaxSteer)
	}
	if c.Control.Step.Interval <= 0 {
		return fmt.Errorf("config: control step interval must be positive, got %v", c.Control.Step.Interval)
	}
	if c.Trajectory.MinWaypointDistance <= 0 {
		return fmt.Errorf("config: min_waypoint_distance must be positive, got %v", c.Trajectory.MinWaypointDistance)
	}
	switch c.Controller.Type {
	case ControllerHybrid, ControllerPurePursuit, ControllerMPC, ControllerStanley:
	default:
		return fmt.Errorf("config: unknown controller type %q", c.Controller.Type)
	}
	if c.Controller.Type == ControllerMPC && c.Controller.Horizon < 1 {
		return fmt.Errorf("config: mpc horizon must be at least 1, got %d", c.Controller.Horizon)
	}
	return nil
}
