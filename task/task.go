// 泊车任务包，把轨迹生成批处理与定频控制循环组装为一次完整机动
package task

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/tsinghua-fib-lab/parksim-oss/clock"
	"github.com/tsinghua-fib-lab/parksim-oss/controller"
	"github.com/tsinghua-fib-lab/parksim-oss/planner"
	"github.com/tsinghua-fib-lab/parksim-oss/trajectory"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/config"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/numeric"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/randengine"
	"github.com/tsinghua-fib-lab/parksim-oss/vehicle"
)

// log 任务模块的日志记录器
var log = logrus.WithField("module", "task")

// Context 泊车任务上下文
// 功能：持有一次泊车机动的配置、规划器与运行期组件
// 说明：轨迹生成是控制循环开始前的一次性批处理，
// 生成后的轨迹在整个机动中只读
type Context struct {
	cfg     config.Config
	planner planner.Planner

	clock      *clock.Clock
	trajectory *trajectory.TimedTrajectory
	controller controller.Controller
	vehicle    *vehicle.Vehicle
}

// Result 一次机动的运行结果
type Result struct {
	Ticks              int     // 实际执行的控制周期数
	Duration           float64 // 参考轨迹时长（秒）
	FinalPositionError float64 // 终点位置误差（米）
	FinalHeadingError  float64 // 终点航向误差（弧度）
	FinalCommand       controller.Command
}

// NewContext 创建泊车任务上下文
// 参数：cfg-完整配置，p-路径规划器（nil时使用配置中的静态路径）
func NewContext(cfg config.Config, p planner.Planner) *Context {
	if p == nil {
		wps := make([]trajectory.Waypoint, 0, len(cfg.Scenario.Waypoints))
		for _, w := range cfg.Scenario.Waypoints {
			wps = append(wps, trajectory.Waypoint{X: w.X, Y: w.Y, Theta: w.Theta})
		}
		p = planner.NewStatic(wps)
	}
	return &Context{cfg: cfg, planner: p}
}

// Trajectory 返回生成的参考轨迹（Run或Prepare之后有效）
func (ctx *Context) Trajectory() *trajectory.TimedTrajectory {
	return ctx.trajectory
}

// Prepare 轨迹生成批处理
// 功能：规划→去重→平滑→速度剖面→时间参数化→定频参考轨迹，
// 并构造控制器与被控对象
// 说明：任何一步失败对本次机动都是致命错误，直接返回
func (ctx *Context) Prepare() error {
	cfg := ctx.cfg
	var start, goal planner.Pose
	if len(cfg.Scenario.Waypoints) > 0 {
		first := cfg.Scenario.Waypoints[0]
		last := cfg.Scenario.Waypoints[len(cfg.Scenario.Waypoints)-1]
		start = planner.Pose{X: first.X, Y: first.Y, Theta: first.Theta}
		goal = planner.Pose{X: last.X, Y: last.Y, Theta: last.Theta}
	}
	raw, err := ctx.planner.Plan(start, goal)
	if err != nil {
		return fmt.Errorf("task: plan: %w", err)
	}

	filtered := trajectory.Filter(raw, cfg.Trajectory.MinWaypointDistance)
	if len(filtered) < 2 {
		return fmt.Errorf("task: degenerate plan with %d distinct waypoints", len(filtered))
	}
	smoothed, err := trajectory.Smooth(filtered, cfg.Trajectory.MaxCurvature)
	if err != nil {
		return fmt.Errorf("task: smooth: %w", err)
	}

	distances := trajectory.CumulativeDistances(smoothed)
	curvatures := trajectory.Curvatures(smoothed)
	velocities := trajectory.GenerateVelocityProfile(distances, curvatures, trajectory.VelocityLimits{
		VMax:    cfg.Vehicle.MaxSpeed,
		AMax:    cfg.Vehicle.MaxAccel,
		DMax:    cfg.Vehicle.MaxDecel,
		ALatMax: cfg.Vehicle.MaxLatAccel,
	})
	times, duration := trajectory.TimeProfile(distances, velocities)
	dt := cfg.Control.Step.Interval
	ctx.trajectory, err = trajectory.GenerateTimedTrajectory(
		smoothed, times, duration, duration+cfg.Scenario.HoldTime,
		dt, cfg.Vehicle.Wheelbase, cfg.Vehicle.MaxSteer,
	)
	if err != nil {
		return fmt.Errorf("task: timed trajectory: %w", err)
	}
	log.Infof("trajectory ready: %.1fm over %.1fs (%d ticks)",
		distances[len(distances)-1], duration, ctx.trajectory.Len())

	ctx.controller, err = buildController(cfg, ctx.trajectory)
	if err != nil {
		return err
	}

	startPose := cfg.Scenario.Start
	if startPose == nil {
		startPose = &config.Pose{X: smoothed[0].X, Y: smoothed[0].Y, Theta: smoothed[0].Theta}
	}
	ctx.vehicle = vehicle.New(cfg.Vehicle.Wheelbase, startPose.X, startPose.Y, startPose.Theta)
	if cfg.Scenario.NoiseStd > 0 {
		ctx.vehicle.WithNoise(cfg.Scenario.NoiseStd, randengine.New(cfg.Scenario.Seed))
	}
	ctx.clock = clock.New(cfg.Control.Step, int32(ctx.trajectory.Len()))
	return nil
}

// Run 执行完整的泊车机动
// 功能：批处理轨迹生成后进入定频控制循环直到时间区间结束
func (ctx *Context) Run() (*Result, error) {
	if ctx.trajectory == nil {
		if err := ctx.Prepare(); err != nil {
			return nil, err
		}
	}
	var records [][]string
	var cmd controller.Command
	ticks := 0
	for ; !ctx.clock.Done(); ctx.clock.Tick() {
		ref := controller.RefFromPoint(ctx.trajectory.At(int(ctx.clock.InternalStep)))
		state := controller.State{
			X: ctx.vehicle.X, Y: ctx.vehicle.Y,
			Theta: ctx.vehicle.Theta, V: ctx.vehicle.V,
		}
		cmd = ctx.controller.Update(state, ref)
		ctx.vehicle.Step(cmd.V, cmd.Phi, ctx.clock.DT)
		ticks++
		if ctx.cfg.Scenario.Output != "" {
			records = append(records, []string{
				strconv.FormatFloat(ctx.clock.T, 'f', 2, 64),
				strconv.FormatFloat(state.X, 'f', 4, 64),
				strconv.FormatFloat(state.Y, 'f', 4, 64),
				strconv.FormatFloat(state.Theta, 'f', 4, 64),
				strconv.FormatFloat(ref.X, 'f', 4, 64),
				strconv.FormatFloat(ref.Y, 'f', 4, 64),
				strconv.FormatFloat(cmd.V, 'f', 4, 64),
				strconv.FormatFloat(cmd.Phi, 'f', 4, 64),
				ctx.controller.Phase().String(),
			})
		}
	}

	goal := ctx.trajectory.At(ctx.trajectory.Len() - 1)
	res := &Result{
		Ticks:              ticks,
		Duration:           ctx.trajectory.Duration,
		FinalPositionError: math.Hypot(ctx.vehicle.X-goal.X, ctx.vehicle.Y-goal.Y),
		FinalHeadingError:  math.Abs(numeric.WrapAngle(ctx.vehicle.Theta - goal.Theta)),
		FinalCommand:       cmd,
	}
	log.Infof("maneuver finished: %d ticks, final position error %.3fm, heading error %.3frad (%s)",
		res.Ticks, res.FinalPositionError, res.FinalHeadingError, ctx.controller.Phase())
	if m, ok := ctx.controller.(*controller.MPC); ok && !m.SolverOK() {
		log.Warnf("mpc solver degraded on the last tick, proportional fallback was active")
	}

	if ctx.cfg.Scenario.Output != "" {
		if err := writeRunLog(ctx.cfg.Scenario.Output, records); err != nil {
			return res, err
		}
	}
	return res, nil
}

// buildController 按配置构造控制器
func buildController(cfg config.Config, traj *trajectory.TimedTrajectory) (controller.Controller, error) {
	params := controller.ParamsFromConfig(cfg.Controller, cfg.Vehicle, cfg.Control.Step.Interval)
	switch cfg.Controller.Type {
	case config.ControllerHybrid:
		return controller.NewHybrid(params), nil
	case config.ControllerPurePursuit:
		return controller.NewPurePursuit(params, traj), nil
	case config.ControllerMPC:
		return controller.NewMPC(params), nil
	case config.ControllerStanley:
		return controller.NewStanley(params), nil
	default:
		return nil, fmt.Errorf("task: unknown controller type %q", cfg.Controller.Type)
	}
}

// writeRunLog 把运行记录写出为CSV
// 说明：轨迹与参数的持久化属外部事务，这里只提供离线检查用的运行记录
func writeRunLog(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("task: create run log: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := []string{"t", "x", "y", "theta", "ref_x", "ref_y", "cmd_v", "cmd_phi", "phase"}
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
