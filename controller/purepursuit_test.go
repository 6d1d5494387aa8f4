package controller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/parksim-oss/controller"
	"github.com/tsinghua-fib-lab/parksim-oss/trajectory"
)

// straightTrajectory 沿x轴的匀速测试轨迹（10米，1米/秒）
func straightTrajectory() *trajectory.TimedTrajectory {
	n := 101
	points := make([]trajectory.TrajectoryPoint, n)
	for i := range points {
		points[i] = trajectory.TrajectoryPoint{
			T: float64(i) * 0.1,
			X: float64(i) * 0.1,
			VX: 1,
		}
	}
	points[0].VX = 0
	points[n-1].VX = 0
	return &trajectory.TimedTrajectory{Points: points, Duration: 10, DT: 0.1}
}

func TestPurePursuitPhaseProgression(t *testing.T) {
	pp := controller.NewPurePursuit(controller.DefaultParams(), straightTrajectory())

	// 远离终点：跟踪阶段，正向速度
	cmd := pp.Update(controller.State{X: 0}, controller.Reference{})
	assert.Equal(t, controller.PhaseTracking, pp.Phase())
	assert.Greater(t, cmd.V, 0.0)

	// 距终点1.5米：接近阶段
	pp.Update(controller.State{X: 8.5}, controller.Reference{})
	assert.Equal(t, controller.PhaseApproaching, pp.Phase())

	// 阶段单调：回到远处也不允许回退
	pp.Update(controller.State{X: 0}, controller.Reference{})
	assert.Equal(t, controller.PhaseApproaching, pp.Phase())

	// 距终点0.5米：对准阶段
	pp.Update(controller.State{X: 9.5}, controller.Reference{})
	assert.Equal(t, controller.PhaseAligning, pp.Phase())

	// 进入泊车完成：指令为零且为终态
	cmd = pp.Update(controller.State{X: 9.9}, controller.Reference{})
	assert.Equal(t, controller.PhaseParked, pp.Phase())
	assert.Equal(t, controller.Command{}, cmd)

	// 终态锁定：即使移开也保持零指令
	cmd = pp.Update(controller.State{X: 0}, controller.Reference{})
	assert.Equal(t, controller.Command{}, cmd)
	assert.Equal(t, controller.PhaseParked, pp.Phase())
}

func TestPurePursuitSteering(t *testing.T) {
	// 偏在路径右下方：前视目标在左前方，正向转向
	pp := controller.NewPurePursuit(controller.DefaultParams(), straightTrajectory())
	cmd := pp.Update(controller.State{X: 0, Y: -1}, controller.Reference{})
	assert.Greater(t, cmd.Phi, 0.0)
	assert.Greater(t, cmd.V, 0.0)

	// 在路径上沿切向行驶：转向接近0
	pp = controller.NewPurePursuit(controller.DefaultParams(), straightTrajectory())
	cmd = pp.Update(controller.State{X: 2, V: 1}, controller.Reference{})
	assert.InDelta(t, 0, cmd.Phi, 1e-9)
}

func TestPurePursuitCreep(t *testing.T) {
	// 对准阶段以受限的爬行速度接近终点
	pp := controller.NewPurePursuit(controller.DefaultParams(), straightTrajectory())
	var cmd controller.Command
	for i := 0; i < 10; i++ {
		cmd = pp.Update(controller.State{X: 9.5}, controller.Reference{})
	}
	assert.Equal(t, controller.PhaseAligning, pp.Phase())
	assert.Greater(t, cmd.V, 0.0)
	assert.LessOrEqual(t, cmd.V, 0.5+1e-9)
}

func TestPurePursuitInvalidTrajectory(t *testing.T) {
	assert.Panics(t, func() {
		controller.NewPurePursuit(controller.DefaultParams(), nil)
	})
	assert.Panics(t, func() {
		controller.NewPurePursuit(controller.DefaultParams(), &trajectory.TimedTrajectory{})
	})
}

func TestPurePursuitReset(t *testing.T) {
	pp := controller.NewPurePursuit(controller.DefaultParams(), straightTrajectory())
	pp.Update(controller.State{X: 9.9}, controller.Reference{})
	assert.Equal(t, controller.PhaseParked, pp.Phase())

	pp.Reset()
	assert.Equal(t, controller.PhaseTracking, pp.Phase())
	cmd := pp.Update(controller.State{X: 0}, controller.Reference{})
	assert.Greater(t, cmd.V, 0.0)
}
