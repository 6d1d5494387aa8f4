package controller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/parksim-oss/controller"
)

func TestStanleySteering(t *testing.T) {
	// 偏在参考路径右侧：前轴横向误差为正，向左转向
	c := controller.NewStanley(controller.DefaultParams())
	cmd := c.Update(controller.State{Y: -0.5}, controller.Reference{VX: 1})
	assert.Greater(t, cmd.Phi, 0.0)
	assert.Greater(t, cmd.V, 0.0)

	// 航向超前参考：反向修正
	c.Reset()
	cmd = c.Update(controller.State{Theta: 0.3}, controller.Reference{VX: 1})
	assert.Less(t, cmd.Phi, 0.0)

	// 无误差沿切向行驶：转向为0
	c.Reset()
	cmd = c.Update(controller.State{V: 1}, controller.Reference{VX: 1})
	assert.InDelta(t, 0, cmd.Phi, 1e-9)
}

func TestStanleyParkingComplete(t *testing.T) {
	c := controller.NewStanley(controller.DefaultParams())
	cmd := c.Update(controller.State{X: 0.25}, controller.Reference{})
	assert.Equal(t, 0.0, cmd.V)
	assert.Equal(t, 0.0, cmd.Phi)
	assert.Equal(t, controller.PhaseParked, c.Phase())

	// 残余航向误差仍被修正，速度保持为0
	cmd = c.Update(controller.State{X: 0.25, Theta: 0.2}, controller.Reference{})
	assert.Equal(t, 0.0, cmd.V)
	assert.Less(t, cmd.Phi, 0.0)
}

func TestStanleyDisplaced(t *testing.T) {
	// 参考已停但本车偏离：位置比例速度收敛
	c := controller.NewStanley(controller.DefaultParams())
	cmd := c.Update(controller.State{X: 2}, controller.Reference{})
	assert.Greater(t, cmd.V, 0.0)
	assert.NotEqual(t, controller.PhaseParked, c.Phase())
}
