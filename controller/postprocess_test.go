package controller_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/parksim-oss/controller"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/randengine"
)

// TestCommandRateLimit 指令变化率限制对四种控制器统一成立
// 说明：参考与状态随机跳变时，相邻tick的指令差不得超过
// MaxAccel·DT与MaxPhiRate·DT；参考速度保持非零以避开终点安全覆盖
func TestCommandRateLimit(t *testing.T) {
	params := controller.DefaultParams()
	controllers := []controller.Controller{
		controller.NewHybrid(params),
		controller.NewPurePursuit(params, straightTrajectory()),
		controller.NewMPC(params),
		controller.NewStanley(params),
	}
	maxDV := params.MaxAccel*params.DT + 1e-9
	maxDPhi := params.MaxPhiRate*params.DT + 1e-9

	for _, c := range controllers {
		engine := randengine.New(43)
		prev := controller.Command{}
		for i := 0; i < 100; i++ {
			s := controller.State{
				X:     engine.Uniform(0, 5),
				Y:     engine.Uniform(-1, 1),
				Theta: engine.Uniform(-0.5, 0.5),
				V:     prev.V,
			}
			r := controller.Reference{
				X:     engine.Uniform(0, 5),
				Y:     engine.Uniform(-1, 1),
				Theta: engine.Uniform(-0.3, 0.3),
				Phi:   engine.Uniform(-0.6, 0.6),
				VX:    engine.Uniform(0.5, 2),
				Omega: engine.Uniform(-0.5, 0.5),
			}
			cmd := c.Update(s, r)
			assert.LessOrEqualf(t, math.Abs(cmd.V-prev.V), maxDV,
				"%s: tick %d velocity rate", c.Name(), i)
			assert.LessOrEqualf(t, math.Abs(cmd.Phi-prev.Phi), maxDPhi,
				"%s: tick %d steer rate", c.Name(), i)
			// 饱和限制
			assert.GreaterOrEqual(t, cmd.V, params.VMin-1e-9)
			assert.LessOrEqual(t, cmd.V, params.VMax+1e-9)
			assert.LessOrEqual(t, math.Abs(cmd.Phi), params.PhiMax+1e-9)
			prev = cmd
		}
	}
}

// TestCommandFiniteGuard 非有限参考不产生非有限指令
func TestCommandFiniteGuard(t *testing.T) {
	params := controller.DefaultParams()
	for _, c := range []controller.Controller{
		controller.NewHybrid(params),
		controller.NewMPC(params),
		controller.NewStanley(params),
	} {
		cmd := c.Update(
			controller.State{X: 1},
			controller.Reference{Theta: math.NaN(), VX: 1},
		)
		assert.False(t, math.IsNaN(cmd.V), c.Name())
		assert.False(t, math.IsNaN(cmd.Phi), c.Name())
	}
}
