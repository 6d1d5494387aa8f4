// 车辆运动学仿真包，为闭环运行提供自行车模型被控对象
package vehicle

import (
	"math"

	"github.com/tsinghua-fib-lab/parksim-oss/utils/numeric"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/randengine"
)

// Vehicle 运动学自行车模型被控对象
// 功能：按控制指令积分车辆位姿，可选注入执行器速度噪声
// 说明：仅供闭环运行与场景测试使用，控制器从不直接访问被控对象
type Vehicle struct {
	X     float64 // 位置x（米）
	Y     float64 // 位置y（米）
	Theta float64 // 航向角（弧度）
	V     float64 // 当前速度（米/秒）

	wheelbase float64
	noiseStd  float64
	generator *randengine.Engine
}

// New 创建车辆被控对象
// 参数：wheelbase-轴距，x/y/theta-初始位姿
func New(wheelbase, x, y, theta float64) *Vehicle {
	return &Vehicle{X: x, Y: y, Theta: theta, wheelbase: wheelbase}
}

// WithNoise 启用执行器速度噪声
// 参数：std-噪声标准差（米/秒），generator-随机数引擎
func (v *Vehicle) WithNoise(std float64, generator *randengine.Engine) *Vehicle {
	v.noiseStd = std
	v.generator = generator
	return v
}

// Step 按指令推进一个控制周期
// 算法说明：ẋ=v·cosθ、ẏ=v·sinθ、θ̇=v·tanφ/L，前向欧拉积分
func (v *Vehicle) Step(vCmd, phi, dt float64) {
	if v.noiseStd > 0 && v.generator != nil && math.Abs(vCmd) > 1e-3 {
		vCmd += v.generator.ClampedNorm(v.noiseStd, 3*v.noiseStd)
	}
	v.X += vCmd * math.Cos(v.Theta) * dt
	v.Y += vCmd * math.Sin(v.Theta) * dt
	v.Theta = numeric.WrapAngle(v.Theta + vCmd*math.Tan(phi)/v.wheelbase*dt)
	v.V = vCmd
}
