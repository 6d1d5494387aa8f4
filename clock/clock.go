package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/parksim-oss/utils/config"
)

// Clock 控制循环时钟
// 功能：管理定频控制循环的时间推进与步数记账
// 说明：控制周期固定，当前时间恒等于步数×周期，不累积浮点漂移
type Clock struct {
	DT         float64 // 控制周期（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，循环区间[START, END)

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置，totalSteps-由轨迹时长推出的步数
// 说明：配置中total非零时以配置为准，否则采用轨迹时长推出的步数
func New(stepConfig config.ControlStep, totalSteps int32) *Clock {
	end := totalSteps
	if stepConfig.Total > 0 {
		end = stepConfig.Total
	}
	c := &Clock{
		DT:       stepConfig.Interval,
		END_STEP: end,
	}
	c.Init()
	return c
}

// Init 重置时钟状态到起始步
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Tick 推进一个控制周期
func (c *Clock) Tick() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Done 判断循环区间是否结束
func (c *Clock) Done() bool {
	return c.InternalStep >= c.END_STEP
}

// String 获取时钟的字符串表示（MM:SS.d）
func (c *Clock) String() string {
	t := c.T
	m := int(t / 60)
	t -= float64(m * 60)
	return fmt.Sprintf("%02d:%04.1f", m, t)
}
