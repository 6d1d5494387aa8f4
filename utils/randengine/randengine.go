// 随机数引擎，包装了golang.org/x/exp/rand，提供了场景扰动与随机化测试所需的随机数生成方法
package randengine

import (
	"flag"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能，用于执行器噪声注入与随机化测试
// 说明：基于golang.org/x/exp/rand库，固定种子时序列完全可复现
type Engine struct {
	*rand.Rand            // 底层随机数生成器
	mtx        sync.Mutex // 互斥锁，用于线程安全操作
}

// New 创建随机数引擎
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改代码的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Uniform 在[low, high)范围内生成均匀分布的随机数（非线程安全）
func (e *Engine) Uniform(low, high float64) float64 {
	return low + (high-low)*e.Float64()
}

// ClampedNorm 生成截断正态分布的随机数（非线程安全）
// 功能：生成均值为0、标准差为std的正态随机数，并截断到±bound
// 说明：用于执行器噪声，截断避免偶发的大幅指令扰动
func (e *Engine) ClampedNorm(std, bound float64) float64 {
	return lo.Clamp(std*e.NormFloat64(), -bound, bound)
}

// Float64Safe 随机生成浮点数（线程安全）
// 返回：[0.0, 1.0)范围内的随机浮点数
func (e *Engine) Float64Safe() float64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Float64()
}
