package numeric_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/numeric"
)

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 0, numeric.WrapAngle(0), 1e-12)
	assert.InDelta(t, math.Pi, numeric.WrapAngle(math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, numeric.WrapAngle(-math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, numeric.WrapAngle(3*math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi/2, numeric.WrapAngle(3*math.Pi/2), 1e-12)
	assert.InDelta(t, 0.5, numeric.WrapAngle(0.5+4*math.Pi), 1e-12)

	// test: 值域与幂等性
	for theta := -20.0; theta <= 20.0; theta += 0.37 {
		w := numeric.WrapAngle(theta)
		assert.Greater(t, w, -math.Pi)
		assert.LessOrEqual(t, w, math.Pi)
		assert.InDelta(t, w, numeric.WrapAngle(w), 1e-12)
	}
}

func TestUnwrapAngles(t *testing.T) {
	assert.Nil(t, numeric.UnwrapAngles(nil))

	// ±π附近来回跳变的序列，解跳变后相邻差必须小于π
	angles := []float64{3.0, -3.0, 3.0, -3.0}
	out := numeric.UnwrapAngles(angles)
	assert.Len(t, out, len(angles))
	assert.Equal(t, angles[0], out[0])
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, math.Abs(out[i]-out[i-1]), math.Pi+1e-12)
		// 解跳变只改变2π的整数倍
		assert.InDelta(t, numeric.WrapAngle(angles[i]), numeric.WrapAngle(out[i]), 1e-12)
	}

	// 已经连续的序列保持不变
	smooth := []float64{0, 0.1, 0.2, 0.3}
	assert.InDeltaSlice(t, smooth, numeric.UnwrapAngles(smooth), 1e-12)
}

func TestMovingAverage(t *testing.T) {
	// 常数序列不变
	xs := []float64{2, 2, 2, 2, 2}
	assert.InDeltaSlice(t, xs, numeric.MovingAverage(xs, 3), 1e-12)

	// 两端窗口截断
	out := numeric.MovingAverage([]float64{0, 3, 6}, 3)
	assert.InDeltaSlice(t, []float64{1.5, 3, 4.5}, out, 1e-12)

	// window<1退化为恒等
	assert.InDeltaSlice(t, []float64{1, 2, 3}, numeric.MovingAverage([]float64{1, 2, 3}, 0), 1e-12)
}

func TestGaussianSmooth(t *testing.T) {
	// 常数序列不变（边界权重归一化）
	xs := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	assert.InDeltaSlice(t, xs, numeric.GaussianSmooth(xs, 2), 1e-12)

	// sigma<=0退化为拷贝
	ys := []float64{1, 2, 3}
	out := numeric.GaussianSmooth(ys, 0)
	assert.InDeltaSlice(t, ys, out, 1e-12)
	out[0] = 100
	assert.Equal(t, 1.0, ys[0])

	// 平滑降低序列的最大绝对差分
	spike := []float64{0, 0, 0, 10, 0, 0, 0}
	smoothed := numeric.GaussianSmooth(spike, 1)
	assert.Len(t, smoothed, len(spike))
	assert.Less(t, maxAbsDiff(smoothed), maxAbsDiff(spike))
}

func maxAbsDiff(xs []float64) float64 {
	worst := 0.0
	for i := 1; i < len(xs); i++ {
		worst = math.Max(worst, math.Abs(xs[i]-xs[i-1]))
	}
	return worst
}

func TestGradient(t *testing.T) {
	// 线性序列的导数为常数（含两端的单侧差分）
	xs := []float64{0, 2, 4, 6, 8}
	out := numeric.Gradient(xs, 0.5)
	assert.InDeltaSlice(t, []float64{4, 4, 4, 4, 4}, out, 1e-12)

	// 退化输入
	assert.InDeltaSlice(t, []float64{0}, numeric.Gradient([]float64{1}, 0.1), 1e-12)
}

func TestLinspace(t *testing.T) {
	out := numeric.Linspace(0, 10, 5)
	assert.InDeltaSlice(t, []float64{0, 2.5, 5, 7.5, 10}, out, 1e-12)
	assert.Equal(t, 10.0, out[len(out)-1])
	assert.Len(t, numeric.Linspace(1, 2, 1), 1)
}

func TestPCHIP(t *testing.T) {
	xs := []float64{0, 1, 2, 4}
	ys := []float64{0, 1, 4, 5}
	p, err := numeric.NewPCHIP(xs, ys)
	assert.NoError(t, err)

	// 节点处精确插值
	for i := range xs {
		assert.InDelta(t, ys[i], p.Predict(xs[i]), 1e-9)
	}
	// 保形：单调数据不过冲
	for x := 0.0; x <= 4.0; x += 0.05 {
		v := p.Predict(x)
		assert.GreaterOrEqual(t, v, -1e-9)
		assert.LessOrEqual(t, v, 5+1e-9)
	}
	// 区间外按端点取值
	assert.InDelta(t, 0, p.Predict(-1), 1e-9)
	assert.InDelta(t, 5, p.Predict(10), 1e-9)

	// 非法样本
	_, err = numeric.NewPCHIP([]float64{0, 1}, []float64{0})
	assert.Error(t, err)
	_, err = numeric.NewPCHIP([]float64{0}, []float64{0})
	assert.Error(t, err)
}
