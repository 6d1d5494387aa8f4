// 数值工具包，提供角度处理、离散滤波、数值微分与保形插值等基础算法
package numeric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// WrapAngle 将角度规范化到(-π, π]区间
// 功能：消除角度的2π周期性，保证同一方向只有唯一表示
func WrapAngle(theta float64) float64 {
	theta = math.Mod(theta+math.Pi, 2*math.Pi)
	if theta <= 0 {
		theta += 2 * math.Pi
	}
	return theta - math.Pi
}

// UnwrapAngles 解除角度序列的跳变
// 功能：将相邻角度差限制在(-π, π]内累加，得到连续的角度序列
// 说明：平滑与数值微分必须在连续角度上进行，否则±π处的跳变会产生尖峰
func UnwrapAngles(angles []float64) []float64 {
	if len(angles) == 0 {
		return nil
	}
	out := make([]float64, len(angles))
	out[0] = angles[0]
	for i := 1; i < len(angles); i++ {
		out[i] = out[i-1] + WrapAngle(angles[i]-angles[i-1])
	}
	return out
}

// MovingAverage 居中滑动平均滤波
// 功能：对序列做窗口为window的居中平均，序列两端窗口自动截断
func MovingAverage(xs []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	half := window / 2
	out := make([]float64, len(xs))
	for i := range xs {
		lo := max(0, i-half)
		hi := min(len(xs), i+half+1)
		sum := 0.0
		for _, v := range xs[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// GaussianSmooth 高斯卷积平滑
// 功能：用标准差为sigma（单位：采样点）的离散高斯核做卷积，核半径取3σ
// 说明：两端按实际覆盖的核权重归一化，不做补零，避免边界幅值塌陷
func GaussianSmooth(xs []float64, sigma float64) []float64 {
	if sigma <= 0 || len(xs) < 3 {
		out := make([]float64, len(xs))
		copy(out, xs)
		return out
	}
	radius := max(1, int(3*sigma))
	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
	}
	out := make([]float64, len(xs))
	for i := range xs {
		sum, weight := 0.0, 0.0
		for k, w := range kernel {
			j := i + k - radius
			if j < 0 || j >= len(xs) {
				continue
			}
			sum += w * xs[j]
			weight += w
		}
		out[i] = sum / weight
	}
	return out
}

// Gradient 等间隔序列的数值微分
// 功能：内部点用中心差分，两端用单侧差分
func Gradient(xs []float64, dt float64) []float64 {
	n := len(xs)
	out := make([]float64, n)
	if n < 2 || dt <= 0 {
		return out
	}
	out[0] = (xs[1] - xs[0]) / dt
	out[n-1] = (xs[n-1] - xs[n-2]) / dt
	for i := 1; i < n-1; i++ {
		out[i] = (xs[i+1] - xs[i-1]) / (2 * dt)
	}
	return out
}

// Linspace 生成[a, b]上均匀分布的n个采样点
func Linspace(a, b float64, n int) []float64 {
	if n < 2 {
		return []float64{a}
	}
	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	out[n-1] = b
	return out
}

// PCHIP 保形分段三次插值器
// 功能：包装gonum的Fritsch-Butland插值，保证插值结果不产生过冲
// 说明：轨迹的位置与航向插值都要求保形，普通三次样条会在急弯处振荡
type PCHIP struct {
	fb         interp.FritschButland
	xmin, xmax float64
}

// NewPCHIP 用给定样本构造插值器
// 参数：xs-严格递增的自变量序列，ys-对应的函数值
// 返回：插值器与可能的构造错误（样本不足或xs非严格递增）
func NewPCHIP(xs, ys []float64) (*PCHIP, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("numeric: pchip sample length mismatch: %d != %d", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("numeric: pchip needs at least 2 samples, got %d", len(xs))
	}
	p := &PCHIP{xmin: xs[0], xmax: xs[len(xs)-1]}
	if err := p.fb.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("numeric: pchip fit: %w", err)
	}
	return p, nil
}

// Predict 计算插值点x处的函数值
// 说明：x超出样本区间时按端点取值，不做外推
func (p *PCHIP) Predict(x float64) float64 {
	if x < p.xmin {
		x = p.xmin
	} else if x > p.xmax {
		x = p.xmax
	}
	return p.fb.Predict(x)
}
