package trajectory

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/numeric"
)

const (
	curvatureEps        = 1e-6 // 曲率限速的曲率下限，低于该值视为直线
	minRampSamples      = 5    // 端部斜坡的最少采样数
	rampFraction        = 50   // 端部斜坡长度 = n/rampFraction
	velocitySmoothSigma = 2.0  // 速度剖面高斯平滑的标准差（采样点）
)

// VelocityLimits 速度剖面的运动学限制
type VelocityLimits struct {
	VMax    float64 // 最大速度（米/秒）
	AMax    float64 // 最大加速度（米/秒²）
	DMax    float64 // 最大减速度（米/秒²，正值）
	ALatMax float64 // 最大侧向加速度（米/秒²）
}

// GenerateVelocityProfile 生成路径点速度剖面
// 功能：在曲率限速与前后向加减速限制下为每个路径点分配目标速度
// 参数：distances-累计弧长，curvatures-各点曲率，limits-运动学限制
// 返回：与路径点等长的速度序列，保证首末速度为0
// 算法说明：
// 1. 曲率限速：v ≤ sqrt(aLatMax/κ)（κ>1e-6时），否则取vMax
// 2. 前向遍历（起点速度0）：v[i] = min(v[i], sqrt(v[i-1]²+2·aMax·Δs))
// 3. 后向遍历（终点速度0）：v[i] = min(v[i], sqrt(v[i+1]²+2·dMax·Δs))
// 4. 高斯平滑，再对首末约n/50（最少5）个采样做线性归零斜坡，最后硬性置零首末点
// 说明：顺序固定为 限速→限幅→平滑→斜坡→置零。平滑可能在内部重新引入
// 轻微的限幅违反，属可接受误差；端部斜坡与硬性置零只修正边界
func GenerateVelocityProfile(distances, curvatures []float64, limits VelocityLimits) []float64 {
	n := len(distances)
	if n == 0 {
		return nil
	}
	v := make([]float64, n)
	// 曲率限速
	for i := range v {
		v[i] = limits.VMax
		if i < len(curvatures) && curvatures[i] > curvatureEps {
			v[i] = math.Min(limits.VMax, math.Sqrt(limits.ALatMax/curvatures[i]))
		}
	}
	if n == 1 {
		v[0] = 0
		return v
	}
	// 前向加速度限制
	v[0] = 0
	for i := 1; i < n; i++ {
		ds := math.Max(0, distances[i]-distances[i-1])
		v[i] = math.Min(v[i], math.Sqrt(v[i-1]*v[i-1]+2*limits.AMax*ds))
	}
	// 后向减速度限制
	v[n-1] = 0
	for i := n - 2; i >= 0; i-- {
		ds := math.Max(0, distances[i+1]-distances[i])
		v[i] = math.Min(v[i], math.Sqrt(v[i+1]*v[i+1]+2*limits.DMax*ds))
	}
	// 平滑
	v = numeric.GaussianSmooth(v, velocitySmoothSigma)
	// 端部线性斜坡归零
	ramp := max(minRampSamples, n/rampFraction)
	ramp = min(ramp, n/2)
	for i := 0; i < ramp; i++ {
		scale := float64(i) / float64(ramp)
		v[i] = math.Min(v[i], v[i]*scale)
		v[n-1-i] = math.Min(v[n-1-i], v[n-1-i]*scale)
	}
	// 硬性置零
	v[0] = 0
	v[n-1] = 0
	for i := range v {
		v[i] = lo.Clamp(v[i], 0, limits.VMax)
	}
	return v
}
