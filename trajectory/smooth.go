package trajectory

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/numeric"
)

const (
	minDenseSamples   = 1000 // 密集重采样的最少样本数
	densePerWaypoint  = 50   // 每个输入路径点对应的密集样本数
	maxOutputSamples  = 500  // 平滑输出的最大路径点数
	minSmoothWindow   = 5    // 滑动平均的最小窗口
	curvatureRelSlack = 1.05 // 曲率软约束的报告容差
)

// Smooth 曲率约束的路径平滑
// 功能：对过滤后的路径做高密度保形插值与滑动平均平滑，重算航向并降采样
// 参数：waypoints-过滤后的路径点（相邻点间距大于0），maxCurvature-目标曲率上限（1/米）
// 返回：平滑后的路径点序列（不超过500点）
// 算法说明：
// 1. 以累计弧长为参数对x、y做保形分段三次插值，密集重采样（≥1000或50倍输入点数）
// 2. 对x、y独立做窗口约为n/100（最小5）的滑动平均
// 3. 由平滑后的切向量重算航向（atan2），解跳变后用双倍窗口再平滑
// 4. 由航向对弧长的导数重算曲率，仅用于报告：超过maxCurvature不做硬性修正
// 5. 均匀降采样到不超过500个点
// 说明：maxCurvature是软目标，平滑只降低而不保证约束曲率；违反时记录告警供调参
func Smooth(waypoints []Waypoint, maxCurvature float64) ([]Waypoint, error) {
	n := len(waypoints)
	if n == 0 {
		return nil, fmt.Errorf("trajectory: smooth: empty waypoint sequence")
	}
	if n < 3 {
		out := make([]Waypoint, n)
		copy(out, waypoints)
		return out, nil
	}
	s := CumulativeDistances(waypoints)
	// 弧长参数必须严格递增，重合点在Filter阶段应当已被移除
	ss := make([]float64, 0, n)
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i, w := range waypoints {
		if i > 0 && s[i] <= ss[len(ss)-1] {
			continue
		}
		ss = append(ss, s[i])
		xs = append(xs, w.X)
		ys = append(ys, w.Y)
	}
	if len(ss) < 2 {
		return nil, fmt.Errorf("trajectory: smooth: degenerate path, all waypoints coincide")
	}
	px, err := numeric.NewPCHIP(ss, xs)
	if err != nil {
		return nil, err
	}
	py, err := numeric.NewPCHIP(ss, ys)
	if err != nil {
		return nil, err
	}

	dense := max(minDenseSamples, densePerWaypoint*n)
	grid := numeric.Linspace(0, ss[len(ss)-1], dense)
	dx := parallel.GoMap(grid, func(t float64) float64 { return px.Predict(t) })
	dy := parallel.GoMap(grid, func(t float64) float64 { return py.Predict(t) })

	window := max(minSmoothWindow, dense/100)
	dx = numeric.MovingAverage(dx, window)
	dy = numeric.MovingAverage(dy, window)

	// 由平滑后的切向量重算航向
	ds := grid[1] - grid[0]
	gx := numeric.Gradient(dx, ds)
	gy := numeric.Gradient(dy, ds)
	theta := make([]float64, dense)
	for i := range theta {
		theta[i] = math.Atan2(gy[i], gx[i])
	}
	theta = numeric.UnwrapAngles(theta)
	theta = numeric.MovingAverage(theta, 2*window)

	reportCurvature(theta, ds, maxCurvature)

	step := (dense + maxOutputSamples - 1) / maxOutputSamples
	out := make([]Waypoint, 0, maxOutputSamples+1)
	last := -1
	for i := 0; i < dense; i += step {
		out = append(out, Waypoint{X: dx[i], Y: dy[i], Theta: numeric.WrapAngle(theta[i])})
		last = i
	}
	if last != dense-1 {
		out = append(out, Waypoint{X: dx[dense-1], Y: dy[dense-1], Theta: numeric.WrapAngle(theta[dense-1])})
	}
	return out, nil
}

// reportCurvature 曲率软约束报告
// 功能：由航向导数估计曲率，统计超过软约束的采样数并记录告警
func reportCurvature(theta []float64, ds, maxCurvature float64) {
	if maxCurvature <= 0 {
		return
	}
	kappa := numeric.Gradient(theta, ds)
	violations := 0
	worst := 0.0
	for _, k := range kappa {
		k = math.Abs(k)
		if math.IsNaN(k) || math.IsInf(k, 0) {
			continue
		}
		if k > maxCurvature*curvatureRelSlack {
			violations++
			worst = math.Max(worst, k)
		}
	}
	if violations > 0 {
		log.Warnf("smooth: curvature target %.3f exceeded at %d samples (worst %.3f)",
			maxCurvature, violations, worst)
	}
}
