package trajectory

import "math"

// Curvatures 计算路径各点的离散曲率
// 功能：对每个内部点用相邻三点的Menger曲率估计，端点取相邻内部点的值
// 参数：waypoints-路径点序列
// 返回：与输入等长的曲率序列（1/米，非负）
// 说明：数值退化（三点共线、间距过小）一律取0，保证输出有限
func Curvatures(waypoints []Waypoint) []float64 {
	n := len(waypoints)
	out := make([]float64, n)
	if n < 3 {
		return out
	}
	for i := 1; i < n-1; i++ {
		out[i] = menger(waypoints[i-1], waypoints[i], waypoints[i+1])
	}
	out[0] = out[1]
	out[n-1] = out[n-2]
	return out
}

// menger 三点Menger曲率
// 算法说明：
// 1. 海伦公式计算三点围成的三角形面积
// 2. κ = 4·面积 / (三边长度之积)
// 3. 边长积接近0（重合点）或结果非有限时取0
func menger(a, b, c Waypoint) float64 {
	la := a.DistanceTo(b)
	lb := a.DistanceTo(c)
	lc := b.DistanceTo(c)
	prod := la * lb * lc
	if prod < 1e-9 {
		return 0
	}
	sp := (la + lb + lc) / 2
	area := math.Sqrt(math.Max(0, sp*(sp-la)*(sp-lb)*(sp-lc)))
	k := 4 * area / prod
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return 0
	}
	return k
}
