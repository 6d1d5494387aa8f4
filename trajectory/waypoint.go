// 轨迹生成包，将规划器输出的原始路径点加工为定频时间索引参考轨迹
//
// 处理流程严格单向：原始路径点 → 去重 → 曲率约束平滑 → 弧长/曲率 →
// 速度剖面 → 时间参数化 → 定频参考轨迹
package trajectory

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
)

// Waypoint 参考路径点
// 功能：平面坐标系下的位姿采样（米、弧度）
type Waypoint struct {
	X     float64 // 位置x（米）
	Y     float64 // 位置y（米）
	Theta float64 // 航向角（弧度）
}

// Point 转换为二维几何点
func (w Waypoint) Point() geometry.Point {
	return geometry.Point{X: w.X, Y: w.Y}
}

// DistanceTo 计算到另一路径点的欧氏距离
func (w Waypoint) DistanceTo(o Waypoint) float64 {
	return math.Hypot(w.X-o.X, w.Y-o.Y)
}

// Filter 路径点去重
// 功能：移除间距过小的相邻路径点，保证后续弧长参数化严格单调
// 参数：waypoints-有序路径点序列，minDistance-保留点之间的最小间距（米）
// 返回：过滤后的路径点序列（至少保留第一个点）
// 算法说明：
// 1. 无条件保留第一个路径点
// 2. 之后的点仅当与最近一个保留点的距离不小于minDistance时保留
// 说明：对已过滤序列再次过滤为幂等操作，不会产生进一步删除
func Filter(waypoints []Waypoint, minDistance float64) []Waypoint {
	if len(waypoints) == 0 {
		return nil
	}
	kept := make([]Waypoint, 0, len(waypoints))
	kept = append(kept, waypoints[0])
	for _, w := range waypoints[1:] {
		if w.DistanceTo(kept[len(kept)-1]) >= minDistance {
			kept = append(kept, w)
		}
	}
	if removed := len(waypoints) - len(kept); removed > 0 {
		log.Debugf("filter: removed %d waypoints closer than %.3fm", removed, minDistance)
	}
	return kept
}

// CumulativeDistances 计算路径的累计弧长
// 功能：返回每个路径点处的累计弧长s，s[0]=0且单调不减
func CumulativeDistances(waypoints []Waypoint) []float64 {
	if len(waypoints) == 0 {
		return nil
	}
	line := lo.Map(waypoints, func(w Waypoint, _ int) geometry.Point { return w.Point() })
	return geometry.GetPolylineLengths2D(line)
}
