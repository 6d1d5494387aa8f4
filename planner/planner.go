// 规划器协作方接口包
//
// 全局路径搜索（RRT*类规划器）与占据代价地图属外部协作方，
// 本包只定义其数据契约：规划器提供起止位姿间的有序路径点序列，
// 代价地图侧只消费车辆外形参数。路径的无碰撞性由规划器保证，
// 核心不做复查
package planner

import (
	"errors"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/parksim-oss/trajectory"
)

// ErrEmptyPlan 规划器返回空路径
// 说明：对本次机动是致命错误，控制核心不得在空参考上运行
var ErrEmptyPlan = errors.New("planner: empty path")

// Pose 平面位姿
type Pose struct {
	X     float64 // 位置x（米）
	Y     float64 // 位置y（米）
	Theta float64 // 航向角（弧度）
}

// Planner 全局路径规划器契约
// 功能：给出起止位姿间有序、无碰撞的路径点序列
type Planner interface {
	Plan(start, goal Pose) ([]trajectory.Waypoint, error)
}

// Footprint 车辆外形参数
// 说明：仅供规划与可视化协作方使用，控制器不消费外形
type Footprint struct {
	Length       float64 // 车长（米）
	Width        float64 // 车宽（米）
	Wheelbase    float64 // 轴距（米）
	RearOverhang float64 // 后悬长度（米）
}

// Polygon 计算给定位姿下的车辆外形多边形（逆时针）
// 参数：pose-后轴中心位姿，inflation-碰撞膨胀半径（米）
func (f Footprint) Polygon(pose Pose, inflation float64) []geometry.Point {
	halfW := f.Width/2 + inflation
	front := f.Length - f.RearOverhang + inflation
	rear := -(f.RearOverhang + inflation)
	sin, cos := math.Sincos(pose.Theta)
	corners := [][2]float64{
		{front, -halfW}, {front, halfW}, {rear, halfW}, {rear, -halfW},
	}
	out := make([]geometry.Point, 0, len(corners))
	for _, c := range corners {
		out = append(out, geometry.Point{
			X: pose.X + c[0]*cos - c[1]*sin,
			Y: pose.Y + c[0]*sin + c[1]*cos,
		})
	}
	return out
}

// StaticPlanner 静态路径规划器
// 功能：直接提供预先计算好的路径点序列（来自配置或离线规划结果）
type StaticPlanner struct {
	waypoints []trajectory.Waypoint
}

// NewStatic 创建静态规划器
func NewStatic(waypoints []trajectory.Waypoint) *StaticPlanner {
	return &StaticPlanner{waypoints: waypoints}
}

// Plan 返回预置路径点
// 说明：起止位姿参数仅为满足契约，静态规划器不使用
func (p *StaticPlanner) Plan(_, _ Pose) ([]trajectory.Waypoint, error) {
	if len(p.waypoints) == 0 {
		return nil, ErrEmptyPlan
	}
	out := make([]trajectory.Waypoint, len(p.waypoints))
	copy(out, p.waypoints)
	return out, nil
}
