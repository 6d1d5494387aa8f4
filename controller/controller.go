// 控制器包，实现消费定频参考轨迹的四种闭环跟踪控制律
//
// 四种控制器（混合多模态、纯跟踪、MPC、Stanley）遵循同一契约：
// 每个tick接收当前车辆状态与参考采样，返回饱和后的(速度, 前轮转角)指令。
// 控制器持有本次机动的私有状态（上一拍指令、阶段），不允许并发调用；
// 多车实例各自持有独立的控制器对象。
package controller

import (
	"math"

	"github.com/tsinghua-fib-lab/parksim-oss/trajectory"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/numeric"
)

// State 车辆当前状态
type State struct {
	X     float64 // 位置x（米）
	Y     float64 // 位置y（米）
	Theta float64 // 航向角（弧度）
	V     float64 // 当前速度（米/秒）
}

// Reference 当前tick的参考采样
type Reference struct {
	X     float64 // 期望位置x（米）
	Y     float64 // 期望位置y（米）
	Theta float64 // 期望航向角（弧度）
	Phi   float64 // 前轮转角前馈（弧度）
	VX    float64 // 期望速度x分量（米/秒）
	VY    float64 // 期望速度y分量（米/秒）
	Omega float64 // 期望航向角速度（弧度/秒）
}

// RefFromPoint 由参考轨迹采样构造控制器参考
func RefFromPoint(p trajectory.TrajectoryPoint) Reference {
	return Reference{
		X: p.X, Y: p.Y, Theta: p.Theta, Phi: p.Phi,
		VX: p.VX, VY: p.VY, Omega: p.Omega,
	}
}

// Speed 参考线速度
func (r Reference) Speed() float64 {
	return math.Hypot(r.VX, r.VY)
}

// Command 控制指令
// 说明：返回前已经饱和到配置限制内，保证有限
type Command struct {
	V   float64 // 速度指令（米/秒）
	Phi float64 // 前轮转角指令（弧度）
}

// Phase 泊车机动阶段
// 功能：四种控制器共用的阶段枚举，纯跟踪控制器严格单调推进，
// 其余控制器按瞬时误差重算并用于遥测
type Phase int32

const (
	PhaseTracking    Phase = iota // 正常跟踪
	PhaseApproaching              // 接近目标
	PhaseAligning                 // 终点对准
	PhaseParked                   // 泊车完成，指令恒为零
)

func (p Phase) String() string {
	switch p {
	case PhaseTracking:
		return "tracking"
	case PhaseApproaching:
		return "approaching"
	case PhaseAligning:
		return "aligning"
	case PhaseParked:
		return "parked"
	default:
		return "unknown"
	}
}

// Controller 跟踪控制器契约
// 说明：Update每个控制周期调用一次且只允许单线程调用；
// Reset在新机动开始时清空持久状态
type Controller interface {
	Name() string
	Update(s State, r Reference) Command
	Phase() Phase
	Reset()
}

// 各控制器共用的模态判定阈值
const (
	parkCompletePosition = 0.3  // 泊车完成的位置误差阈值（米）
	refStoppedSpeed      = 0.01 // 参考速度视为停止的阈值（米/秒）
	displacedPosition    = 0.5  // 参考停止但本车偏离的位置阈值（米）
	approachPosition     = 2.0  // 接近目标的位置误差阈值（米）
	headingSettled       = 0.05 // 残余航向误差视为对准的阈值（弧度，约3°）
	approachSpeed        = 0.5  // 接近目标的参考速度阈值（米/秒）
	nearStopSpeed        = 0.1  // 近停速度阈值（米/秒）
)

// trackingError 路径切向坐标系下的跟踪误差
// 说明：把全局位置误差旋转到参考航向的切向/法向分解
type trackingError struct {
	long     float64 // 纵向误差（沿参考切向，正值表示落后）
	lat      float64 // 横向误差（垂直参考切向）
	heading  float64 // 航向误差（弧度，(-π, π]）
	position float64 // 位置误差模长（米）
}

func computeError(s State, r Reference) trackingError {
	dx := s.X - r.X
	dy := s.Y - r.Y
	sin, cos := math.Sincos(r.Theta)
	return trackingError{
		long:     -dx*cos - dy*sin,
		lat:      dx*sin - dy*cos,
		heading:  numeric.WrapAngle(s.Theta - r.Theta),
		position: math.Hypot(dx, dy),
	}
}

// instantaneousPhase 按瞬时位置误差归类阶段
// 说明：混合/MPC/Stanley控制器每tick重算，不保持持久模态变量
func instantaneousPhase(position float64, p Params) Phase {
	switch {
	case position < p.AlignDistance:
		return PhaseAligning
	case position < p.ApproachDistance:
		return PhaseApproaching
	default:
		return PhaseTracking
	}
}
