package controller

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/parksim-oss/trajectory"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/numeric"
)

// 纯跟踪控制器各阶段的转向增益与纵向参数
const (
	ppGainTracking    = 1.0 // 跟踪阶段曲率增益
	ppGainApproaching = 1.5 // 接近阶段曲率增益
	ppGainAligning    = 2.0 // 对准阶段曲率增益

	ppTrackingFloor    = 0.3  // 跟踪阶段最低速度（米/秒）
	ppApproachingFloor = 0.15 // 接近阶段最低爬行速度（米/秒）
	ppAligningFloor    = 0.08 // 对准阶段最低爬行速度（米/秒）

	ppForceFinalDistance = 2.0 // 距终点该距离内直接瞄准终点（米）
	ppMinTargetDistance  = 0.1 // 目标距离下限，避免转向发散（米）
)

// PurePursuit 纯跟踪控制器
// 功能：基于前视目标点的几何跟踪控制，内部维护单调推进的阶段状态机
// 算法说明：
//  1. 阶段按剩余距离单调推进：跟踪→接近→对准→泊车完成；
//     进入泊车完成后本次机动的指令永久为零，不允许回退
//  2. 每tick暴力搜索最近轨迹点；前视距离在跟踪阶段为
//     base+v·timeGain（限幅），接近/对准阶段按剩余距离比例收缩
//  3. 从最近点向前找第一个达到前视距离的目标点，找不到退化为终点；
//     对准阶段或距终点2米内直接强制瞄准终点
//  4. 转向采用纯跟踪曲率法则 φ=atan(k·2L·sinα/d)，k随阶段递增加快收敛
//  5. 纵向在跟踪阶段混合路径点前馈速度与比例项，接近/对准阶段用
//     各自增益与速度下限的距离比例爬行速度
//
// 输出按阶段相关系数做指数平滑，接近零速且贴近终点时跳过平滑，
// 避免低通掩盖最终停车
type PurePursuit struct {
	params Params
	traj   *trajectory.TimedTrajectory
	post   postProcessor
	phase  Phase
}

// NewPurePursuit 创建纯跟踪控制器
// 参数：traj-本次机动的参考轨迹（只读共享）
func NewPurePursuit(params Params, traj *trajectory.TimedTrajectory) *PurePursuit {
	if traj == nil || traj.Len() == 0 {
		log.Panicf("purepursuit: nil or empty trajectory")
	}
	return &PurePursuit{params: params, traj: traj, post: newPostProcessor(params)}
}

func (c *PurePursuit) Name() string { return "purepursuit" }

func (c *PurePursuit) Phase() Phase { return c.phase }

// Reset 清空阶段与上一拍指令，新机动开始时调用
func (c *PurePursuit) Reset() {
	c.post.reset()
	c.phase = PhaseTracking
}

// Update 计算本tick的控制指令
func (c *PurePursuit) Update(s State, r Reference) Command {
	if c.phase == PhaseParked {
		return Command{}
	}
	goal := c.traj.At(c.traj.Len() - 1)
	distToGoal := math.Hypot(s.X-goal.X, s.Y-goal.Y)

	c.advancePhase(distToGoal)
	if c.phase == PhaseParked {
		log.Debugf("purepursuit: parked at %.3fm from goal", distToGoal)
		return c.post.override(Command{})
	}

	target := c.traj.At(c.targetIndex(s, distToGoal))
	dist := math.Max(math.Hypot(target.X-s.X, target.Y-s.Y), ppMinTargetDistance)

	// 纯跟踪曲率法则
	alpha := numeric.WrapAngle(math.Atan2(target.Y-s.Y, target.X-s.X) - s.Theta)
	phi := math.Atan(c.gain() * 2 * c.params.Wheelbase * math.Sin(alpha) / dist)

	var v float64
	switch c.phase {
	case PhaseTracking:
		refV := math.Hypot(target.VX, target.VY)
		v = math.Max(ppTrackingFloor, 0.6*refV+0.4*c.params.K1*dist)
	case PhaseApproaching:
		v = lo.Clamp(0.5*c.params.K1*distToGoal, ppApproachingFloor, 1.0)
	default: // PhaseAligning
		v = lo.Clamp(0.3*c.params.K1*distToGoal, ppAligningFloor, 0.5)
	}

	// 贴近终点且近零速时跳过平滑，保证停车指令不被低通掩盖
	smooth := !(v < nearStopSpeed && distToGoal < 2*c.params.ParkedDistance)
	alphaV, alphaPhi := c.smoothing()
	return c.post.apply(Command{V: v, Phi: phi}, alphaV, alphaPhi, smooth)
}

// advancePhase 阶段单调推进
// 说明：只允许向前转移，泊车完成为终态
func (c *PurePursuit) advancePhase(distToGoal float64) {
	if c.phase == PhaseTracking && distToGoal < c.params.ApproachDistance {
		c.phase = PhaseApproaching
	}
	if c.phase == PhaseApproaching && distToGoal < c.params.AlignDistance {
		c.phase = PhaseAligning
	}
	if c.phase == PhaseAligning && distToGoal < c.params.ParkedDistance {
		c.phase = PhaseParked
	}
}

// nearestIndex 暴力搜索距本车最近的轨迹点下标
func (c *PurePursuit) nearestIndex(s State) int {
	best, bestD := 0, math.Inf(0)
	for i, p := range c.traj.Points {
		d := math.Hypot(p.X-s.X, p.Y-s.Y)
		if d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// lookahead 自适应前视距离
func (c *PurePursuit) lookahead(speed, distToGoal float64) float64 {
	if c.phase == PhaseTracking {
		return lo.Clamp(
			c.params.LookaheadBase+speed*c.params.LookaheadTimeGain,
			c.params.LookaheadMin, c.params.LookaheadMax,
		)
	}
	// 接近/对准阶段按剩余距离比例收缩
	return math.Max(0.3, 0.5*distToGoal)
}

// targetIndex 选择前视目标点下标
func (c *PurePursuit) targetIndex(s State, distToGoal float64) int {
	last := c.traj.Len() - 1
	if c.phase == PhaseAligning || distToGoal < ppForceFinalDistance {
		return last
	}
	ld := c.lookahead(math.Abs(s.V), distToGoal)
	for i := c.nearestIndex(s); i <= last; i++ {
		p := c.traj.At(i)
		if math.Hypot(p.X-s.X, p.Y-s.Y) >= ld {
			return i
		}
	}
	return last
}

// gain 阶段递增的曲率增益
func (c *PurePursuit) gain() float64 {
	switch c.phase {
	case PhaseApproaching:
		return ppGainApproaching
	case PhaseAligning:
		return ppGainAligning
	default:
		return ppGainTracking
	}
}

// smoothing 阶段相关的低通系数
func (c *PurePursuit) smoothing() (alphaV, alphaPhi float64) {
	switch c.phase {
	case PhaseApproaching:
		return 0.8, 0.85
	case PhaseAligning:
		return 0.9, 0.9
	default:
		return c.params.AlphaV, c.params.AlphaPhi
	}
}
