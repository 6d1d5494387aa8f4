package controller

import (
	"math"
)

// hybridApproachFloor 接近阶段速度缩放的下限
const hybridApproachFloor = 0.1

// Hybrid 混合多模态控制器
// 功能：按瞬时误差与参考速度每tick划分三种工作模态
// （泊车完成/参考停止但偏离/正常跟踪），不保持持久模态变量
// 算法说明：
//  1. 泊车完成（位置误差<0.3米且参考速度<0.01米/秒）：速度置零，
//     转向仅修正残余航向误差，航向误差小于0.05弧度后转向精确置零
//  2. 参考停止但偏离（参考停止且位置误差>0.5米）：纯位置比例速度
//  3. 正常跟踪：前馈+纵向误差反馈，横向误差与航向误差各自独立衰减速度；
//     接近目标且低速时再按剩余距离比例缩放
//
// 转向综合前馈（atan(L·ω/v)）、曲率自适应增益的Stanley型横向项与航向反馈。
// 全部指令经过饱和→变化率限制→低通后输出；检测到泊车完成时
// 最终安全覆盖强制速度归零（航向已对准时转向同步归零），覆盖滤波结果
type Hybrid struct {
	params Params
	post   postProcessor
	phase  Phase
}

// NewHybrid 创建混合多模态控制器
func NewHybrid(params Params) *Hybrid {
	return &Hybrid{params: params, post: newPostProcessor(params)}
}

func (h *Hybrid) Name() string { return "hybrid" }

func (h *Hybrid) Phase() Phase { return h.phase }

// Reset 清空持久状态（上一拍指令），新机动开始时调用
func (h *Hybrid) Reset() {
	h.post.reset()
	h.phase = PhaseTracking
}

// Update 计算本tick的控制指令
func (h *Hybrid) Update(s State, r Reference) Command {
	e := computeError(s, r)
	vRef := r.Speed()
	parkingComplete := e.position < parkCompletePosition && vRef < refStoppedSpeed
	approaching := e.position < approachPosition && vRef < approachSpeed

	var v float64
	switch {
	case parkingComplete:
		v = 0
	case vRef < refStoppedSpeed && e.position > displacedPosition:
		// 参考已停但本车偏离：纯位置比例收敛，误差截断到1米
		v = h.params.K1 * math.Min(e.position, 1.0)
	default:
		// 前馈+纵向反馈，横向/航向误差独立衰减速度
		v = vRef + h.params.K1*e.long
		v /= 1 + math.Abs(e.lat)
		v /= 1 + 2*math.Abs(e.heading)
		if approaching {
			v *= math.Max(hybridApproachFloor, e.position/approachPosition)
		}
	}

	var phi float64
	switch {
	case parkingComplete:
		// 只修正残余航向误差
		phi = -h.params.K2 * 0.3 * e.heading
		if math.Abs(e.heading) < headingSettled {
			phi = 0
		}
	case vRef < refStoppedSpeed:
		phi = -h.params.K2 * e.heading
	default:
		if math.Abs(v) > nearStopSpeed {
			phi += math.Atan(h.params.Wheelbase * r.Omega / v)
		}
		// 曲率自适应的Stanley型横向项
		gain := h.params.K3 * (1 + math.Abs(r.Omega))
		phi += math.Atan2(gain*e.lat, math.Max(0.5, math.Abs(v)))
		phi -= h.params.K2 * e.heading
		if approaching {
			phi *= 0.7
		}
	}

	cmd := h.post.apply(Command{V: v, Phi: phi}, h.params.AlphaV, h.params.AlphaPhi, true)

	// 终点安全覆盖：低通结果不得掩盖完全停车
	if parkingComplete {
		cmd.V = 0
		if math.Abs(e.heading) < headingSettled {
			cmd.Phi = 0
		}
		cmd = h.post.override(cmd)
		h.phase = PhaseParked
	} else {
		h.phase = instantaneousPhase(e.position, h.params)
	}
	return cmd
}
