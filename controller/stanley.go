package controller

import (
	"math"
)

// stanleySoftening 横向项分母的软化常数，防止零速发散（米/秒）
const stanleySoftening = 0.5

// Stanley Stanley前轴跟踪控制器
// 功能：经典Stanley律的泊车版本，在前轴位置评估横向误差，
// 转向由前馈转角、航向反馈与横向误差项合成
// 算法说明：
//  1. 横向项 atan2(k3·e_lat_front, v+0.5)，分母软化保证低速稳定
//  2. 纵向与混合控制器同源：前馈+纵向反馈，横向/航向误差衰减速度
//  3. 终点处理与混合控制器一致：泊车完成时安全覆盖强制停车
type Stanley struct {
	params Params
	post   postProcessor
	phase  Phase
}

// NewStanley 创建Stanley控制器
func NewStanley(params Params) *Stanley {
	return &Stanley{params: params, post: newPostProcessor(params)}
}

func (c *Stanley) Name() string { return "stanley" }

func (c *Stanley) Phase() Phase { return c.phase }

// Reset 清空持久状态，新机动开始时调用
func (c *Stanley) Reset() {
	c.post.reset()
	c.phase = PhaseTracking
}

// Update 计算本tick的控制指令
func (c *Stanley) Update(s State, r Reference) Command {
	e := computeError(s, r)
	vRef := r.Speed()
	parkingComplete := e.position < parkCompletePosition && vRef < refStoppedSpeed

	var v float64
	switch {
	case parkingComplete:
		v = 0
	case vRef < refStoppedSpeed && e.position > displacedPosition:
		v = c.params.K1 * math.Min(e.position, 1.0)
	default:
		v = vRef + c.params.K1*e.long
		v /= 1 + math.Abs(e.lat)
		v /= 1 + 2*math.Abs(e.heading)
	}

	// 前轴横向误差
	sin, cos := math.Sincos(r.Theta)
	fx := s.X + c.params.Wheelbase*math.Cos(s.Theta) - (r.X + c.params.Wheelbase*cos)
	fy := s.Y + c.params.Wheelbase*math.Sin(s.Theta) - (r.Y + c.params.Wheelbase*sin)
	eLatFront := fx*sin - fy*cos

	var phi float64
	if parkingComplete {
		phi = -c.params.K2 * 0.3 * e.heading
		if math.Abs(e.heading) < headingSettled {
			phi = 0
		}
	} else {
		speed := math.Max(math.Abs(s.V), math.Abs(v))
		phi = r.Phi - c.params.K2*e.heading + math.Atan2(c.params.K3*eLatFront, speed+stanleySoftening)
	}

	cmd := c.post.apply(Command{V: v, Phi: phi}, c.params.AlphaV, c.params.AlphaPhi, true)

	if parkingComplete {
		cmd.V = 0
		if math.Abs(e.heading) < headingSettled {
			cmd.Phi = 0
		}
		cmd = c.post.override(cmd)
		c.phase = PhaseParked
	} else {
		c.phase = instantaneousPhase(e.position, c.params)
	}
	return cmd
}
