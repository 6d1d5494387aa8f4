package controller

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
)

const (
	mpcStates         = 3    // 误差状态维数（横向、纵向、航向）
	mpcInputs         = 2    // 输入维数（速度增量、转角增量）
	mpcMaxIterations  = 50   // 投影梯度迭代上限
	mpcBacktrackSteps = 20   // 回溯线搜索次数上限
	mpcProgressTol    = 1e-6 // 迭代进展阈值，低于该值视为收敛
	mpcRegularization = 1e-6 // Hessian的Tikhonov正则项
	mpcSpeedFloor     = 0.5  // 线性化速度下限，避免近零速时模型秩亏（米/秒）
	mpcRelaxSpeed     = 0.5  // 低于该速度放松指令平滑（米/秒）
	mpcRelaxAlpha     = 0.9  // 低速时的低通系数
)

// MPC 线性时变误差模型的模型预测控制器
// 功能：在路径切向坐标系下对(横向, 纵向, 航向)误差建立离散线性模型，
// 以二次型目标在预测时域上求解速度/转角相对前馈参考的最优增量
// 算法说明：
//  1. 以v_lin=max(0.5, v_ref)为工作点线性化，按控制周期离散化：
//     ė_lat=-v·e_θ、ė_long=-Δv、ė_θ=(v/L)·Δφ
//  2. 构造批量预测矩阵Φ、Γ，目标J=ΔUᵀHΔU+fᵀΔU，
//     H=ΓᵀQ̄Γ+R̄+εI；接近目标时横向/航向权重与转角代价自适应加大
//  3. 增量受相对前馈参考的箱约束，投影梯度下降+回溯线搜索求解，
//     进展停滞或迭代耗尽时接受当前解并保持solverOK为真；
//     出现非有限迭代值才判定求解失败，退化为比例反馈律
//  4. 位置误差<0.3米且参考速度<0.01米/秒时完全停车，绕过优化
//
// 指令经过共用的饱和→变化率限制→低通管线，速度低于0.5米/秒时
// 放松平滑以保留低速控制权威
type MPC struct {
	params   Params
	post     postProcessor
	phase    Phase
	solverOK bool
}

// NewMPC 创建模型预测控制器
func NewMPC(params Params) *MPC {
	if params.Horizon < 1 {
		log.Panicf("mpc: horizon must be at least 1, got %d", params.Horizon)
	}
	return &MPC{params: params, post: newPostProcessor(params), solverOK: true}
}

func (m *MPC) Name() string { return "mpc" }

func (m *MPC) Phase() Phase { return m.phase }

// SolverOK 返回最近一次求解的状态
// 说明：迭代耗尽仍接受解时为真；仅结构性失败（非有限迭代值）为假。
// 非收敛作为降级遥测暴露，不静默掩盖
func (m *MPC) SolverOK() bool { return m.solverOK }

// Reset 清空持久状态，新机动开始时调用
func (m *MPC) Reset() {
	m.post.reset()
	m.phase = PhaseTracking
	m.solverOK = true
}

// Update 计算本tick的控制指令
func (m *MPC) Update(s State, r Reference) Command {
	e := computeError(s, r)
	vRef := r.Speed()

	// 完全停车特例：绕过优化
	if e.position < parkCompletePosition && vRef < refStoppedSpeed {
		m.solverOK = true
		m.phase = PhaseParked
		return m.post.override(Command{})
	}

	approaching := e.position < approachPosition && vRef < approachSpeed
	qLat, qLong, qTheta := m.params.QLat, m.params.QLong, m.params.QTheta
	rv, rPhi := m.params.RV, m.params.RPhi
	if approaching {
		qLat *= 2
		qTheta *= 1.5
		rPhi *= 2
	}

	H, f, lb, ub := m.buildQP(e, r, vRef, qLat, qLong, qTheta, rv, rPhi)
	u, ok := projectedGradientQP(H, f, lb, ub)

	var dv, dphi float64
	if ok {
		m.solverOK = true
		dv, dphi = u[0], u[1]
	} else {
		// 结构性失败：退化为比例反馈律，使用同样的自适应增益
		m.solverOK = false
		log.Debugf("mpc: non-finite iterate, falling back to proportional law")
		k2, k3 := m.params.K2, m.params.K3
		if approaching {
			k2 *= 1.5
			k3 *= 2
		}
		vLin := math.Max(mpcSpeedFloor, vRef)
		dv = lo.Clamp(m.params.K1*e.long, lb[0], ub[0])
		dphi = lo.Clamp(math.Atan2(k3*e.lat, vLin)-k2*e.heading, lb[1], ub[1])
	}

	v := vRef + dv
	phi := r.Phi + dphi
	alphaV, alphaPhi := m.params.AlphaV, m.params.AlphaPhi
	if math.Abs(v) < mpcRelaxSpeed {
		alphaV, alphaPhi = mpcRelaxAlpha, mpcRelaxAlpha
	}
	cmd := m.post.apply(Command{V: v, Phi: phi}, alphaV, alphaPhi, true)
	m.phase = instantaneousPhase(e.position, m.params)
	return cmd
}

// buildQP 构造批量预测QP
// 返回：Hessian、线性项与增量的箱约束
func (m *MPC) buildQP(
	e trackingError, r Reference, vRef float64,
	qLat, qLong, qTheta, rv, rPhi float64,
) (*mat.Dense, *mat.VecDense, []float64, []float64) {
	nx, nu, np := mpcStates, mpcInputs, m.params.Horizon
	dt, wb := m.params.DT, m.params.Wheelbase
	vLin := math.Max(mpcSpeedFloor, vRef)

	a := mat.NewDense(nx, nx, []float64{
		1, 0, -dt * vLin,
		0, 1, 0,
		0, 0, 1,
	})
	b := mat.NewDense(nx, nu, []float64{
		0, 0,
		-dt, 0,
		0, dt * vLin / wb,
	})

	// A的幂：apow[k] = A^k
	apow := make([]*mat.Dense, np+1)
	apow[0] = identity(nx)
	for k := 1; k <= np; k++ {
		apow[k] = mat.NewDense(nx, nx, nil)
		apow[k].Mul(a, apow[k-1])
	}

	phiM := mat.NewDense(np*nx, nx, nil)
	gamma := mat.NewDense(np*nx, np*nu, nil)
	blk := mat.NewDense(nx, nu, nil)
	for i := 0; i < np; i++ {
		phiM.Slice(i*nx, (i+1)*nx, 0, nx).(*mat.Dense).Copy(apow[i+1])
		for j := 0; j <= i; j++ {
			blk.Mul(apow[i-j], b)
			gamma.Slice(i*nx, (i+1)*nx, j*nu, (j+1)*nu).(*mat.Dense).Copy(blk)
		}
	}

	qbar := make([]float64, np*nx)
	rbar := make([]float64, np*nu)
	for i := 0; i < np; i++ {
		qbar[i*nx], qbar[i*nx+1], qbar[i*nx+2] = qLat, qLong, qTheta
		rbar[i*nu], rbar[i*nu+1] = rv, rPhi
	}

	// H = ΓᵀQ̄Γ + R̄ + εI
	qg := mat.NewDense(np*nx, np*nu, nil)
	qg.Apply(func(i, _ int, v float64) float64 { return qbar[i] * v }, gamma)
	h := mat.NewDense(np*nu, np*nu, nil)
	h.Mul(gamma.T(), qg)
	for i := 0; i < np*nu; i++ {
		h.Set(i, i, h.At(i, i)+rbar[i]+mpcRegularization)
	}

	// f = ΓᵀQ̄Φe₀
	e0 := mat.NewVecDense(nx, []float64{e.lat, e.long, e.heading})
	pe := mat.NewVecDense(np*nx, nil)
	pe.MulVec(phiM, e0)
	for i := 0; i < np*nx; i++ {
		pe.SetVec(i, qbar[i]*pe.AtVec(i))
	}
	f := mat.NewVecDense(np*nu, nil)
	f.MulVec(gamma.T(), pe)

	// 箱约束：相对当前前馈参考的增量
	lb := make([]float64, np*nu)
	ub := make([]float64, np*nu)
	for i := 0; i < np; i++ {
		lb[i*nu] = m.params.VMin - vRef
		ub[i*nu] = m.params.VMax - vRef
		lb[i*nu+1] = -m.params.PhiMax - r.Phi
		ub[i*nu+1] = m.params.PhiMax - r.Phi
	}
	return h, f, lb, ub
}

// projectedGradientQP 求解 min ½uᵀHu+fᵀu s.t. lb≤u≤ub
// 算法说明：
// 1. 从箱内投影的零点出发，步长按Hessian对角尺度初始化
// 2. 每次迭代做回溯线搜索（至多20次折半），候选点投影回箱约束
// 3. 目标值无法改善（停滞）或迭代耗尽时接受当前解
// 返回：解向量与是否有效（迭代值全部有限）
func projectedGradientQP(h *mat.Dense, f *mat.VecDense, lb, ub []float64) ([]float64, bool) {
	n := f.Len()
	u := make([]float64, n)
	for i := range u {
		u[i] = lo.Clamp(0, lb[i], ub[i])
	}
	diagMax := mpcRegularization
	for i := 0; i < n; i++ {
		diagMax = math.Max(diagMax, math.Abs(h.At(i, i)))
	}
	step0 := 1 / diagMax

	obj := func(x []float64) float64 {
		xv := mat.NewVecDense(n, x)
		hx := mat.NewVecDense(n, nil)
		hx.MulVec(h, xv)
		return 0.5*mat.Dot(xv, hx) + mat.Dot(f, xv)
	}

	cur := obj(u)
	cand := make([]float64, n)
	g := mat.NewVecDense(n, nil)
	for it := 0; it < mpcMaxIterations; it++ {
		g.MulVec(h, mat.NewVecDense(n, u))
		g.AddVec(g, f)

		t := step0
		improved := false
		for k := 0; k < mpcBacktrackSteps; k++ {
			for i := range cand {
				cand[i] = lo.Clamp(u[i]-t*g.AtVec(i), lb[i], ub[i])
			}
			if v := obj(cand); v < cur {
				cur = v
				improved = true
				break
			}
			t /= 2
		}
		if !improved {
			// 梯度进展停滞，接受当前解
			break
		}
		progress := 0.0
		for i := range u {
			progress = math.Max(progress, math.Abs(cand[i]-u[i]))
		}
		copy(u, cand)
		if progress < mpcProgressTol {
			break
		}
	}
	for _, v := range u {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
	}
	return u, true
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}
