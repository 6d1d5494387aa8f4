package controller

import (
	"github.com/tsinghua-fib-lab/parksim-oss/utils/config"
)

// Params 控制器参数集
// 功能：一次机动内不可变的增益、权重与限制，构造控制器时按值拷贝
// 说明：所有默认值在构造时解析完毕，控制循环内不做字段级回退查找
type Params struct {
	Wheelbase float64 // 轴距（米）
	DT        float64 // 控制周期（秒）

	K1 float64 // 纵向误差增益
	K2 float64 // 航向误差增益
	K3 float64 // 横向误差增益

	VMax   float64 // 速度指令上限（米/秒）
	VMin   float64 // 速度指令下限（米/秒）
	PhiMax float64 // 前轮转角指令限幅（弧度）

	// 指令后处理
	MaxAccel   float64 // 指令速度变化率限制（米/秒²）
	MaxPhiRate float64 // 指令转角变化率限制（弧度/秒）
	AlphaV     float64 // 速度指令低通系数
	AlphaPhi   float64 // 转角指令低通系数

	// 阶段划分阈值
	ApproachDistance float64 // 进入接近阶段的剩余距离（米）
	AlignDistance    float64 // 进入对准阶段的剩余距离（米）
	ParkedDistance   float64 // 判定泊车完成的剩余距离（米，纯跟踪）

	// MPC
	Horizon int     // 预测时域长度
	QLat    float64 // 横向误差权重
	QLong   float64 // 纵向误差权重
	QTheta  float64 // 航向误差权重
	RV      float64 // 速度增量权重
	RPhi    float64 // 转角增量权重

	// 纯跟踪前视距离
	LookaheadBase     float64 // 基础前视距离（米）
	LookaheadTimeGain float64 // 前视距离的速度增益（秒）
	LookaheadMin      float64 // 前视距离下限（米）
	LookaheadMax      float64 // 前视距离上限（米）
}

// DefaultParams 返回默认控制器参数
func DefaultParams() Params {
	return Params{
		Wheelbase:         2.7,
		DT:                0.1,
		K1:                1.0,
		K2:                1.5,
		K3:                0.8,
		VMax:              2.0,
		VMin:              -1.0,
		PhiMax:            0.6,
		MaxAccel:          1.5,
		MaxPhiRate:        0.8,
		AlphaV:            0.7,
		AlphaPhi:          0.8,
		ApproachDistance:  2.0,
		AlignDistance:     0.8,
		ParkedDistance:    0.15,
		Horizon:           6,
		QLat:              2000,
		QLong:             200,
		QTheta:            400,
		RV:                0.5,
		RPhi:              2,
		LookaheadBase:     1.0,
		LookaheadTimeGain: 0.5,
		LookaheadMin:      0.5,
		LookaheadMax:      3.0,
	}
}

// ParamsFromConfig 由配置构造控制器参数
// 说明：配置缺省字段已在config.Default中解析，这里只做映射
func ParamsFromConfig(c config.Controller, v config.Vehicle, dt float64) Params {
	p := DefaultParams()
	p.Wheelbase = v.Wheelbase
	p.DT = dt
	p.K1 = c.K1
	p.K2 = c.K2
	p.K3 = c.K3
	p.VMax = v.MaxSpeed
	p.VMin = v.MinSpeed
	p.PhiMax = v.MaxSteer
	p.Horizon = c.Horizon
	p.QLat = c.QLat
	p.QLong = c.QLong
	p.QTheta = c.QTheta
	p.RV = c.RV
	p.RPhi = c.RPhi
	p.LookaheadBase = c.LookaheadBase
	p.LookaheadTimeGain = c.LookaheadTimeGain
	p.LookaheadMin = c.LookaheadMin
	p.LookaheadMax = c.LookaheadMax
	return p
}

// validate 控制器参数合法性检查
// 说明：非法参数属编程错误，直接panic而不是运行时恢复
func (p Params) validate() {
	if p.Wheelbase <= 0 || p.DT <= 0 {
		log.Panicf("controller: invalid params: wheelbase=%v dt=%v", p.Wheelbase, p.DT)
	}
	if p.VMax <= 0 || p.PhiMax <= 0 {
		log.Panicf("controller: invalid params: vmax=%v phimax=%v", p.VMax, p.PhiMax)
	}
}
