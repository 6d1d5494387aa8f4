package controller

import (
	"math"

	"github.com/samber/lo"
)

// postProcessor 指令后处理管线
// 功能：饱和→变化率限制→指数低通，并持有上一拍指令状态
// 说明：低通是限幅后两个合法值的凸组合，不会破坏变化率限制；
// 上一拍指令在每次apply/override后更新，Reset时清零
type postProcessor struct {
	params      Params
	prev        Command
	initialized bool
}

func newPostProcessor(p Params) postProcessor {
	p.validate()
	return postProcessor{params: p}
}

// apply 对原始指令执行完整后处理
// 参数：raw-控制律输出，alphaV/alphaPhi-本tick的低通系数，smooth-是否执行低通
// 返回：饱和且满足变化率限制的指令
func (pp *postProcessor) apply(raw Command, alphaV, alphaPhi float64, smooth bool) Command {
	// 数值守护：控制律不应产生非有限值，出现时退回上一拍指令
	if math.IsNaN(raw.V) || math.IsInf(raw.V, 0) {
		raw.V = pp.prev.V
	}
	if math.IsNaN(raw.Phi) || math.IsInf(raw.Phi, 0) {
		raw.Phi = pp.prev.Phi
	}
	if !pp.initialized {
		pp.prev = Command{}
		pp.initialized = true
	}
	cmd := Command{
		V:   lo.Clamp(raw.V, pp.params.VMin, pp.params.VMax),
		Phi: lo.Clamp(raw.Phi, -pp.params.PhiMax, pp.params.PhiMax),
	}
	dv := pp.params.MaxAccel * pp.params.DT
	dphi := pp.params.MaxPhiRate * pp.params.DT
	cmd.V = lo.Clamp(cmd.V, pp.prev.V-dv, pp.prev.V+dv)
	cmd.Phi = lo.Clamp(cmd.Phi, pp.prev.Phi-dphi, pp.prev.Phi+dphi)
	if smooth {
		cmd.V = alphaV*cmd.V + (1-alphaV)*pp.prev.V
		cmd.Phi = alphaPhi*cmd.Phi + (1-alphaPhi)*pp.prev.Phi
	}
	pp.prev = cmd
	return cmd
}

// override 绕过后处理直接落地指令
// 说明：终点安全覆盖使用，覆盖结果同样写入上一拍状态
func (pp *postProcessor) override(cmd Command) Command {
	pp.prev = cmd
	pp.initialized = true
	return cmd
}

// reset 清空持久状态，新机动开始时调用
func (pp *postProcessor) reset() {
	pp.prev = Command{}
	pp.initialized = false
}
