package trajectory

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/numeric"
)

const (
	timeEps               = 1e-6 // 平均速度下限，低于该值的段不产生时间增量
	speedEps              = 0.05 // 线速度阈值，低于该值不计算航向角速度与转角前馈
	boundaryZeroTicks     = 3    // 速度首末强制置零的采样数
	trajectorySmoothSigma = 2.0  // 轨迹导出量高斯平滑的标准差（采样点）
)

// TrajectoryPoint 定频参考轨迹的单个采样
type TrajectoryPoint struct {
	T     float64 // 时刻（秒）
	X     float64 // 期望位置x（米）
	Y     float64 // 期望位置y（米）
	Theta float64 // 期望航向角（弧度，(-π, π]）
	Phi   float64 // 前轮转角前馈（弧度）
	VX    float64 // 期望速度x分量（米/秒）
	VY    float64 // 期望速度y分量（米/秒）
	Omega float64 // 期望航向角速度（弧度/秒）
}

// TimedTrajectory 定频时间索引参考轨迹
// 功能：控制循环每个tick直接按下标取参考，生成后视为只读
type TimedTrajectory struct {
	Points   []TrajectoryPoint // 定频采样序列
	Duration float64           // 实际机动时长（秒）
	DT       float64           // 采样周期（秒）
}

// At 取第tick个参考采样，越界时取最后一个
// 说明：超出时长后轨迹冻结在终点，等价于持续命令完全停车
func (t *TimedTrajectory) At(tick int) TrajectoryPoint {
	if tick < 0 {
		tick = 0
	}
	if tick >= len(t.Points) {
		tick = len(t.Points) - 1
	}
	return t.Points[tick]
}

// Len 返回采样数
func (t *TimedTrajectory) Len() int {
	return len(t.Points)
}

// TimeProfile 累计弧长到时间的积分
// 功能：按相邻点平均速度积分通过时间，得到每个路径点的到达时刻
// 参数：distances-累计弧长，velocities-路径点速度剖面
// 返回：各路径点的到达时刻与总时长
// 说明：平均速度低于1e-6的段时间增量取0，避免静止段除零
func TimeProfile(distances, velocities []float64) ([]float64, float64) {
	if len(distances) != len(velocities) {
		log.Panicf("time profile: length mismatch: %d distances, %d velocities",
			len(distances), len(velocities))
	}
	times := make([]float64, len(distances))
	for i := 1; i < len(distances); i++ {
		ds := distances[i] - distances[i-1]
		avg := (velocities[i] + velocities[i-1]) / 2
		dt := 0.0
		if avg > timeEps {
			dt = ds / avg
		}
		times[i] = times[i-1] + dt
	}
	if len(times) == 0 {
		return times, 0
	}
	return times, times[len(times)-1]
}

// GenerateTimedTrajectory 生成定频时间索引参考轨迹
// 功能：把(路径点, 到达时刻)合成为控制循环直接消费的定频参考信号
// 参数：waypoints-平滑后的路径点，times-到达时刻，duration-机动时长，
// totalTime-输出时间范围[0, totalTime]，dt-采样周期，wheelbase-轴距，phiMax-最大前轮转角
// 返回：定频参考轨迹
// 算法说明：
// 1. 去除到达时刻相同的路径点（保留第一个），保证时间基严格递增
// 2. t ≤ duration时用保形分段三次插值求x、y与解跳变后的航向
// 3. t > duration时精确保持在最后一个路径点，导出速度全部为0（完成锁定）
// 4. 速度由位置对时间数值微分得到，高斯平滑后首末各3个采样与超时段强制置零
// 5. 航向角速度由连续航向微分得到，平滑后在线速度低于阈值处与超时段置零
// 6. 转角前馈按自行车模型逆解φ=atan(L·ω/v)（v>0.05时），饱和到±phiMax后平滑
// 说明：输出航向最终规范化到(-π, π]
func GenerateTimedTrajectory(
	waypoints []Waypoint, times []float64,
	duration, totalTime, dt, wheelbase, phiMax float64,
) (*TimedTrajectory, error) {
	if len(waypoints) != len(times) {
		log.Panicf("timed trajectory: length mismatch: %d waypoints, %d times",
			len(waypoints), len(times))
	}
	if dt <= 0 {
		log.Panicf("timed trajectory: dt must be positive, got %v", dt)
	}
	// 时间去重：静止段的多个路径点共享同一时刻，只保留第一个
	ut := make([]float64, 0, len(times))
	ux := make([]float64, 0, len(times))
	uy := make([]float64, 0, len(times))
	uth := make([]float64, 0, len(times))
	for i, w := range waypoints {
		if i > 0 && times[i] <= ut[len(ut)-1] {
			continue
		}
		ut = append(ut, times[i])
		ux = append(ux, w.X)
		uy = append(uy, w.Y)
		uth = append(uth, w.Theta)
	}
	if len(ut) < 2 {
		return nil, fmt.Errorf("trajectory: timed trajectory: degenerate time base (%d unique instants)", len(ut))
	}
	uth = numeric.UnwrapAngles(uth)

	px, err := numeric.NewPCHIP(ut, ux)
	if err != nil {
		return nil, err
	}
	py, err := numeric.NewPCHIP(ut, uy)
	if err != nil {
		return nil, err
	}
	pth, err := numeric.NewPCHIP(ut, uth)
	if err != nil {
		return nil, err
	}

	if totalTime < duration {
		totalTime = duration
	}
	nTicks := int(math.Ceil(totalTime/dt)) + 1
	grid := make([]float64, nTicks)
	for i := range grid {
		grid[i] = float64(i) * dt
	}

	finalX, finalY, finalTheta := ux[len(ux)-1], uy[len(uy)-1], uth[len(uth)-1]
	type pose struct{ x, y, theta float64 }
	poses := parallel.GoMap(grid, func(t float64) pose {
		if t > duration {
			// 完成锁定：超出时长后精确冻结在终点
			return pose{finalX, finalY, finalTheta}
		}
		return pose{px.Predict(t), py.Predict(t), pth.Predict(t)}
	})
	xs := lo.Map(poses, func(p pose, _ int) float64 { return p.x })
	ys := lo.Map(poses, func(p pose, _ int) float64 { return p.y })
	ths := lo.Map(poses, func(p pose, _ int) float64 { return p.theta })

	// 速度：位置数值微分+平滑，首末与超时段置零
	vx := numeric.GaussianSmooth(numeric.Gradient(xs, dt), trajectorySmoothSigma)
	vy := numeric.GaussianSmooth(numeric.Gradient(ys, dt), trajectorySmoothSigma)
	for i := 0; i < nTicks; i++ {
		if i < boundaryZeroTicks || i >= nTicks-boundaryZeroTicks || grid[i] > duration {
			vx[i] = 0
			vy[i] = 0
		}
	}
	// 航向角速度：低速与超时段置零，避免原地旋转噪声
	omega := numeric.GaussianSmooth(numeric.Gradient(ths, dt), trajectorySmoothSigma)
	for i := 0; i < nTicks; i++ {
		if math.Hypot(vx[i], vy[i]) < speedEps || grid[i] > duration {
			omega[i] = 0
		}
	}
	// 转角前馈：自行车模型逆解
	phi := make([]float64, nTicks)
	for i := 0; i < nTicks; i++ {
		v := math.Hypot(vx[i], vy[i])
		if v > speedEps {
			phi[i] = lo.Clamp(math.Atan(wheelbase*omega[i]/v), -phiMax, phiMax)
		}
	}
	phi = numeric.GaussianSmooth(phi, trajectorySmoothSigma)

	points := make([]TrajectoryPoint, nTicks)
	for i := range points {
		points[i] = TrajectoryPoint{
			T:     grid[i],
			X:     xs[i],
			Y:     ys[i],
			Theta: numeric.WrapAngle(ths[i]),
			Phi:   lo.Clamp(phi[i], -phiMax, phiMax),
			VX:    vx[i],
			VY:    vy[i],
			Omega: omega[i],
		}
	}
	log.Debugf("timed trajectory: %d ticks at %.2fs, duration %.2fs", nTicks, dt, duration)
	return &TimedTrajectory{Points: points, Duration: duration, DT: dt}, nil
}
