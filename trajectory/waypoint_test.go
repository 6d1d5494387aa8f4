package trajectory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/parksim-oss/trajectory"
)

func TestFilter(t *testing.T) {
	wps := []trajectory.Waypoint{
		{X: 0, Y: 0},
		{X: 0.02, Y: 0}, // 距上一保留点0.02米，被移除
		{X: 0.2, Y: 0},
		{X: 0.25, Y: 0}, // 距上一保留点0.05米，被移除
		{X: 0.5, Y: 0},
	}
	kept := trajectory.Filter(wps, 0.1)
	assert.Equal(t, []trajectory.Waypoint{{X: 0}, {X: 0.2}, {X: 0.5}}, kept)

	// test: 幂等性
	assert.Equal(t, kept, trajectory.Filter(kept, 0.1))

	// test: 第一个点无条件保留
	dup := []trajectory.Waypoint{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}
	assert.Equal(t, []trajectory.Waypoint{{X: 1, Y: 1}}, trajectory.Filter(dup, 0.1))

	assert.Nil(t, trajectory.Filter(nil, 0.1))
}

func TestCumulativeDistances(t *testing.T) {
	wps := []trajectory.Waypoint{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 4}}
	s := trajectory.CumulativeDistances(wps)
	assert.InDeltaSlice(t, []float64{0, 3, 8}, s, 1e-12)
	assert.Nil(t, trajectory.CumulativeDistances(nil))
}

func TestCurvatures(t *testing.T) {
	// 直线曲率为0
	line := []trajectory.Waypoint{{X: 0}, {X: 1}, {X: 2}, {X: 3}}
	for _, k := range trajectory.Curvatures(line) {
		assert.InDelta(t, 0, k, 1e-12)
	}

	// 半径5米的圆弧，内部点曲率约等于1/5
	radius := 5.0
	arc := make([]trajectory.Waypoint, 0, 20)
	for i := 0; i < 20; i++ {
		a := float64(i) * 0.1
		arc = append(arc, trajectory.Waypoint{X: radius * math.Cos(a), Y: radius * math.Sin(a)})
	}
	ks := trajectory.Curvatures(arc)
	for i := 1; i < len(ks)-1; i++ {
		assert.InDelta(t, 1/radius, ks[i], 1e-3)
	}
	// 端点取相邻内部点的值
	assert.Equal(t, ks[1], ks[0])
	assert.Equal(t, ks[len(ks)-2], ks[len(ks)-1])

	// 退化输入：不足三点全为0
	assert.Equal(t, []float64{0, 0}, trajectory.Curvatures(line[:2]))

	// 重合点不产生NaN
	coincide := []trajectory.Waypoint{{X: 0}, {X: 0}, {X: 1}}
	for _, k := range trajectory.Curvatures(coincide) {
		assert.False(t, math.IsNaN(k))
	}
}
