package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/parksim-oss/planner"
	"github.com/tsinghua-fib-lab/parksim-oss/trajectory"
)

func TestStaticPlanner(t *testing.T) {
	wps := []trajectory.Waypoint{{X: 0}, {X: 1}, {X: 2}}
	p := planner.NewStatic(wps)

	out, err := p.Plan(planner.Pose{}, planner.Pose{X: 2})
	assert.NoError(t, err)
	assert.Equal(t, wps, out)

	// 返回的是拷贝，调用方修改不影响规划器
	out[0].X = 100
	again, err := p.Plan(planner.Pose{}, planner.Pose{X: 2})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, again[0].X)

	_, err = planner.NewStatic(nil).Plan(planner.Pose{}, planner.Pose{})
	assert.ErrorIs(t, err, planner.ErrEmptyPlan)
}

func TestFootprintPolygon(t *testing.T) {
	f := planner.Footprint{Length: 4.5, Width: 1.8, Wheelbase: 2.7, RearOverhang: 0.9}
	poly := f.Polygon(planner.Pose{}, 0)
	assert.Len(t, poly, 4)

	// 后轴中心位于原点：前缘x=长-后悬，后缘x=-后悬
	assert.InDelta(t, 3.6, poly[0].X, 1e-9)
	assert.InDelta(t, -0.9, poly[2].X, 1e-9)
	assert.InDelta(t, 0.9, poly[1].Y, 1e-9)

	// 膨胀半径向外扩张
	inflated := f.Polygon(planner.Pose{}, 0.3)
	assert.InDelta(t, 3.9, inflated[0].X, 1e-9)
	assert.InDelta(t, 1.2, inflated[1].Y, 1e-9)
}
