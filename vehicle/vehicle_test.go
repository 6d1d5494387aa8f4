package vehicle_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/parksim-oss/utils/randengine"
	"github.com/tsinghua-fib-lab/parksim-oss/vehicle"
)

func TestVehicleStraight(t *testing.T) {
	v := vehicle.New(2.7, 0, 0, 0)
	for i := 0; i < 10; i++ {
		v.Step(1, 0, 0.1)
	}
	assert.InDelta(t, 1.0, v.X, 1e-9)
	assert.InDelta(t, 0, v.Y, 1e-9)
	assert.InDelta(t, 0, v.Theta, 1e-9)
	assert.Equal(t, 1.0, v.V)
}

func TestVehicleTurn(t *testing.T) {
	// 正转角向左偏航，航向保持规范化
	v := vehicle.New(2.7, 0, 0, 0)
	for i := 0; i < 100; i++ {
		v.Step(1, 0.3, 0.1)
	}
	assert.Greater(t, v.Y, 0.0)
	assert.Greater(t, v.Theta, -math.Pi)
	assert.LessOrEqual(t, v.Theta, math.Pi)

	// 理论角速度 v·tanφ/L
	v2 := vehicle.New(2.7, 0, 0, 0)
	v2.Step(1, 0.3, 0.1)
	assert.InDelta(t, math.Tan(0.3)/2.7*0.1, v2.Theta, 1e-9)
}

func TestVehicleReverse(t *testing.T) {
	v := vehicle.New(2.7, 0, 0, 0)
	v.Step(-0.5, 0, 0.1)
	assert.InDelta(t, -0.05, v.X, 1e-9)
	assert.Equal(t, -0.5, v.V)
}

func TestVehicleNoise(t *testing.T) {
	// 固定种子下噪声序列可复现
	a := vehicle.New(2.7, 0, 0, 0).WithNoise(0.05, randengine.New(43))
	b := vehicle.New(2.7, 0, 0, 0).WithNoise(0.05, randengine.New(43))
	for i := 0; i < 50; i++ {
		a.Step(1, 0.1, 0.1)
		b.Step(1, 0.1, 0.1)
	}
	assert.Equal(t, a.X, b.X)
	assert.Equal(t, a.Y, b.Y)
	assert.Equal(t, a.Theta, b.Theta)

	// 噪声截断：速度偏差有界
	c := vehicle.New(2.7, 0, 0, 0).WithNoise(0.05, randengine.New(7))
	for i := 0; i < 200; i++ {
		c.Step(1, 0, 0.1)
		assert.InDelta(t, 1.0, c.V, 3*0.05+1e-9)
	}

	// 静止指令不注入噪声
	d := vehicle.New(2.7, 0, 0, 0).WithNoise(0.05, randengine.New(7))
	d.Step(0, 0, 0.1)
	assert.Equal(t, 0.0, d.V)
}
