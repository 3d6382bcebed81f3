package fusion_test

import (
	"math"
	"testing"

	"github.com/evacsys/evacroute/fusion"
	"github.com/stretchr/testify/assert"
)

func TestFuseEnvironmental(t *testing.T) {
	f := fusion.NewFuser(fusion.DefaultGasParams(), fusion.DefaultFilterParams())

	r := f.FuseEnvironmental(fusion.RawEnvironmentalSample{
		TVOC:   125,
		ECO2:   600,
		GasADC: 15000,
	})
	// digital channels pass through unchanged
	assert.Equal(t, uint16(125), r.TVOCppb)
	assert.Equal(t, uint16(600), r.ECO2ppm)

	voltage := 15000.0 * 2.048 / 32767.0
	assert.InDelta(t, voltage, r.GasVoltage, 1e-9)

	rs := 10.0 * (2.048 - voltage) / voltage
	want := 100.0 * math.Pow(rs/9.83, -2.5)
	assert.InDelta(t, want, r.Concentration, 1e-9)
}

func TestFuseEnvironmentalZeroADC(t *testing.T) {
	f := fusion.NewFuser(fusion.DefaultGasParams(), fusion.DefaultFilterParams())
	r := f.FuseEnvironmental(fusion.RawEnvironmentalSample{GasADC: 0})
	assert.Equal(t, 0.0, r.GasVoltage)
	assert.Equal(t, 0.0, r.Concentration)
}

func TestFuseMotionScaling(t *testing.T) {
	f := fusion.NewFuser(fusion.DefaultGasParams(), fusion.DefaultFilterParams())
	m := f.FuseMotion(fusion.RawMotionSample{
		AccelX: 16384, AccelY: 0, AccelZ: 16384,
		GyroX: 131, GyroY: 262, GyroZ: -131,
	})
	assert.InDelta(t, 1.0, m.AccelX, 1e-9)
	assert.InDelta(t, 1.0, m.AccelZ, 1e-9)
	assert.InDelta(t, 1.0, m.GyroX, 1e-9)
	assert.InDelta(t, 2.0, m.GyroY, 1e-9)
	assert.InDelta(t, -1.0, m.GyroZ, 1e-9)
	assert.Equal(t, 0.0, m.Roll)
	assert.Equal(t, 0.0, m.Yaw)
}

// With a constant true tilt and zero gyro rate, the estimate must converge
// to the accelerometer angle.
func TestOrientationFilterConvergence(t *testing.T) {
	k := fusion.NewOrientationFilter(fusion.DefaultFilterParams())

	// 30 degree tilt held steady
	const trueAngle = 30.0
	var angle float64
	for i := 0; i < 500; i++ {
		angle = k.Update(0, trueAngle)
	}
	assert.InDelta(t, trueAngle, angle, 0.1)
	assert.InDelta(t, 0.0, k.Bias(), 0.5)
}

// A constant gyro bias must end up in the bias estimate, not the angle.
func TestOrientationFilterBiasEstimate(t *testing.T) {
	k := fusion.NewOrientationFilter(fusion.DefaultFilterParams())

	const driftRate = 2.0 // deg/s of pure bias
	var angle float64
	for i := 0; i < 5000; i++ {
		angle = k.Update(driftRate, 0)
	}
	assert.InDelta(t, 0.0, angle, 0.5)
	assert.InDelta(t, driftRate, k.Bias(), 0.5)
}
