// Package fusion turns raw sensor register values into calibrated physical
// readings and a fused orientation estimate. It is pure computation: all bus
// and device access stays with the hardware collaborators that produce the
// raw samples.
package fusion

import "math"

// RawEnvironmentalSample holds one tick of raw gas-sensing values: digital
// TVOC/eCO2 integers and the raw ADC code of the analog gas sensor.
type RawEnvironmentalSample struct {
	TVOC   uint16 // ppb
	ECO2   uint16 // ppm
	GasADC int16
}

// RawMotionSample holds one tick of raw IMU counts.
type RawMotionSample struct {
	AccelX, AccelY, AccelZ int16
	GyroX, GyroY, GyroZ    int16
}

// EnvironmentalReading is a fused environmental sample. The digital channels
// pass through unchanged; the analog channel is converted to a voltage and a
// derived concentration.
type EnvironmentalReading struct {
	TVOCppb       uint16  `json:"tvoc_ppb"`
	ECO2ppm       uint16  `json:"eco2_ppm"`
	GasVoltage    float64 `json:"gas_voltage"`
	Concentration float64 `json:"concentration_ppm"`
}

// MotionReading is a fused motion sample. Only pitch is estimated; roll and
// yaw are not modeled by the single-axis filter and stay zero.
type MotionReading struct {
	AccelX float64 `json:"accel_x_g"`
	AccelY float64 `json:"accel_y_g"`
	AccelZ float64 `json:"accel_z_g"`
	GyroX  float64 `json:"gyro_x_dps"`
	GyroY  float64 `json:"gyro_y_dps"`
	GyroZ  float64 `json:"gyro_z_dps"`
	Pitch  float64 `json:"pitch_deg"`
	Roll   float64 `json:"roll_deg"`
	Yaw    float64 `json:"yaw_deg"`
}

// GasParams are the calibration constants of the analog gas channel.
type GasParams struct {
	LoadResistance float64 `yaml:"load_resistance"` // kOhm, divider load
	CleanAirR0     float64 `yaml:"clean_air_r0"`    // Rs/R0 baseline in clean air
	CurveScale     float64 `yaml:"curve_scale"`     // power-law curve: scale * (Rs/R0)^exponent
	CurveExponent  float64 `yaml:"curve_exponent"`
}

func DefaultGasParams() GasParams {
	return GasParams{
		LoadResistance: 10.0,
		CleanAirR0:     9.83,
		CurveScale:     100.0,
		CurveExponent:  -2.5,
	}
}

// Fuser owns the process-wide fusion state. The orientation filter inside is
// initialized once and updated every tick, never reset mid-run.
type Fuser struct {
	gas    GasParams
	filter *OrientationFilter
}

func NewFuser(gas GasParams, fp FilterParams) *Fuser {
	return &Fuser{
		gas:    gas,
		filter: NewOrientationFilter(fp),
	}
}

// Filter exposes the orientation filter state for inspection.
func (f *Fuser) Filter() *OrientationFilter { return f.filter }

func adcToVoltage(raw int16) float64 {
	return float64(raw) * ADC_REF_VOLTAGE / ADC_FULL_SCALE
}

// sensorResistance applies the voltage-divider formula against the load
// resistance to recover Rs in kOhm.
func (p GasParams) sensorResistance(voltage float64) float64 {
	if voltage == 0 {
		return 0
	}
	return p.LoadResistance * (ADC_REF_VOLTAGE - voltage) / voltage
}

// concentration maps Rs to ppm via the power-law curve referenced to the
// clean-air baseline resistance.
func (p GasParams) concentration(rs float64) float64 {
	if p.CleanAirR0 == 0 {
		return 0
	}
	ratio := rs / p.CleanAirR0
	if ratio <= 0 {
		return 0
	}
	return p.CurveScale * math.Pow(ratio, p.CurveExponent)
}

func (f *Fuser) FuseEnvironmental(s RawEnvironmentalSample) EnvironmentalReading {
	voltage := adcToVoltage(s.GasADC)
	rs := f.gas.sensorResistance(voltage)
	return EnvironmentalReading{
		TVOCppb:       s.TVOC,
		ECO2ppm:       s.ECO2,
		GasVoltage:    voltage,
		Concentration: f.gas.concentration(rs),
	}
}

func (f *Fuser) FuseMotion(s RawMotionSample) MotionReading {
	m := MotionReading{
		AccelX: float64(s.AccelX) / ACCEL_LSB_PER_G,
		AccelY: float64(s.AccelY) / ACCEL_LSB_PER_G,
		AccelZ: float64(s.AccelZ) / ACCEL_LSB_PER_G,
		GyroX:  float64(s.GyroX) / GYRO_LSB_PER_DPS,
		GyroY:  float64(s.GyroY) / GYRO_LSB_PER_DPS,
		GyroZ:  float64(s.GyroZ) / GYRO_LSB_PER_DPS,
	}
	// gravity-vector angle from the two non-primary axes, degrees
	accelAngle := math.Atan2(m.AccelY, math.Sqrt(m.AccelX*m.AccelX+m.AccelZ*m.AccelZ)) * 180 / math.Pi
	m.Pitch = f.filter.Update(m.GyroX, accelAngle)
	return m
}
