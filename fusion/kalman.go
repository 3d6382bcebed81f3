package fusion

// FilterParams are the fixed process/measurement noise constants of the
// orientation filter.
type FilterParams struct {
	Dt       float64 `yaml:"dt"` // seconds per tick
	QAngle   float64 `yaml:"q_angle"`
	QBias    float64 `yaml:"q_bias"`
	RMeasure float64 `yaml:"r_measure"`
}

func DefaultFilterParams() FilterParams {
	return FilterParams{
		Dt:       0.1,
		QAngle:   0.001,
		QBias:    0.003,
		RMeasure: 0.03,
	}
}

// OrientationFilter is a two-state (angle, bias) linear estimator over a
// single axis. Prediction integrates the bias-corrected gyro rate, correction
// blends in the accelerometer-derived gravity angle.
type OrientationFilter struct {
	params FilterParams
	angle  float64
	bias   float64
	p      [2][2]float64 // error covariance
}

func NewOrientationFilter(params FilterParams) *OrientationFilter {
	if params.Dt <= 0 {
		params.Dt = DefaultFilterParams().Dt
	}
	return &OrientationFilter{params: params}
}

// Update runs one predict/correct cycle and returns the new angle estimate.
// rate is the raw gyro rate in deg/s, measuredAngle the accelerometer angle
// in degrees.
func (k *OrientationFilter) Update(rate, measuredAngle float64) float64 {
	dt := k.params.Dt

	// predict
	k.angle += dt * (rate - k.bias)
	k.p[0][0] += dt * (dt*k.p[1][1] - k.p[0][1] - k.p[1][0] + k.params.QAngle)
	k.p[0][1] -= dt * k.p[1][1]
	k.p[1][0] -= dt * k.p[1][1]
	k.p[1][1] += k.params.QBias * dt

	// correct
	y := measuredAngle - k.angle
	s := k.p[0][0] + k.params.RMeasure
	k0 := k.p[0][0] / s
	k1 := k.p[1][0] / s

	k.angle += k0 * y
	k.bias += k1 * y
	p00 := k.p[0][0]
	p01 := k.p[0][1]
	k.p[0][0] -= k0 * p00
	k.p[0][1] -= k0 * p01
	k.p[1][0] -= k1 * p00
	k.p[1][1] -= k1 * p01

	return k.angle
}

func (k *OrientationFilter) Angle() float64 { return k.angle }
func (k *OrientationFilter) Bias() float64  { return k.bias }
