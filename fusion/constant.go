package fusion

const (
	// MPU6050 conversion factors (+/-2g, +/-250 deg/s ranges)
	ACCEL_LSB_PER_G  = 16384.0
	GYRO_LSB_PER_DPS = 131.0

	// ADS1115 analog front-end, +/-2.048V range
	ADC_REF_VOLTAGE = 2.048
	ADC_FULL_SCALE  = 32767.0
)
