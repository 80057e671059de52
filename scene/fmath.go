package scene

import "math"

const pi float32 = math.Pi

func atan2f(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

func asinf(v float32) float32 {
	return float32(math.Asin(float64(v)))
}
