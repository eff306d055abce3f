package emath

import "math"

// Some functions that only operate on basic types, that are useful

// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/ - "linear RGB to sRGB"
// f is assumed to be in the range [0,1]
func GammaExpand_F64(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055 * math.Pow(f, 1.0/2.4) - 0.055
}

// ROMM RGB (ProPhoto) encoding: gamma 1.8, with a linear toe below 1/512
func GammaExpand_ProPhoto(f float64) float64 {
	if f < 1.0/512.0 {
		return 16.0 * f
	}
	return math.Pow(f, 1.0/1.8)
}

// Adobe RGB (1998) is a pure power curve, 563/256
func GammaExpand_AdobeRGB(f float64) float64 {
	if f <= 0.0 {
		return 0.0
	}
	return math.Pow(f, 256.0/563.0)
}

func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func Clamp01(f float64) float64 {
	if f < 0.0 { return 0.0 }
	if f > 1.0 { return 1.0 }
	return f
}
