package util

// Clamp ограничивает значение диапазоном [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp линейно интерполирует между a и b
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// RangeMap переводит значение из диапазона [inMin, inMax] в [outMin, outMax] без ограничения.
// При вырожденном входном диапазоне возвращает outMin.
func RangeMap(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMin == inMax {
		return outMin
	}
	t := (v - inMin) / (inMax - inMin)
	return outMin + t*(outMax-outMin)
}

// RangeMapClamped как RangeMap, но параметр интерполяции зажат в [0, 1].
// Входной диапазон может быть перевёрнутым (inMin > inMax).
func RangeMapClamped(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMin == inMax {
		return outMin
	}
	t := Clamp((v-inMin)/(inMax-inMin), 0, 1)
	return outMin + t*(outMax-outMin)
}

// SmoothStep3 - кубическое сглаживание 3t²-2t³
func SmoothStep3(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}
