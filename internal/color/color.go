// Package color implements the temperature-to-color model used to derive
// a star's display color from its spectral information: Ballesteros and
// Jordi et al. effective-temperature estimators, the Tanner-Helland
// Teff-to-RGB approximation, and RGBA8888 packing.
package color

import "math"

const (
	ballesterosA  = 0.92
	ballesterosB  = 1.7
	ballesterosC  = 0.62
	ballesterosT0 = 4600.0
)

// BVToTeffBallesteros converts a B-V color index to an effective
// temperature in Kelvin using the Ballesteros (2012, EPL 97, 34008)
// relation.
func BVToTeffBallesteros(bv float64) float64 {
	return ballesterosT0 * (1.0/(ballesterosA*bv+ballesterosB) + 1.0/(ballesterosA*bv+ballesterosC))
}

// XPToTeff converts a BP-RP color index to an effective temperature in
// Kelvin using the Jordi et al. cubic fit for xp <= 1.5, linearly
// interpolating (and clamping) to (1.5, 3521.6)-(15, 3000) beyond.
func XPToTeff(xp float64) float64 {
	if xp <= 1.5 {
		return math.Pow(10.0, 3.999-0.654*xp+0.709*math.Pow(xp, 2.0)-0.316*math.Pow(xp, 3.0))
	}

	return lint(xp, 1.5, 15.0, 3521.6, 3000.0)
}

// TeffToRGB converts an effective temperature in Kelvin (valid over
// roughly 1000-40000 K) to normalized [0,1] RGB channels using the
// Tanner-Helland piecewise logarithmic approximation.
func TeffToRGB(teff float64) (r, g, b float32) {
	temp := teff / 100.0

	var rf, gf, bf float64

	if temp <= 66.0 {
		rf = 255.0
	} else {
		x := temp - 55.0
		rf = clamp(351.97690566805693+0.114206453784165*x-40.25366309332127*math.Log(x), 0.0, 255.0)
	}

	if temp <= 66.0 {
		x := temp - 2.0
		gf = clamp(-155.25485562709179-0.44596950469579133*x+104.49216199393888*math.Log(x), 0.0, 255.0)
	} else {
		x := temp - 50.0
		gf = clamp(325.4494125711974+0.07943456536662342*x-28.0852963507957*math.Log(x), 0.0, 255.0)
	}

	if temp >= 66.0 {
		bf = 255.0
	} else if temp <= 19.0 {
		bf = 0.0
	} else {
		x := temp - 10.0
		bf = clamp(-254.76935184120902+0.8274096064007395*x+115.67994401066147*math.Log(x), 0.0, 255.0)
	}

	return float32(rf / 255.0), float32(gf / 255.0), float32(bf / 255.0)
}

// ToRGBA8888 packs normalized [0,1] r,g,b,a channels into a uint32 in
// ABGR byte order: (a<<24)|(b<<16)|(g<<8)|r. This is the plain uint32
// packing convention; see ToFloat32Bits for the bit-24-cleared float32
// reinterpretation used by some legacy producers.
func ToRGBA8888(r, g, b, a float32) uint32 {
	return (uint32(255.0*a) << 24) | (uint32(255.0*b) << 16) | (uint32(255.0*g) << 8) | uint32(255.0*r)
}

// FromRGBA8888 unpacks a uint32 packed by ToRGBA8888 back into
// normalized [0,1] r,g,b,a channels.
func FromRGBA8888(v uint32) (r, g, b, a float32) {
	r = float32(v&0x000000ff) / 255.0
	g = float32((v&0x0000ff00)>>8) / 255.0
	b = float32((v&0x00ff0000)>>16) / 255.0
	a = float32((v&0xff000000)>>24) / 255.0

	return
}

// ToFloat32Bits reinterprets the ABGR8888 packing of r,g,b,a as an
// IEEE-754 float32 with bit 24 cleared, to avoid NaN bit patterns. This
// is the alternate color-packing convention mentioned in the format
// notes; ToRGBA8888 is the default used by Particle.Col.
func ToFloat32Bits(r, g, b, a float32) float32 {
	packed := ToRGBA8888(r, g, b, a) & 0xfeffffff

	return math.Float32frombits(packed)
}

func lint(x, x0, x1, y0, y1 float64) float64 {
	rx0, rx1 := x0, x1
	if x0 > x1 {
		rx0, rx1 = x1, x0
	}

	switch {
	case x < rx0:
		return y0
	case x > rx1:
		return y1
	default:
		return y0 + (y1-y0)*(x-rx0)/(rx1-rx0)
	}
}

func clamp(v, min, max float64) float64 {
	switch {
	case v < min:
		return min
	case v > max:
		return max
	default:
		return v
	}
}
