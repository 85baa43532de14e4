// Package coord implements the spherical/Cartesian/proper-motion
// conversions and the galactic<->equatorial rotation used to derive a
// star's position, velocity and extinction inputs.
//
// The galactic<->equatorial rotation is built as a 4x4 homogeneous
// matrix product with gonum.org/v1/gonum/mat.Dense, taking over the
// role nalgebra::Matrix4 plays in the reference implementation this
// package is grounded on.
package coord

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/starforge-tools/catgen/internal/units"
	"github.com/starforge-tools/catgen/internal/vecmath"
)

// IAU galactic pole/node angles, in degrees.
const (
	angleR = 32.93192
	angleQ = 27.12825
	angleP = 192.85948
)

// Rotation holds the precomputed, process-wide galactic<->equatorial
// rotation matrices. Both matrices are immutable once built, so a single
// shared Rotation value is safe for concurrent read access.
type Rotation struct {
	GalToEq *mat.Dense
	EqToGal *mat.Dense
}

// Default is the process-wide Rotation instance, built once at package
// initialization from the IAU angles.
var Default = NewRotation()

// NewRotation builds the galactic->equatorial matrix as the product
// Y(90+P) . Z(90-Q) . Y(-R), and the equatorial->galactic matrix as its
// true matrix inverse (the two are verified to round-trip a test vector
// within 1e-12, see coord_test.go).
func NewRotation() Rotation {
	galToEq := mat.NewDense(4, 4, nil)
	galToEq.Mul(rotY(90.0+angleP), rotZ(90.0-angleQ))
	galToEq.Mul(galToEq, rotY(-angleR))

	var eqToGal mat.Dense
	if err := eqToGal.Inverse(galToEq); err != nil {
		// The product of three rotation matrices is always invertible;
		// this can only fail on a programming error in the angle setup.
		panic("coord: galactic rotation matrix is not invertible: " + err.Error())
	}

	return Rotation{GalToEq: galToEq, EqToGal: &eqToGal}
}

// rotY returns the 4x4 homogeneous rotation matrix around Y by degDeg degrees.
func rotY(degDeg float64) *mat.Dense {
	t := degDeg * math.Pi / 180.0
	c, s := math.Cos(t), math.Sin(t)

	return mat.NewDense(4, 4, []float64{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	})
}

// rotZ returns the 4x4 homogeneous rotation matrix around Z by degDeg degrees.
func rotZ(degDeg float64) *mat.Dense {
	t := degDeg * math.Pi / 180.0
	c, s := math.Cos(t), math.Sin(t)

	return mat.NewDense(4, 4, []float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// TransformVector applies the linear (rotation-only) part of m to v,
// ignoring any translation component — the homogeneous-matrix analogue
// of nalgebra's Matrix4::transform_vector.
func TransformVector(m *mat.Dense, v vecmath.Vec3) vecmath.Vec3 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = m.At(i, 0)*v.X + m.At(i, 1)*v.Y + m.At(i, 2)*v.Z
	}

	return vecmath.Vec3{X: out[0], Y: out[1], Z: out[2]}
}

// SphericalToCartesian converts spherical coordinates (lon, lat in
// radians, r) to Cartesian coordinates in the same units as r.
//
// Note the y-axis is "up": x = r*cos(lat)*sin(lon), y = r*sin(lat),
// z = r*cos(lat)*cos(lon). This is the catalog-wide convention carried
// over from the original generator for downstream compatibility.
func SphericalToCartesian(lon, lat, r float64) vecmath.Vec3 {
	coslat := math.Cos(lat)

	return vecmath.Vec3{
		X: r * coslat * math.Sin(lon),
		Y: r * math.Sin(lat),
		Z: r * coslat * math.Cos(lon),
	}
}

// CartesianToSpherical converts Cartesian x,y,z to spherical coordinates,
// returned as a Vec3{X: alpha, Y: delta, Z: r} with alpha in [0, 2*pi).
func CartesianToSpherical(x, y, z float64) vecmath.Vec3 {
	x2, y2, z2 := x*x, y*y, z*z
	r := math.Sqrt(x2 + y2 + z2)

	alpha := math.Atan2(x, z)
	if alpha < 0.0 {
		alpha += 2.0 * math.Pi
	}

	var delta float64
	if x2+z2 == 0.0 {
		if y > 0.0 {
			delta = math.Pi / 2.0
		} else {
			delta = -math.Pi / 2.0
		}
	} else {
		delta = math.Atan(y / math.Sqrt(x2+z2))
	}

	return vecmath.Vec3{X: alpha, Y: delta, Z: r}
}

// PropermotionToCartesian converts proper motions (mas/yr), radial
// velocity (km/s) and position (ra/dec in radians, distance in pc) into
// a Cartesian velocity in internal units per year.
func PropermotionToCartesian(muAlphaStar, muDelta, radVel, raRad, decRad, distPc float64) vecmath.Vec3 {
	ma := muAlphaStar * units.MilliarcsecToArcsec
	md := muDelta * units.MilliarcsecToArcsec

	vta := ma * distPc * 4.74
	vtd := md * distPc * 4.74

	cosAlpha, sinAlpha := math.Cos(raRad), math.Sin(raRad)
	cosDelta, sinDelta := math.Cos(decRad), math.Sin(decRad)

	vx := (radVel * cosDelta * cosAlpha) - (vta * sinAlpha) - (vtd * sinDelta * cosAlpha)
	vy := (radVel * cosDelta * sinAlpha) + (vta * cosAlpha) - (vtd * sinDelta * sinAlpha)
	vz := (radVel * sinDelta) + (vtd * cosDelta)

	toUPerYear := units.KmToU / units.SecToYear

	return vecmath.Vec3{X: vx * toUPerYear, Y: vy * toUPerYear, Z: vz * toUPerYear}
}
