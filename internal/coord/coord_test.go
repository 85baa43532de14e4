package coord

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starforge-tools/catgen/internal/vecmath"
)

func TestNewRotation_Invertible(t *testing.T) {
	rot := NewRotation()

	require := assert.New(t)
	require.NotNil(rot.GalToEq)
	require.NotNil(rot.EqToGal)
}

func TestRotation_RoundTrip(t *testing.T) {
	rot := Default
	v := vecmath.Vec3{X: 1.0, Y: 2.0, Z: 3.0}

	eq := TransformVector(rot.GalToEq, v)
	back := TransformVector(rot.EqToGal, eq)

	assert.InDelta(t, v.X, back.X, 1e-12)
	assert.InDelta(t, v.Y, back.Y, 1e-12)
	assert.InDelta(t, v.Z, back.Z, 1e-12)
}

func TestTransformVector_PreservesLength(t *testing.T) {
	v := vecmath.Vec3{X: 3.0, Y: 4.0, Z: 0.0}
	out := TransformVector(Default.GalToEq, v)

	assert.InDelta(t, v.Len(), out.Len(), 1e-9)
}

func TestSphericalCartesianRoundTrip(t *testing.T) {
	lon := 1.2
	lat := 0.4
	r := 10.0

	v := SphericalToCartesian(lon, lat, r)
	sph := CartesianToSpherical(v.X, v.Y, v.Z)

	assert.InDelta(t, r, sph.Z, 1e-9)

	back := SphericalToCartesian(sph.X, sph.Y, sph.Z)
	assert.InDelta(t, v.X, back.X, 1e-9)
	assert.InDelta(t, v.Y, back.Y, 1e-9)
	assert.InDelta(t, v.Z, back.Z, 1e-9)
}

func TestSphericalToCartesian_PoleHasNoHorizontalComponent(t *testing.T) {
	v := SphericalToCartesian(0, math.Pi/2, 5.0)

	assert.InDelta(t, 0.0, v.X, 1e-9)
	assert.InDelta(t, 0.0, v.Z, 1e-9)
	assert.InDelta(t, 5.0, v.Y, 1e-9)
}

func TestPropermotionToCartesian_ZeroMotionIsZero(t *testing.T) {
	v := PropermotionToCartesian(0, 0, 0, 1.0, 0.5, 100.0)

	assert.Equal(t, 0.0, v.X)
	assert.Equal(t, 0.0, v.Y)
	assert.Equal(t, 0.0, v.Z)
}
