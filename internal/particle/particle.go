// Package particle defines the in-memory representation of a single
// catalog object as it flows from ingest through cross-match and into
// the octree and binary writer.
package particle

import (
	"math"

	"github.com/starforge-tools/catgen/internal/colid"
	"github.com/starforge-tools/catgen/internal/vecmath"
)

// Particle is one star (or merged Gaia/Hipparcos object) as carried
// through the pipeline. Coordinates and velocity are Cartesian in
// internal length units (see internal/units); MuAlpha/MuDelta/RadVel
// retain the original catalog units (mas/yr, mas/yr, km/s) for
// diagnostics and sidecar lookups.
type Particle struct {
	X, Y, Z    float64
	PMX        float32
	PMY        float32
	PMZ        float32
	MuAlpha    float32
	MuDelta    float32
	RadVel     float32
	AppMag     float32
	AbsMag     float32
	Col        uint32 // plain ABGR packing, see color.ToRGBA8888
	Size       float32
	Hip        int32
	ID         int64
	Names      []string
	Extra      map[colid.ColId]float32
}

// Position returns the Cartesian position of p.
func (p *Particle) Position() vecmath.Vec3 {
	return vecmath.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// SetPosition overwrites p's Cartesian position.
func (p *Particle) SetPosition(v vecmath.Vec3) {
	p.X, p.Y, p.Z = v.X, v.Y, v.Z
}

// Velocity returns the Cartesian velocity of p.
func (p *Particle) Velocity() vecmath.Vec3 {
	return vecmath.Vec3{X: float64(p.PMX), Y: float64(p.PMY), Z: float64(p.PMZ)}
}

// SetVelocity overwrites p's Cartesian velocity.
func (p *Particle) SetVelocity(v vecmath.Vec3) {
	p.PMX, p.PMY, p.PMZ = float32(v.X), float32(v.Y), float32(v.Z)
}

// HasHip reports whether p originates from (or was merged with) a
// Hipparcos entry.
func (p *Particle) HasHip() bool {
	return p.Hip > 0
}

// IsValid reports whether p's position and magnitude are finite and
// therefore safe to insert into the octree. Objects failing this check
// should have already been rejected during ingest; this is a final
// backstop before octree insertion.
func (p *Particle) IsValid() bool {
	return p.Position().IsFinite() && !isNaN32(p.AppMag) && !math.IsInf(float64(p.AppMag), 0)
}

func isNaN32(f float32) bool {
	return f != f
}

// ExtraValue returns the sidecar-provided value for id, and whether it was
// present.
func (p *Particle) ExtraValue(id colid.ColId) (float32, bool) {
	if p.Extra == nil {
		return 0, false
	}
	v, ok := p.Extra[id]

	return v, ok
}

// SetExtra records a sidecar-provided value for id, lazily allocating
// the backing map.
func (p *Particle) SetExtra(id colid.ColId, v float32) {
	if p.Extra == nil {
		p.Extra = make(map[colid.ColId]float32, 1)
	}
	p.Extra[id] = v
}
