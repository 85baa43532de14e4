// Package xmatch implements the Gaia/Hipparcos cross-match merge and
// the loaders for the external hip and source_id->hip map files it
// consumes.
package xmatch

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/starforge-tools/catgen/internal/colid"
	"github.com/starforge-tools/catgen/internal/color"
	"github.com/starforge-tools/catgen/internal/coord"
	"github.com/starforge-tools/catgen/internal/largemap"
	"github.com/starforge-tools/catgen/internal/parse"
	"github.com/starforge-tools/catgen/internal/particle"
	"github.com/starforge-tools/catgen/internal/units"
)

// LoadMap reads a two-column "source_id,hip" CSV (no header) into a
// LargeLongMap keyed by source_id.
func LoadMap(path string) (*largemap.LargeLongMap[int32], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("xmatch: open %s: %w", path, err)
	}
	defer f.Close()

	m := largemap.New[int32](64)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			continue
		}
		sourceID := parse.I64(&fields[0])
		hip := parse.I32(&fields[1])
		m.Put(sourceID, hip)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("xmatch: scan %s: %w", path, err)
	}

	return m, nil
}

// Merge fuses gaia and hip according to xmatchMap (source_id -> hip).
//
// For every Gaia star: if xmatchMap has no entry, or the entry's hip is
// not present in hip (indexed by Hip field), the Gaia star is kept
// as-is. Otherwise the lower-parallax-error source wins: when Gaia's
// plx_err is less than or equal to Hipparcos's, a merged record is
// built (Hipparcos as the base, Gaia's astrometry and photometry
// grafted on top); when Hipparcos wins, its record is kept unmodified.
// Hipparcos stars never matched are appended after every Gaia record,
// in their original load order.
func Merge(gaia, hip []*particle.Particle, xmatchMap *largemap.LargeLongMap[int32]) []*particle.Particle {
	hipByHip := make(map[int32]*particle.Particle, len(hip))
	for _, h := range hip {
		hipByHip[h.Hip] = h
	}
	used := make(map[int32]bool, len(hip))

	out := make([]*particle.Particle, 0, len(gaia)+len(hip))

	for _, g := range gaia {
		hipNum, ok := xmatchMap.Get(g.ID)
		if !ok {
			out = append(out, g)
			continue
		}

		h, ok := hipByHip[hipNum]
		if !ok {
			out = append(out, g)
			continue
		}
		used[hipNum] = true

		gErr := plxErrOf(g)
		hErr := plxErrOf(h)

		if gErr <= hErr {
			out = append(out, mergeGaiaWins(g, h))
		} else {
			out = append(out, h)
		}
	}

	for _, h := range hip {
		if !used[h.Hip] {
			out = append(out, h)
		}
	}

	return out
}

func plxErrOf(p *particle.Particle) float64 {
	if v, ok := p.ExtraValue(colid.PlxErr); ok {
		return float64(v)
	}

	return math.Inf(1)
}

// mergeGaiaWins builds a merged record that keeps h's names but
// overwrites id, position, velocity, proper motions, magnitudes, color
// and size with Gaia's values. If Gaia's distance is unknown (its
// Cartesian length sits within 1e-10 of NEGATIVE_DIST), the merged
// position is instead recomputed from Gaia's (ra, dec) at Hipparcos's
// distance, and Hipparcos's size is kept.
func mergeGaiaWins(g, h *particle.Particle) *particle.Particle {
	merged := *h

	merged.ID = g.ID
	merged.SetPosition(g.Position())
	merged.SetVelocity(g.Velocity())
	merged.MuAlpha = g.MuAlpha
	merged.MuDelta = g.MuDelta
	merged.RadVel = g.RadVel
	merged.AppMag = g.AppMag
	merged.AbsMag = g.AbsMag
	merged.Col = g.Col
	merged.Size = g.Size
	merged.Names = h.Names

	if math.Abs(g.Position().Len()-units.NegativeDist) < 1e-10 {
		gSph := coord.CartesianToSpherical(g.X, g.Y, g.Z)
		hSph := coord.CartesianToSpherical(h.X, h.Y, h.Z)
		merged.SetPosition(coord.SphericalToCartesian(gSph.X, gSph.Y, hSph.Z))
		merged.Size = h.Size
	}

	return &merged
}

// LoadHip reads a Hipparcos catalog CSV with the fixed column order
// hip,names,ra,dec,plx,plx_err,pmra,pmdec,gmag,col_idx (names
// '|'-separated). There is no quality gating on this path: Hipparcos
// entries are treated as pre-vetted.
func LoadHip(path string) ([]*particle.Particle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("xmatch: open hip %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out []*particle.Particle
	first := true

	for sc.Scan() {
		if first {
			first = false
			continue
		}
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 10 {
			continue
		}

		hip := parse.I32(&fields[0])
		var names []string
		if fields[1] != "" {
			names = strings.Split(fields[1], "|")
		}
		ra := parse.F64(&fields[2]) * math.Pi / 180.0
		dec := parse.F64(&fields[3]) * math.Pi / 180.0
		plx := parse.F64(&fields[4])
		plxErr := parse.F64(&fields[5])
		muAlpha := parse.F64(&fields[6])
		muDelta := parse.F64(&fields[7])
		appmag := parse.F64(&fields[8])
		colIdx := parse.F64(&fields[9])

		distPc := 1000.0 / plx
		distU := math.Max(distPc*units.PcToU, units.NegativeDist)
		pos := coord.SphericalToCartesian(ra, dec, distU)
		vel := coord.PropermotionToCartesian(muAlpha, muDelta, 0, ra, dec, distPc)

		distFloor := distPc
		if distFloor <= 0 {
			distFloor = 10.0
		}
		absmag := appmag - 5.0*math.Log10(math.Max(distFloor, 10.0)) + 5.0

		pseudoL := math.Pow(10.0, -0.4*absmag)
		size := math.Min(math.Sqrt(pseudoL)*(units.PcToM*units.MToU*0.15), units.SizeCap)

		teff := color.BVToTeffBallesteros(colIdx)
		cr, cg, cb := color.TeffToRGB(teff)
		packed := color.ToRGBA8888(cr, cg, cb, 1.0)

		p := &particle.Particle{
			X: pos.X, Y: pos.Y, Z: pos.Z,
			PMX: float32(vel.X), PMY: float32(vel.Y), PMZ: float32(vel.Z),
			MuAlpha: float32(muAlpha), MuDelta: float32(muDelta), RadVel: 0,
			AppMag: float32(appmag), AbsMag: float32(absmag),
			Col:  packed,
			Size: float32(size),
			Hip:  hip,
			ID:   int64(hip),
			Names: names,
		}
		p.SetExtra(colid.PlxErr, float32(plxErr))
		p.SetExtra(colid.ColIdx, float32(colIdx))

		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("xmatch: scan hip %s: %w", path, err)
	}

	return out, nil
}
