// Package ingest implements the Loader: it walks a catalog directory
// or single file, applies the quality-gating and derivation pipeline to
// every data line, and emits Particle records.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/starforge-tools/catgen/internal/catlog"
	"github.com/starforge-tools/catgen/internal/colid"
	"github.com/starforge-tools/catgen/internal/color"
	"github.com/starforge-tools/catgen/internal/coord"
	"github.com/starforge-tools/catgen/internal/errs"
	"github.com/starforge-tools/catgen/internal/particle"
	"github.com/starforge-tools/catgen/internal/parse"
	"github.com/starforge-tools/catgen/internal/sidecar"
	"github.com/starforge-tools/catgen/internal/units"
)

var fieldSplit = regexp.MustCompile(`[,\s]+`)

// Options configures the loader. Every field here is documented at the
// same granularity spec'd for the original generator's loader config.
type Options struct {
	MaxFiles   int // <0 unlimited
	MaxRecords int // <0 unlimited, per file

	PlxZeropoint  float64
	RuweCap       float32 // NaN disables the RUWE filter
	DistPcCap     float64
	PlxErrFaint   float64
	PlxErrBright  float64
	PlxErrCap     float64
	PhotDist      bool
	MagCorrections int // 0, 1 or 2
	AllowNegativePlx bool

	// MustLoad lists source ids that bypass every quality gate.
	MustLoad map[int64]struct{}

	// Additional is the sidecar chain consulted before any raw column.
	Additional sidecar.Chain

	// Columns maps ColId to column position. If nil, the loader derives
	// it per file from that file's header line.
	Columns colid.IndexMap
}

// Counters tallies per-gate rejections and per-magnitude bucket counts
// across one loader run.
type Counters struct {
	Total           int64
	Loaded          int64
	RejectedPlx     int64
	RejectedDist    int64
	RejectedGeodist int64
	RejectedFidelity int64
	RejectedRuwe    int64
	CountsPerMag    [22]int64
}

// Loader applies Options to every catalog shard it is pointed at.
type Loader struct {
	opts        Options
	log         *catlog.Logger
	hasGeodist  bool
	Counters    Counters
}

// New creates a Loader. log may be nil, in which case logging is
// silently skipped.
func New(opts Options, log *catlog.Logger) *Loader {
	return &Loader{
		opts:       opts,
		log:        log,
		hasGeodist: opts.Additional.HasColumn("geodist") || opts.Additional.HasColumn("geo_dist"),
	}
}

func (l *Loader) logf(format string, args ...any) {
	if l.log != nil {
		l.log.Debugf(format, args...)
	}
}

// LoadPath loads path, which may be a single file or a directory of
// shards. Files not ending in .gz, .gzip, .csv or .txt are silently
// skipped when path is a directory.
func (l *Loader) LoadPath(path string) ([]*particle.Particle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: stat %s: %w", path, errs.ErrInputNotFound)
	}

	if !info.IsDir() {
		return l.loadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read dir %s: %w", path, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isCatalogShard(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var out []*particle.Particle
	for i, name := range names {
		if l.opts.MaxFiles >= 0 && i >= l.opts.MaxFiles {
			break
		}
		l.logf("loading shard %s", name)
		part, err := l.loadFile(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}

	return out, nil
}

func isCatalogShard(name string) bool {
	return strings.HasSuffix(name, ".gz") || strings.HasSuffix(name, ".gzip") ||
		strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".txt")
}

func (l *Loader) loadFile(path string) ([]*particle.Particle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".gzip") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("ingest: gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out []*particle.Particle

	cols := l.opts.Columns
	haveHeader := false
	recCount := 0

	for sc.Scan() {
		line := sc.Text()
		if !haveHeader {
			haveHeader = true
			if cols == nil {
				cols = colid.NewIndexMap(fieldSplit.Split(strings.TrimSpace(line), -1))
			}
			continue
		}

		if l.opts.MaxRecords >= 0 && recCount >= l.opts.MaxRecords {
			break
		}
		recCount++
		l.Counters.Total++

		fields := fieldSplit.Split(strings.TrimRight(line, "\r\n"), -1)

		p, ok := l.parseLine(fields, cols)
		if !ok {
			continue
		}

		bucket := int(p.AppMag)
		if bucket < 0 {
			bucket = 0
		}
		if bucket > 21 {
			bucket = 21
		}
		l.Counters.CountsPerMag[bucket]++
		l.Counters.Loaded++

		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ingest: scan %s: %w", path, err)
	}

	return out, nil
}

func field(fields []string, idx int) *string {
	if idx == colid.OutOfRange || idx < 0 || idx >= len(fields) {
		return nil
	}

	return &fields[idx]
}

// value looks up a column by sidecar name first, falling back to the
// raw catalog column for id if the sidecar chain has no finite value.
func (l *Loader) value(name string, id colid.ColId, fields []string, cols colid.IndexMap, sourceID int64) float64 {
	if v, ok := l.opts.Additional.Get(name, sourceID); ok {
		return v
	}

	return parse.F64(field(fields, cols.Index(id)))
}

// parseLine runs the full per-line gating and derivation pipeline. The
// second return value is false when the line was rejected.
func (l *Loader) parseLine(fields []string, cols colid.IndexMap) (*particle.Particle, bool) {
	sourceID := parse.I64(field(fields, cols.Index(colid.SourceID)))

	hipField := field(fields, cols.Index(colid.Hip))
	hip := int32(-1)
	if hipField != nil && *hipField != "" {
		hip = parse.I32(hipField)
	}

	if sourceID == 0 {
		sourceID = int64(hip)
	}

	_, mustLoad := l.opts.MustLoad[sourceID]

	// Step 2: parallax and photometric distance.
	plx := l.value("plx", colid.Plx, fields, cols, sourceID)
	if _, ok := l.opts.Additional.Get("plx", sourceID); !ok {
		plx -= l.opts.PlxZeropoint
	}
	distPhot := l.value("dist_phot", colid.DistPhot, fields, cols, sourceID)

	// Step 3: apparent magnitude.
	appmag := l.value("gmag", colid.GMag, fields, cols, sourceID)
	bp := parse.F64(field(fields, cols.Index(colid.BPMag)))
	rp := parse.F64(field(fields, cols.Index(colid.RPMag)))
	if math.IsNaN(appmag) {
		if !math.IsNaN(bp) && !math.IsNaN(rp) {
			appmag = -2.5*math.Log10(math.Pow(10, (25.3385-bp)/2.5)+math.Pow(10, (24.7479-rp)/2.5)) + 25.6874
		}
	}

	// Step 4: fidelity gate.
	if !mustLoad && l.opts.Additional.HasColumn("fidelity") {
		v, ok := l.opts.Additional.Get("fidelity", sourceID)
		if !ok || v <= 0.5 {
			l.Counters.RejectedFidelity++

			return nil, false
		}
	}

	// Step 5: parallax gate.
	plxErr := l.value("plx_err", colid.PlxErr, fields, cols, sourceID)
	skipParallax := (l.opts.PhotDist && distPhot > 0) || l.hasGeodist
	if !mustLoad && !skipParallax {
		if math.IsNaN(appmag) {
			l.Counters.RejectedPlx++

			return nil, false
		}

		if plx <= 0 {
			if l.opts.AllowNegativePlx {
				plx = 0.04
			} else {
				l.Counters.RejectedPlx++

				return nil, false
			}
		}

		threshold := l.opts.PlxErrFaint
		if appmag < 13.1 {
			threshold = l.opts.PlxErrBright
		}
		if !(plx >= 0 && plxErr < plx*threshold && plxErr < l.opts.PlxErrCap) {
			l.Counters.RejectedPlx++

			return nil, false
		}
	}

	// Step 6: RUWE gate.
	ruwe := float32(l.value("ruwe", colid.RUWE, fields, cols, sourceID))
	ruweCapSet := !math.IsNaN(float64(l.opts.RuweCap))
	if !mustLoad && ruweCapSet && !(math.IsNaN(float64(ruwe)) || ruwe < l.opts.RuweCap) {
		l.Counters.RejectedRuwe++

		return nil, false
	}

	// Step 7: geometric distance gate.
	geodist := l.value("geodist", colid.GeoDist, fields, cols, sourceID)
	if !mustLoad && l.hasGeodist && math.IsNaN(geodist) {
		l.Counters.RejectedGeodist++

		return nil, false
	}

	// Step 8: distance selection.
	var distPc float64
	switch {
	case distPhot > 0:
		distPc = distPhot
	case geodist > 0:
		distPc = geodist
	default:
		distPc = 1000.0 / plx
	}

	// Step 9: distance gate.
	if !mustLoad && (math.IsNaN(distPc) || math.IsInf(distPc, 0) || distPc > l.opts.DistPcCap) {
		l.Counters.RejectedDist++

		return nil, false
	}

	// Step 10: Cartesian position.
	ra := parse.F64(field(fields, cols.Index(colid.RA))) * math.Pi / 180.0
	dec := parse.F64(field(fields, cols.Index(colid.Dec))) * math.Pi / 180.0
	distU := math.Max(distPc*units.PcToU, units.NegativeDist)
	pos := coord.SphericalToCartesian(ra, dec, distU)

	// Step 11: velocity.
	muAlpha := parse.F64(field(fields, cols.Index(colid.PMRA)))
	muDelta := parse.F64(field(fields, cols.Index(colid.PMDec)))
	radVel := parse.F64(field(fields, cols.Index(colid.RadVel)))
	if math.IsNaN(radVel) {
		radVel = 0
	}
	vel := coord.PropermotionToCartesian(muAlpha, muDelta, radVel, ra, dec, distPc)

	// Galactic latitude, used by the extinction and reddening fallbacks.
	posGal := coord.TransformVector(coord.Default.EqToGal, pos)
	sph := coord.CartesianToSpherical(posGal.X, posGal.Y, posGal.Z)
	b := sph.Y
	magCorrAux := math.Min(distPc, 150.0/math.Abs(math.Sin(b)))

	// Step 12: extinction.
	ag := math.NaN()
	if l.opts.MagCorrections >= 1 {
		if v, ok := l.opts.Additional.Get("ag", sourceID); ok {
			ag = v
		} else if v := parse.F64(field(fields, cols.Index(colid.AG))); !math.IsNaN(v) {
			ag = v
		}
		if math.IsNaN(ag) && l.opts.MagCorrections == 2 {
			ag = math.Min(3.2, magCorrAux*5.9e-4)
		}
	}
	if !math.IsNaN(ag) {
		appmag -= ag
	}

	// Step 13: absolute magnitude.
	distFloor := distPc
	if distFloor <= 0 {
		distFloor = 10.0
	}
	absmag := appmag - 5.0*math.Log10(math.Max(distFloor, 10.0)) + 5.0

	// Step 14: size.
	pseudoL := math.Pow(10.0, -0.4*absmag)
	size := math.Min(math.Sqrt(pseudoL)*(units.PcToM*units.MToU*0.15), units.SizeCap)

	// Step 15: color.
	ebr := math.NaN()
	if l.opts.MagCorrections >= 1 {
		if v, ok := l.opts.Additional.Get("ebp_min_rp", sourceID); ok {
			ebr = v
		} else if v := parse.F64(field(fields, cols.Index(colid.EBPMinRP))); !math.IsNaN(v) {
			ebr = v
		}
		if math.IsNaN(ebr) && l.opts.MagCorrections == 2 {
			ebr = math.Min(1.6, magCorrAux*2.9e-4)
		}
	}
	if math.IsNaN(ebr) {
		ebr = 0
	}

	bvField := field(fields, cols.Index(colid.ColIdx))
	teffRaw := l.value("teff", colid.Teff, fields, cols, sourceID)

	var colIdx, teff float64
	switch {
	case !math.IsNaN(teffRaw):
		teff = teffRaw
		if !math.IsNaN(bp) && !math.IsNaN(rp) {
			colIdx = bp - rp - ebr
		} else if bvField != nil {
			colIdx = parse.F64(bvField)
		} else {
			colIdx = 0.656
		}
	case !math.IsNaN(bp) && !math.IsNaN(rp):
		colIdx = bp - rp - ebr
		teff = color.XPToTeff(colIdx)
	case bvField != nil && !parse.IsEmpty(bvField):
		colIdx = parse.F64(bvField)
		teff = color.BVToTeffBallesteros(colIdx)
	default:
		colIdx = 0.656
		teff = color.BVToTeffBallesteros(colIdx)
	}

	cr, cg, cb := color.TeffToRGB(teff)
	packed := color.ToRGBA8888(cr, cg, cb, 1.0)

	p := &particle.Particle{
		X: pos.X, Y: pos.Y, Z: pos.Z,
		PMX: float32(vel.X), PMY: float32(vel.Y), PMZ: float32(vel.Z),
		MuAlpha: float32(muAlpha), MuDelta: float32(muDelta), RadVel: float32(radVel),
		AppMag: float32(appmag), AbsMag: float32(absmag),
		Col:  packed,
		Size: float32(size),
		Hip:  hip,
		ID:   sourceID,
	}
	if !math.IsNaN(float64(ruwe)) {
		p.SetExtra(colid.RUWE, ruwe)
	}
	if !math.IsNaN(plxErr) {
		p.SetExtra(colid.PlxErr, float32(plxErr))
	}
	p.SetExtra(colid.ColIdx, float32(colIdx))

	return p, true
}
