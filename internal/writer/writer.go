// Package writer serializes a built octree and its particles into the
// big-endian metadata.bin / particles_NNNNNN.bin layout, using the
// version-marker framing and pooled byte buffers in the style the
// teacher library reuses across its own binary encoders, sized here off
// this package's own fixed record layouts (see buffer.go).
package writer

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"unicode/utf16"

	"github.com/starforge-tools/catgen/compress"
	"github.com/starforge-tools/catgen/endian"
	"github.com/starforge-tools/catgen/format"
	"github.com/starforge-tools/catgen/internal/catlog"
	"github.com/starforge-tools/catgen/internal/errs"
	"github.com/starforge-tools/catgen/internal/octree"
	"github.com/starforge-tools/catgen/internal/particle"
)

// versionMarker precedes every file's version number, mirroring the
// two-int32 framing both metadata.bin and particles_NNNNNN.bin share.
const versionMarker int32 = -1

const (
	metadataVersion int32 = 1
	particleVersion int32 = 2
)

var engine = endian.GetBigEndianEngine()

func appendInt32(bb *byteBuffer, v int32) {
	bb.MustWrite(engine.AppendUint32(nil, uint32(v)))
}

func appendInt64(bb *byteBuffer, v int64) {
	bb.MustWrite(engine.AppendUint64(nil, uint64(v)))
}

func appendFloat32(bb *byteBuffer, v float32) {
	bb.MustWrite(engine.AppendUint32(nil, math.Float32bits(v)))
}

func appendFloat64(bb *byteBuffer, v float64) {
	bb.MustWrite(engine.AppendUint64(nil, math.Float64bits(v)))
}

// Writer serializes a finished tree to outputDir. An optional Codec
// compresses each particle file's body (everything after the
// version/count header) before it hits disk; nil disables compression.
type Writer struct {
	outputDir       string
	codec           compress.Codec
	compressionType format.CompressionType
	log             *catlog.Logger

	originalBytes   int64
	compressedBytes int64
}

// New creates a Writer rooted at outputDir. codec may be nil, which is
// equivalent to passing compress.NewNoOpCompressor(). compressionType
// is recorded only to label the aggregate CompressionStats this Writer
// accumulates across WriteParticles.
func New(outputDir string, codec compress.Codec, compressionType format.CompressionType, log *catlog.Logger) *Writer {
	return &Writer{outputDir: outputDir, codec: codec, compressionType: compressionType, log: log}
}

func (w *Writer) logf(fstr string, args ...any) {
	if w.log != nil {
		w.log.Infof(fstr, args...)
	}
}

// CompressionStats reports the aggregate input/output byte totals across
// every particle blob this Writer has compressed so far.
func (w *Writer) CompressionStats() compress.CompressionStats {
	return compress.CompressionStats{
		Algorithm:      w.compressionType,
		OriginalSize:   w.originalBytes,
		CompressedSize: w.compressedBytes,
	}
}

// WriteMetadata writes outputDir/metadata.bin: a version-marker header
// followed by one fixed-size record per non-deleted octant, in arena
// order.
func (w *Writer) WriteMetadata(tree *octree.Octree) error {
	nodes := tree.Nodes()

	live := make([]*octree.Octant, 0, len(nodes))
	for _, n := range nodes {
		if !n.Deleted {
			live = append(live, n)
		}
	}

	w.logf("writing metadata (%d nodes): %s/metadata.bin", len(live), w.outputDir)

	bb := getMetadataBuffer()
	defer putMetadataBuffer(bb)

	appendInt32(bb, versionMarker)
	appendInt32(bb, metadataVersion)
	appendInt32(bb, int32(len(live)))

	for _, n := range live {
		appendOctant(bb, n)
	}

	path := filepath.Join(w.outputDir, "metadata.bin")
	if err := os.WriteFile(path, bb.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writer: write %s: %w", path, err)
	}

	return nil
}

func appendOctant(bb *byteBuffer, n *octree.Octant) {
	appendInt64(bb, n.ID)
	appendFloat32(bb, float32(n.Centre.X))
	appendFloat32(bb, float32(n.Centre.Y))
	appendFloat32(bb, float32(n.Centre.Z))
	appendFloat32(bb, float32(n.Size.X))
	appendFloat32(bb, float32(n.Size.Y))
	appendFloat32(bb, float32(n.Size.Z))

	for _, cid := range n.Children {
		if cid == -1 {
			appendInt32(bb, -1)
		} else {
			appendInt32(bb, int32(cid))
		}
	}

	appendInt32(bb, int32(n.Level))
	appendInt32(bb, int32(n.NumObjectsRec))
	appendInt32(bb, int32(n.NumObjects))
	appendInt32(bb, int32(n.NumChildren))
}

// WriteParticles writes one outputDir/particles/particles_NNNNNN.bin
// per non-deleted octant, NNNNNN being the octant id zero-padded to 6
// digits. list is indexed by the catalog indices stored in each
// octant's Objects.
func (w *Writer) WriteParticles(tree *octree.Octree, list []*particle.Particle) error {
	particlesDir := filepath.Join(w.outputDir, "particles")
	if err := os.MkdirAll(particlesDir, 0o755); err != nil {
		return fmt.Errorf("writer: create %s: %w", particlesDir, err)
	}

	codec := w.codec
	if codec == nil {
		codec = compress.NewNoOpCompressor()
	}

	for _, n := range tree.Nodes() {
		if n.Deleted {
			continue
		}

		path := filepath.Join(particlesDir, fmt.Sprintf("particles_%06d.bin", n.ID))
		w.logf("writing %d particles of node %d to %s", len(n.Objects), n.ID, path)

		body := getParticleBuffer()

		for _, starIdx := range n.Objects {
			if starIdx < 0 || starIdx >= len(list) {
				putParticleBuffer(body)

				return fmt.Errorf("writer: node %d: star index %d: %w", n.ID, starIdx, errs.ErrStarIndexOutOfRange)
			}

			appendParticle(body, list[starIdx])
		}

		bodyLen := len(body.Bytes())
		compressed, err := codec.Compress(body.Bytes())
		putParticleBuffer(body)
		if err != nil {
			return fmt.Errorf("writer: compress node %d: %w", n.ID, err)
		}
		if w.compressionType != format.CompressionNone {
			w.originalBytes += int64(bodyLen)
			w.compressedBytes += int64(len(compressed))
		}

		hdr := getParticleBuffer()
		appendInt32(hdr, versionMarker)
		appendInt32(hdr, particleVersion)
		appendInt32(hdr, int32(len(n.Objects)))
		hdr.MustWrite(compressed)

		if err := os.WriteFile(path, hdr.Bytes(), 0o644); err != nil {
			putParticleBuffer(hdr)

			return fmt.Errorf("writer: write %s: %w", path, err)
		}
		putParticleBuffer(hdr)
	}

	return nil
}

func appendParticle(bb *byteBuffer, p *particle.Particle) {
	appendFloat64(bb, p.X)
	appendFloat64(bb, p.Y)
	appendFloat64(bb, p.Z)

	appendFloat32(bb, p.PMX)
	appendFloat32(bb, p.PMY)
	appendFloat32(bb, p.PMZ)
	appendFloat32(bb, p.MuAlpha)
	appendFloat32(bb, p.MuDelta)
	appendFloat32(bb, p.RadVel)
	appendFloat32(bb, p.AppMag)
	appendFloat32(bb, p.AbsMag)
	bb.MustWrite(engine.AppendUint32(nil, p.Col))
	appendFloat32(bb, p.Size)

	appendInt32(bb, p.Hip)
	appendInt64(bb, p.ID)

	name := joinNames(p.Names)
	codeUnits := utf16.Encode([]rune(name))

	appendInt32(bb, int32(len(codeUnits)))
	for _, u := range codeUnits {
		bb.MustWrite(engine.AppendUint16(nil, u))
	}
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return ""
	}

	out := names[0]
	for _, n := range names[1:] {
		out += "|" + n
	}

	return out
}
