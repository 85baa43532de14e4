// Package report assembles the end-of-run summary catgen prints after
// a build: total load counts, gate rejection tallies, a magnitude
// histogram, octree shape statistics and stage timings, in the spirit
// of the per-file and per-stage log::info!/println! summaries the
// original generator emits as it works.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/starforge-tools/catgen/compress"
	"github.com/starforge-tools/catgen/internal/ingest"
)

// Stage names a pipeline phase for timing purposes.
type Stage string

const (
	StageLoad     Stage = "load"
	StageXmatch   Stage = "xmatch"
	StageGenerate Stage = "generate"
	StageWrite    Stage = "write"
)

// Report accumulates the figures printed at the end of a run.
type Report struct {
	Counters ingest.Counters

	MergedStars   int
	UnmatchedHip  int

	NodeCount  int
	StarCount  int
	TreeDepth  int

	// Compression holds the aggregate input/output byte totals across
	// every particle blob the writer compressed; zero value when output
	// compression is disabled (OriginalSize stays 0).
	Compression compress.CompressionStats

	// TreeDump holds the octree.DebugString() output when --printtree
	// was requested; empty otherwise.
	TreeDump string

	timings map[Stage]time.Duration
}

// New creates an empty Report.
func New() *Report {
	return &Report{timings: make(map[Stage]time.Duration, 4)}
}

// Start marks the beginning of a timed stage; call the returned func
// when the stage completes to record its elapsed duration.
func (r *Report) Start(stage Stage) func() {
	begin := time.Now()

	return func() {
		r.timings[stage] += time.Since(begin)
	}
}

// String renders the full end-of-run summary.
func (r *Report) String() string {
	var sb strings.Builder

	c := r.Counters
	fmt.Fprintf(&sb, "loaded %d/%d objects", c.Loaded, c.Total)
	if c.Total > 0 {
		fmt.Fprintf(&sb, " (%.3f%%)", 100.0*float64(c.Loaded)/float64(c.Total))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "rejected: fidelity=%d parallax=%d ruwe=%d geodist=%d distance=%d\n",
		c.RejectedFidelity, c.RejectedPlx, c.RejectedRuwe, c.RejectedGeodist, c.RejectedDist)

	sb.WriteString("magnitude histogram:\n")
	for mag, n := range c.CountsPerMag {
		if n == 0 {
			continue
		}
		fmt.Fprintf(&sb, "  %2d: %d\n", mag, n)
	}

	fmt.Fprintf(&sb, "cross-match: %d merged, %d unmatched Hipparcos stars\n", r.MergedStars, r.UnmatchedHip)
	fmt.Fprintf(&sb, "octree: %d nodes, %d stars placed, depth %d\n", r.NodeCount, r.StarCount, r.TreeDepth)

	if r.Compression.OriginalSize > 0 {
		fmt.Fprintf(&sb, "compression (%s): %d -> %d bytes (%.1f%% smaller)\n",
			r.Compression.Algorithm, r.Compression.OriginalSize, r.Compression.CompressedSize, r.Compression.SpaceSavings())
	}

	sb.WriteString("timings:\n")
	var total time.Duration
	for _, stage := range []Stage{StageLoad, StageXmatch, StageGenerate, StageWrite} {
		d := r.timings[stage]
		total += d
		fmt.Fprintf(&sb, "  %-10s %s\n", stage, d.Round(time.Millisecond))
	}
	fmt.Fprintf(&sb, "  %-10s %s\n", "total", total.Round(time.Millisecond))

	return sb.String()
}
