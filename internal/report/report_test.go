package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/starforge-tools/catgen/internal/ingest"
)

func TestString_RendersCountsAndHistogram(t *testing.T) {
	r := New()
	r.Counters = ingest.Counters{
		Total:           100,
		Loaded:          80,
		RejectedFidelity: 5,
		RejectedPlx:     5,
		RejectedRuwe:    5,
		RejectedGeodist: 3,
		RejectedDist:    2,
	}
	r.Counters.CountsPerMag[3] = 42
	r.MergedStars = 7
	r.UnmatchedHip = 2
	r.NodeCount = 9
	r.StarCount = 80
	r.TreeDepth = 3

	out := r.String()

	assert.Contains(t, out, "loaded 80/100 objects")
	assert.Contains(t, out, "fidelity=5")
	assert.Contains(t, out, "ruwe=5")
	assert.Contains(t, out, "3: 42")
	assert.Contains(t, out, "7 merged, 2 unmatched")
	assert.Contains(t, out, "9 nodes, 80 stars placed, depth 3")
}

func TestString_OmitsZeroMagnitudeBuckets(t *testing.T) {
	r := New()
	r.Counters.CountsPerMag[5] = 1

	out := r.String()

	assert.Contains(t, out, " 5: 1")
	assert.NotContains(t, out, " 0: 0")
}

func TestStart_AccumulatesElapsedTime(t *testing.T) {
	r := New()

	done := r.Start(StageLoad)
	time.Sleep(2 * time.Millisecond)
	done()

	out := r.String()
	assert.Contains(t, out, "load")
	assert.NotContains(t, out, "0s\n  total      0s")
}

func TestString_HandlesZeroTotalWithoutDivideByZero(t *testing.T) {
	r := New()

	assert.NotPanics(t, func() {
		_ = r.String()
	})
}
