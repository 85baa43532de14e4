// Package units collects the physical and internal-unit constants shared
// across catgen's ingest, coordinate and octree packages.
package units

const (
	// MilliarcsecToArcsec converts mas to arcsec.
	MilliarcsecToArcsec = 1.0 / 1000.0

	// YearToSec is the number of SI seconds in a Julian year.
	YearToSec = 31557600.0
	// SecToYear is the inverse of YearToSec.
	SecToYear = 1.0 / YearToSec

	// PcToKm is one parsec expressed in kilometers.
	PcToKm = 3.08567758149137e13
	// PcToM is one parsec expressed in meters.
	PcToM = PcToKm * 1000.0

	// MToU converts meters to internal units: 1 m = 1e-9 U, so 1 U = 1e9 m.
	MToU = 1e-9
	// UToM is the inverse of MToU.
	UToM = 1.0 / MToU

	// KmToU converts kilometers to internal units.
	KmToU = MToU * 1000.0
	// UToKm is the inverse of KmToU.
	UToKm = 1.0 / KmToU

	// PcToU is one parsec expressed in internal units.
	PcToU = PcToKm * KmToU
	// UToPc is the inverse of PcToU.
	UToPc = 1.0 / PcToU

	// NegativeDist is the sentinel minimum distance (1 m) denoting "distance unknown/negative".
	NegativeDist = 1.0 * MToU

	// SizeCap is the maximum synthetic pseudo-luminosity size, in internal units.
	SizeCap = 1e10

	// MaxOctreeDepth is the maximum octree level; beyond it, i64 octant ids are no longer unique.
	MaxOctreeDepth = 20
)
