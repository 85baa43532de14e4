// Package colid defines the closed set of recognized catalog column
// semantics (ColId) and resolves the many header-name aliases catalog
// shards use for each one.
package colid

import "strings"

// ColId identifies the semantic meaning of a catalog column, independent
// of whatever header name a particular shard happens to use for it.
type ColId uint8

const (
	Unknown ColId = iota
	SourceID
	Hip
	Names
	RA
	Dec
	Plx
	PlxErr
	PMRA
	PMDec
	RadVel
	GMag
	BPMag
	RPMag
	BPRP
	ColIdx
	RefEpoch
	Teff
	RUWE
	AG
	EBPMinRP
	GeoDist
	Fidelity
	DistPhot
)

// name is the canonical name for each ColId, used for logging.
var name = map[ColId]string{
	Unknown:  "unknown",
	SourceID: "source_id",
	Hip:      "hip",
	Names:    "names",
	RA:       "ra",
	Dec:      "dec",
	Plx:      "plx",
	PlxErr:   "plx_err",
	PMRA:     "pmra",
	PMDec:    "pmdec",
	RadVel:   "radvel",
	GMag:     "gmag",
	BPMag:    "bpmag",
	RPMag:    "rpmag",
	BPRP:     "bp_rp",
	ColIdx:   "col_idx",
	RefEpoch: "ref_epoch",
	Teff:     "teff",
	RUWE:     "ruwe",
	AG:       "ag",
	EBPMinRP: "ebp_min_rp",
	GeoDist:  "geodist",
	Fidelity: "fidelity",
	DistPhot: "dist_phot",
}

// String returns the canonical name of c.
func (c ColId) String() string {
	if n, ok := name[c]; ok {
		return n
	}

	return "unknown"
}

// aliases maps every recognized lowercase header alias to its ColId.
var aliases = map[string]ColId{
	"source_id": SourceID,
	"sourceid":  SourceID,
	"hip":       Hip,
	"name":      Names,
	"names":     Names,
	"ra":        RA,
	"alpha":     RA,
	"dec":       Dec,
	"delta":     Dec,
	"plx":       Plx,
	"parallax":  Plx,
	"plx_err":   PlxErr,
	"e_plx":     PlxErr,
	"parallax_error": PlxErr,
	"pmra":      PMRA,
	"pmalpha":   PMRA,
	"pmdec":     PMDec,
	"pmdelta":   PMDec,
	"pmde":      PMDec,
	"radvel":    RadVel,
	"rv":        RadVel,
	"radial_velocity": RadVel,
	"gmag":      GMag,
	"mag":       GMag,
	"phot_g_mean_mag": GMag,
	"bpmag":     BPMag,
	"bp":        BPMag,
	"phot_bp_mean_mag": BPMag,
	"rpmag":     RPMag,
	"rp":        RPMag,
	"phot_rp_mean_mag": RPMag,
	"bp_rp":     BPRP,
	"col_idx":   ColIdx,
	"b_v":       ColIdx,
	"bv":        ColIdx,
	"ref_epoch": RefEpoch,
	"teff":      Teff,
	"teff_gspphot": Teff,
	"ruwe":      RUWE,
	"ag":        AG,
	"ag_gspphot": AG,
	"ebp_min_rp": EBPMinRP,
	"ebpminrp":  EBPMinRP,
	"e_bp_min_rp_gspphot": EBPMinRP,
	"geodist":   GeoDist,
	"geo_dist":  GeoDist,
	"fidelity":  Fidelity,
	"fidelity_v2": Fidelity,
	"dist_phot": DistPhot,
	"distphot":  DistPhot,
	"distance_gspphot": DistPhot,
}

// Resolve maps a header column name (case-insensitive) to its ColId.
// Returns Unknown for any name not in the alias table.
func Resolve(header string) ColId {
	if id, ok := aliases[strings.ToLower(strings.TrimSpace(header))]; ok {
		return id
	}

	return Unknown
}

// OutOfRange is the sentinel column index used for a ColId that is absent
// from a --columns list.
const OutOfRange = 50000

// IndexMap maps each ColId to its zero-based position in an input line,
// as derived from a --columns alias list.
type IndexMap map[ColId]int

// NewIndexMap resolves a comma-separated list of column-name aliases
// (as given by --columns) into an IndexMap. Unrecognized entries are
// skipped with Unknown, and any ColId absent from columns maps to
// OutOfRange.
func NewIndexMap(columns []string) IndexMap {
	m := make(IndexMap, len(columns))
	for i, c := range columns {
		id := Resolve(c)
		if id == Unknown {
			continue
		}
		m[id] = i
	}

	return m
}

// Index returns the column position of id, or OutOfRange if id was not
// present in the original --columns list.
func (m IndexMap) Index(id ColId) int {
	if i, ok := m[id]; ok {
		return i
	}

	return OutOfRange
}
