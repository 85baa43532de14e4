// Package catgen is the convenience entry point over the library's
// internal packages: it wires ingest, cross-match, octree generation
// and binary writing into the single Run call cmd/catgen's main()
// drives, playing the same "top-level orchestration API" role the
// teacher library's own top-level package plays over its encoder and
// decoder internals.
package catgen

import (
	"fmt"
	"math"
	"os"

	"github.com/starforge-tools/catgen/internal/catlog"
	"github.com/starforge-tools/catgen/internal/colid"
	"github.com/starforge-tools/catgen/internal/config"
	"github.com/starforge-tools/catgen/internal/errs"
	"github.com/starforge-tools/catgen/internal/ingest"
	"github.com/starforge-tools/catgen/internal/largemap"
	"github.com/starforge-tools/catgen/internal/octree"
	"github.com/starforge-tools/catgen/internal/particle"
	"github.com/starforge-tools/catgen/internal/report"
	"github.com/starforge-tools/catgen/internal/sidecar"
	"github.com/starforge-tools/catgen/internal/writer"
	"github.com/starforge-tools/catgen/internal/xmatch"

	"github.com/starforge-tools/catgen/compress"
)

// Run executes the full pipeline described by cfg: load catalog shards,
// optionally cross-match against a Hipparcos catalog, build the octree
// and write metadata.bin / particles_NNNNNN.bin to cfg.Output.
func Run(cfg config.Config, logger *catlog.Logger) (*report.Report, error) {
	rep := report.New()

	additional, err := loadSidecars(cfg.Additional)
	if err != nil {
		return nil, err
	}

	ruweCap := float32(cfg.RuweCap)
	if cfg.RuweCap <= 0 {
		ruweCap = float32(math.NaN())
	}

	loader := ingest.New(ingest.Options{
		MaxFiles:         cfg.FilesCap,
		MaxRecords:       cfg.StarsCap,
		PlxZeropoint:     cfg.PlxZeropoint,
		RuweCap:          ruweCap,
		DistPcCap:        cfg.DistCap,
		PlxErrFaint:      cfg.PlxErrFaint,
		PlxErrBright:     cfg.PlxErrBright,
		PlxErrCap:        cfg.PlxErrCap,
		PhotDist:         cfg.PhotDist,
		MagCorrections:   cfg.MagCorrections,
		AllowNegativePlx: cfg.AllowNegativePlx,
		MustLoad:         cfg.MustLoad,
		Additional:       additional,
		Columns:          colid.NewIndexMap(cfg.Columns),
	}, logger)

	doneLoad := rep.Start(report.StageLoad)
	gaia, err := loader.LoadPath(cfg.Input)
	doneLoad()
	if err != nil {
		return nil, fmt.Errorf("catgen: load %s: %w", cfg.Input, err)
	}
	rep.Counters = loader.Counters

	doneXmatch := rep.Start(report.StageXmatch)
	list, merged, unmatched, err := crossMatch(cfg, gaia)
	doneXmatch()
	if err != nil {
		return nil, err
	}
	rep.MergedStars = merged
	rep.UnmatchedHip = unmatched

	tree := octree.New(cfg.MaxPart, cfg.Postprocess, cfg.ChildCount, cfg.ParentCount, cfg.DistCap, cfg.CentreOrigin, logger)

	doneGen := rep.Start(report.StageGenerate)
	nodeCount, starCount, depth, err := tree.Generate(list)
	doneGen()
	if err != nil {
		return nil, fmt.Errorf("catgen: generate octree: %w", err)
	}
	rep.NodeCount, rep.StarCount, rep.TreeDepth = nodeCount, starCount, depth

	if cfg.PrintTree {
		rep.TreeDump = tree.DebugString()
	}

	if cfg.DryRun {
		return rep, nil
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return nil, fmt.Errorf("catgen: prepare output %s: %w: %v", cfg.Output, errs.ErrOutputExists, err)
	}

	compressionType, err := cfg.CompressionType()
	if err != nil {
		return nil, err
	}
	codec, err := compress.CreateCodec(compressionType, "particle output")
	if err != nil {
		return nil, fmt.Errorf("catgen: %w", err)
	}

	w := writer.New(cfg.Output, codec, compressionType, logger)

	doneWrite := rep.Start(report.StageWrite)
	if err := w.WriteMetadata(tree); err != nil {
		doneWrite()

		return nil, err
	}
	if err := w.WriteParticles(tree, list); err != nil {
		doneWrite()

		return nil, err
	}
	doneWrite()

	rep.Compression = w.CompressionStats()

	return rep, nil
}

func loadSidecars(paths []string) (sidecar.Chain, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	chain := make(sidecar.Chain, 0, len(paths))
	for _, p := range paths {
		store, err := sidecar.Load(p)
		if err != nil {
			return nil, fmt.Errorf("catgen: load sidecar %s: %w", p, err)
		}
		chain = append(chain, store)
	}

	return chain, nil
}

// crossMatch loads the Hipparcos catalog and source_id->hip map named
// in cfg, if any, and merges them with gaia. When cfg.Hip is empty,
// gaia is returned unchanged.
func crossMatch(cfg config.Config, gaia []*particle.Particle) (list []*particle.Particle, merged, unmatched int, err error) {
	if cfg.Hip == "" {
		return gaia, 0, 0, nil
	}

	hip, err := xmatch.LoadHip(cfg.Hip)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("catgen: load hip catalog: %w", err)
	}

	var xmap *largemap.LargeLongMap[int32]
	if cfg.XmatchFile != "" {
		xmap, err = xmatch.LoadMap(cfg.XmatchFile)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("catgen: load xmatch map: %w", err)
		}
	} else {
		xmap = largemap.New[int32](1)
	}

	out := xmatch.Merge(gaia, hip, xmap)

	// Merge never appends a matched Hipparcos star separately: it is
	// always folded into the Gaia record it matched. So every record
	// beyond len(gaia) is an unmatched Hipparcos star, and the merged
	// count is whatever's left of hip.
	unmatched = len(out) - len(gaia)
	merged = len(hip) - unmatched

	return out, merged, unmatched, nil
}
