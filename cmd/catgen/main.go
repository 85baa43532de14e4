// Command catgen builds a level-of-detail octree from Gaia/Hipparcos
// catalog shards and writes it out as metadata.bin plus one
// particles_NNNNNN.bin per octant, following the same load ->
// cross-match -> generate -> write stage order as the original
// generator's main().
package main

import (
	"fmt"
	"os"

	catgen "github.com/starforge-tools/catgen"
	"github.com/starforge-tools/catgen/internal/catlog"
	"github.com/starforge-tools/catgen/internal/config"
)

func main() {
	cfg, err := config.Parse("catgen", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, logFile, err := catlog.NewFileAndStderr(logPath(cfg.Output), cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logFile.Close()

	rep, err := catgen.Run(cfg, logger)
	if err != nil {
		logger.Errorf("%s", err)
		os.Exit(1)
	}

	logger.Infof("\n%s", rep.String())

	if cfg.PrintTree {
		logger.Infof("%s", rep.TreeDump)
	}
}

func logPath(outputDir string) string {
	if outputDir == "" {
		outputDir = "."
	}

	return outputDir + "/log"
}
