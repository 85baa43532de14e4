// Package config parses and validates catgen's command-line
// configuration, built on the standard library's flag package the way
// the teacher library's own example binaries build theirs.
package config

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/starforge-tools/catgen/format"
)

// Config holds every recognized CLI option, already validated.
type Config struct {
	Input  string
	Output string

	MaxPart         int
	PlxErrFaint     float64
	PlxErrBright    float64
	PlxErrCap       float64
	PlxZeropoint    float64
	MagCorrections  int
	AllowNegativePlx bool
	Postprocess     bool
	CentreOrigin    bool
	ChildCount      int
	ParentCount     int
	Hip             string
	DistCap         float64
	PhotDist        bool
	Additional      []string
	XmatchFile      string
	RuweCap         float64
	Columns         []string
	FilesCap        int
	StarsCap        int
	DryRun          bool
	Debug           bool
	PrintTree       bool
	CompressOutput  string

	// MustLoad holds source ids that bypass all ingest quality gates.
	// No CLI flag feeds this directly in the current interface; it
	// exists for programmatic callers and tests.
	MustLoad map[int64]struct{}
}

// Version is the reported program version for -v/--version.
const Version = "1.0.0"

// Defaults returns a Config populated with the documented defaults,
// before flag parsing or validation.
func Defaults() Config {
	return Config{
		MaxPart:          5000,
		PlxErrFaint:      0.5,
		PlxErrBright:     0.1,
		PlxErrCap:        1.0,
		PlxZeropoint:     -0.017,
		MagCorrections:   1,
		AllowNegativePlx: false,
		Postprocess:      false,
		CentreOrigin:     false,
		ChildCount:       1,
		ParentCount:      100,
		DistCap:          1.0e6,
		PhotDist:         false,
		RuweCap:          1.4,
		FilesCap:         -1,
		StarsCap:         -1,
		CompressOutput:   "none",
	}
}

// Parse builds a FlagSet over args (os.Args[1:] in normal operation),
// applies it atop Defaults, and validates the result.
func Parse(progName string, args []string) (Config, error) {
	cfg := Defaults()

	fs := flag.NewFlagSet(progName, flag.ContinueOnError)

	var (
		showVersion bool
		additional  string
		columns     string
	)

	fs.StringVar(&cfg.Input, "input", "", "catalog directory or single file")
	fs.StringVar(&cfg.Input, "i", "", "shorthand for --input")
	fs.StringVar(&cfg.Output, "output", "", "output directory")
	fs.StringVar(&cfg.Output, "o", "", "shorthand for --output")

	fs.IntVar(&cfg.MaxPart, "maxpart", cfg.MaxPart, "per-octant particle capacity")
	fs.Float64Var(&cfg.PlxErrFaint, "plxerrfaint", cfg.PlxErrFaint, "relative parallax error threshold, gmag>=13.1")
	fs.Float64Var(&cfg.PlxErrBright, "plxerrbright", cfg.PlxErrBright, "relative parallax error threshold, gmag<13.1")
	fs.Float64Var(&cfg.PlxZeropoint, "plxzeropoint", cfg.PlxZeropoint, "parallax zeropoint correction")
	fs.IntVar(&cfg.MagCorrections, "magcorrections", cfg.MagCorrections, "magnitude correction level {0,1,2}")
	fs.IntVar(&cfg.MagCorrections, "c", cfg.MagCorrections, "shorthand for --magcorrections")
	fs.BoolVar(&cfg.AllowNegativePlx, "allownegativeplx", cfg.AllowNegativePlx, "rewrite plx<=0 to 0.04 instead of rejecting")
	fs.BoolVar(&cfg.Postprocess, "postprocess", cfg.Postprocess, "enable low-occupancy postprocess merge")
	fs.BoolVar(&cfg.Postprocess, "p", cfg.Postprocess, "shorthand for --postprocess")
	fs.BoolVar(&cfg.CentreOrigin, "centreorigin", cfg.CentreOrigin, "recentre root cube near the origin")
	fs.IntVar(&cfg.ChildCount, "childcount", cfg.ChildCount, "postprocess child object-count threshold")
	fs.IntVar(&cfg.ParentCount, "parentcount", cfg.ParentCount, "postprocess parent object-count threshold")
	fs.StringVar(&cfg.Hip, "hip", "", "Hipparcos catalog CSV path")
	fs.Float64Var(&cfg.DistCap, "distcap", cfg.DistCap, "maximum accepted distance in pc")
	fs.BoolVar(&cfg.PhotDist, "photdist", cfg.PhotDist, "prefer photometric distance over parallax")
	fs.StringVar(&additional, "additional", "", "comma-separated list of sidecar CSV paths")
	fs.StringVar(&cfg.XmatchFile, "xmatchfile", "", "source_id,hip cross-match CSV path")
	fs.Float64Var(&cfg.RuweCap, "ruwe", cfg.RuweCap, "RUWE rejection threshold; NaN disables")
	fs.StringVar(&columns, "columns", "", "comma-separated column alias list")
	fs.IntVar(&cfg.FilesCap, "filescap", cfg.FilesCap, "maximum number of input files to read (<0 unlimited)")
	fs.IntVar(&cfg.StarsCap, "starscap", cfg.StarsCap, "maximum number of records per file (<0 unlimited)")
	fs.BoolVar(&cfg.DryRun, "dryrun", false, "do not write the output directory (it is never cleaned, with or without this flag)")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug-level logging")
	fs.BoolVar(&cfg.Debug, "d", false, "shorthand for --debug")
	fs.BoolVar(&cfg.PrintTree, "printtree", false, "print the generated octree structure to the log")
	fs.StringVar(&cfg.CompressOutput, "compress-output", cfg.CompressOutput, "compress particle blobs: none, zstd, s2 or lz4")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.BoolVar(&showVersion, "v", false, "shorthand for --version")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: parse flags: %w", err)
	}

	if showVersion {
		fmt.Fprintln(os.Stdout, Version)
		os.Exit(0)
	}

	cfg.Additional = splitNonEmpty(additional)
	cfg.Columns = splitNonEmpty(columns)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the required fields and canonicalizes cap-disabling
// sentinels (e.g. distcap<=0 means "no cap").
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("config: --input is required")
	}
	if c.Output == "" {
		return fmt.Errorf("config: --output is required")
	}
	if c.MaxPart <= 0 {
		return fmt.Errorf("config: --maxpart must be positive")
	}
	if c.MagCorrections < 0 || c.MagCorrections > 2 {
		return fmt.Errorf("config: --magcorrections must be 0, 1 or 2")
	}
	if c.DistCap <= 0 {
		c.DistCap = math.Inf(1)
	}
	if _, err := c.CompressionType(); err != nil {
		return err
	}

	return nil
}

// CompressionType resolves the --compress-output flag to the codec
// factory's enum, defaulting an empty string to CompressionNone.
func (c *Config) CompressionType() (format.CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(c.CompressOutput)) {
	case "", "none":
		return format.CompressionNone, nil
	case "zstd":
		return format.CompressionZstd, nil
	case "s2":
		return format.CompressionS2, nil
	case "lz4":
		return format.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("config: --compress-output: unrecognized codec %q", c.CompressOutput)
	}
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}

	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}

	return out
}
