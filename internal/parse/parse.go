// Package parse provides tolerant numeric parsers for catalog ingest.
//
// Every function accepts an optional string (a pointer, nil meaning
// "field absent") and never returns an error: integers default to 0 and
// floats default to NaN on absence or malformed input, matching the
// behavior of the original catalog generator's own parsers.
package parse

import (
	"math"
	"strconv"
)

func float32NaN() float32 { return float32(math.NaN()) }
func float64NaN() float64 { return math.NaN() }

// I32 parses s as an int32, returning 0 if s is nil, empty or malformed.
func I32(s *string) int32 {
	if s == nil || *s == "" {
		return 0
	}
	v, err := strconv.ParseInt(*s, 10, 32)
	if err != nil {
		return 0
	}

	return int32(v)
}

// I64 parses s as an int64, returning 0 if s is nil, empty or malformed.
func I64(s *string) int64 {
	if s == nil || *s == "" {
		return 0
	}
	v, err := strconv.ParseInt(*s, 10, 64)
	if err != nil {
		return 0
	}

	return v
}

// F32 parses s as a float32, returning NaN if s is nil, empty or malformed.
func F32(s *string) float32 {
	if s == nil || *s == "" {
		return float32NaN()
	}
	v, err := strconv.ParseFloat(*s, 32)
	if err != nil {
		return float32NaN()
	}

	return float32(v)
}

// F64 parses s as a float64, returning NaN if s is nil, empty or malformed.
func F64(s *string) float64 {
	if s == nil || *s == "" {
		return float64NaN()
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return float64NaN()
	}

	return v
}

// IsEmpty reports whether s is absent or zero-length.
func IsEmpty(s *string) bool {
	return s == nil || len(*s) == 0
}
