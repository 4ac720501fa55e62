// Package config defines the named option surface of spec.md §6.6 and
// the flag-based CLI parsing shared by every command, grounded on the
// teacher/pack's flag.FlagSet style (no cobra/viper anywhere in the
// corpus — see DESIGN.md).
package config

import (
	"flag"
	"time"
)

// Options is the full tunable surface spec.md §6.6 names, with its
// documented defaults.
type Options struct {
	CorridorHeightFt  float64
	CorridorWidthNM   float64
	ClimbRateFtpm     float64
	DescentRateFtpm   float64
	GroundSpeedKt     float64
	GeometryCacheSize int
	ElevationTimeoutS int

	LogDir   string
	LogLevel string
}

// Defaults returns spec.md §6.6's stated defaults.
func Defaults() Options {
	return Options{
		CorridorHeightFt:  1000,
		CorridorWidthNM:   10,
		ClimbRateFtpm:     500,
		DescentRateFtpm:   500,
		GroundSpeedKt:     100,
		GeometryCacheSize: 1024,
		ElevationTimeoutS: 5,
		LogLevel:          "info",
	}
}

// RegisterFlags binds o's fields onto fs, leaving any field the caller
// already set (via Defaults) as the flag's default value.
func (o *Options) RegisterFlags(fs *flag.FlagSet) {
	fs.Float64Var(&o.CorridorHeightFt, "corridor-height-ft", o.CorridorHeightFt, "vertical margin added above/below the flight path, in feet")
	fs.Float64Var(&o.CorridorWidthNM, "corridor-width-nm", o.CorridorWidthNM, "lateral margin added on each side of the flight path, in nautical miles")
	fs.Float64Var(&o.ClimbRateFtpm, "climb-rate-ftpm", o.ClimbRateFtpm, "profile corrector climb rate, feet per minute")
	fs.Float64Var(&o.DescentRateFtpm, "descent-rate-ftpm", o.DescentRateFtpm, "profile corrector descent rate, feet per minute")
	fs.Float64Var(&o.GroundSpeedKt, "ground-speed-kt", o.GroundSpeedKt, "profile corrector ground speed, knots")
	fs.IntVar(&o.GeometryCacheSize, "geometry-cache-size", o.GeometryCacheSize, "assembled-polygon LRU capacity")
	fs.IntVar(&o.ElevationTimeoutS, "elevation-timeout-s", o.ElevationTimeoutS, "per-call timeout for the terrain elevation oracle, seconds")
	fs.StringVar(&o.LogDir, "log-dir", o.LogDir, "directory for rotating log files (default: user cache dir)")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "log level: debug, info, warn, error")
}

// ElevationTimeout returns ElevationTimeoutS as a time.Duration.
func (o Options) ElevationTimeout() time.Duration {
	return time.Duration(o.ElevationTimeoutS) * time.Second
}

// ExitCode enumerates spec.md §6.6's command-surface exit codes.
type ExitCode int

const (
	ExitSuccess           ExitCode = 0
	ExitInvalidInput      ExitCode = 2
	ExitDatasetUnreadable ExitCode = 3
	ExitExtractionError   ExitCode = 4
	ExitNetworkFailure    ExitCode = 5
)
