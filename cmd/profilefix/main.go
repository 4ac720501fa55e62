// Command profilefix corrects a flight path's altitudes into a
// flyable climb/descent profile, per spec.md §4.8.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ffdumont/navprofile/internal/applog"
	"github.com/ffdumont/navprofile/internal/config"
	"github.com/ffdumont/navprofile/internal/flightpath"
	"github.com/ffdumont/navprofile/internal/profile"
	"github.com/ffdumont/navprofile/internal/report"
	"github.com/ffdumont/navprofile/internal/terrain"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("profilefix", flag.ContinueOnError)
	opts := config.Defaults()
	opts.RegisterFlags(fs)
	kmlPath := fs.String("kml", "", "flight path KML file")
	outPath := fs.String("out", "", "corrected profile KML output path (default: stdout)")

	if err := fs.Parse(args); err != nil {
		return int(config.ExitInvalidInput)
	}
	if *kmlPath == "" {
		fmt.Fprintln(os.Stderr, "profilefix: -kml is required")
		return int(config.ExitInvalidInput)
	}

	logger := applog.New(opts.LogDir, opts.LogLevel)
	ctx := context.Background()

	f, err := os.Open(*kmlPath)
	if err != nil {
		logger.Error("open KML", "error", err)
		return int(config.ExitDatasetUnreadable)
	}
	defer f.Close()

	fp, err := flightpath.Parse(f)
	if err != nil {
		logger.Error("parse flight path", "error", err)
		return int(config.ExitInvalidInput)
	}

	oracle := terrain.NewOpenElevation(opts.ElevationTimeout())
	params := profile.Params{
		ClimbRateFtpm:   opts.ClimbRateFtpm,
		DescentRateFtpm: opts.DescentRateFtpm,
		GroundSpeedKt:   opts.GroundSpeedKt,
	}

	corrected, err := profile.Correct(ctx, fp, oracle, params)
	if err != nil {
		logger.Error("correct profile", "error", err)
		return int(config.ExitInvalidInput)
	}
	if corrected.EstimatedEndpoints {
		logger.Warn("endpoint elevation degraded to estimate; terrain oracle unavailable")
	}

	for _, b := range corrected.Branches {
		mark := ""
		if b.Unreachable {
			mark = " [unreachable]"
		}
		fmt.Fprintf(os.Stderr, "branch %d: %.1f NM %s %.0f->%.0f ft%s\n", b.Index, b.DistanceNM, b.Action, b.FromAlt, b.ToAlt, mark)
	}

	data, err := report.CorrectedProfileKML(corrected)
	if err != nil {
		logger.Error("serialize corrected profile", "error", err)
		return int(config.ExitExtractionError)
	}

	if *outPath == "" {
		fmt.Println(string(data))
		return int(config.ExitSuccess)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		logger.Error("write output", "error", err)
		return int(config.ExitExtractionError)
	}
	return int(config.ExitSuccess)
}
