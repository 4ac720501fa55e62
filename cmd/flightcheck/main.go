// Command flightcheck checks a flight path against a national
// airspace dataset, reporting every airspace it crosses, per spec.md
// §4.5/§4.9.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ffdumont/navprofile/internal/applog"
	"github.com/ffdumont/navprofile/internal/config"
	"github.com/ffdumont/navprofile/internal/corridor"
	"github.com/ffdumont/navprofile/internal/flightpath"
	"github.com/ffdumont/navprofile/internal/geometry"
	"github.com/ffdumont/navprofile/internal/report"
	"github.com/ffdumont/navprofile/internal/spatial"
	"github.com/ffdumont/navprofile/internal/store"
	"github.com/mattn/go-isatty"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("flightcheck", flag.ContinueOnError)
	opts := config.Defaults()
	opts.RegisterFlags(fs)
	dbPath := fs.String("db", "navprofile.sqlite", "path to the airspace store database")
	kmlPath := fs.String("kml", "", "flight path KML file (route or GPS trace)")
	jsonOut := fs.Bool("json", false, "print machine-readable JSON instead of a text summary")

	if err := fs.Parse(args); err != nil {
		return int(config.ExitInvalidInput)
	}
	if *kmlPath == "" {
		fmt.Fprintln(os.Stderr, "flightcheck: -kml is required")
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

	db, err := store.Open(*dbPath)
	if err != nil {
		logger.Error("open store", "error", err)
		return int(config.ExitDatasetUnreadable)
	}
	defer db.Close()

	loader, err := geometry.NewLoader(db, opts.GeometryCacheSize, nil)
	if err != nil {
		logger.Error("build geometry loader", "error", err)
		return int(config.ExitExtractionError)
	}

	idx, err := spatial.Build(ctx, db)
	if err != nil {
		logger.Error("build spatial index", "error", err)
		return int(config.ExitExtractionError)
	}

	c := corridor.Build(fp, opts.CorridorWidthNM, opts.CorridorHeightFt)
	engine := &spatial.Engine{Index: idx, Geometry: loader, Airspace: db}

	crossings, err := engine.Crossings(ctx, c)
	if err != nil {
		logger.Error("compute crossings", "error", err)
		return int(config.ExitExtractionError)
	}

	if *jsonOut {
		data, err := report.JSON(crossings)
		if err != nil {
			logger.Error("serialize crossings", "error", err)
			return int(config.ExitExtractionError)
		}
		fmt.Println(string(data))
	} else {
		summary := report.Categorize(crossings)
		color := isatty.IsTerminal(os.Stdout.Fd())
		fmt.Print(summary.Text(color))
	}

	return int(config.ExitSuccess)
}
