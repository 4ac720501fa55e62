// Command aixmload extracts an AIXM 4.5 XML dataset into the airspace
// store, per spec.md §4.2/§4.3.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/ffdumont/navprofile/internal/aixm"
	"github.com/ffdumont/navprofile/internal/applog"
	"github.com/ffdumont/navprofile/internal/config"
	"github.com/ffdumont/navprofile/internal/diag"
	"github.com/ffdumont/navprofile/internal/store"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("aixmload", flag.ContinueOnError)
	opts := config.Defaults()
	opts.RegisterFlags(fs)
	dbPath := fs.String("db", "navprofile.sqlite", "path to the airspace store database")
	inputPath := fs.String("input", "", "AIXM 4.5 XML file (optionally .zst-compressed)")

	if err := fs.Parse(args); err != nil {
		return int(config.ExitInvalidInput)
	}
	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "aixmload: -input is required")
		return int(config.ExitInvalidInput)
	}

	logger := applog.New(opts.LogDir, opts.LogLevel)
	ctx := context.Background()

	src, err := aixm.OpenSource(*inputPath)
	if err != nil {
		logger.Error("open source", "error", err)
		return int(config.ExitDatasetUnreadable)
	}
	defer src.Close()

	log := diag.NewLog()
	records, err := aixm.Parse(ctx, src, log)
	if err != nil {
		logger.Error("parse AIXM", "error", err)
		if asKind(err) == diag.KindInputMalformed {
			return int(config.ExitInvalidInput)
		}
		return int(config.ExitExtractionError)
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		logger.Error("open store", "error", err)
		return int(config.ExitExtractionError)
	}
	defer db.Close()

	if err := db.BulkInsert(ctx, records); err != nil {
		logger.Error("bulk insert", "error", err)
		return int(config.ExitExtractionError)
	}

	for _, ev := range log.Events() {
		logger.Warn("diagnostic", "kind", ev.Kind.String(), "subject", ev.Subject, "detail", ev.Detail)
	}

	stats, err := db.GetStatistics(ctx)
	if err != nil {
		logger.Error("get statistics", "error", err)
		return int(config.ExitExtractionError)
	}
	fmt.Printf("loaded %s airspaces (%.1f%% with geometry), success rate %.1f%%\n",
		humanize.Comma(int64(stats.TotalAirspaces)), stats.GeometryCoveragePct, log.SuccessRate()*100)

	return int(config.ExitSuccess)
}

func asKind(err error) diag.Kind {
	var de *diag.Error
	if e, ok := err.(*diag.Error); ok {
		de = e
	}
	if de == nil {
		return diag.KindInternal
	}
	return de.Kind
}
