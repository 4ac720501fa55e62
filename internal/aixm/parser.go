package aixm

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"runtime"

	"github.com/ffdumont/navprofile/internal/diag"
	"golang.org/x/sync/errgroup"
)

// successThreshold is the minimum fraction of Ase records that must
// parse cleanly for extraction to be considered successful (spec.md
// §7).
const successThreshold = 0.95

// Parse streams r token by token — peak memory stays independent of
// document size, per spec.md §4.2 — collecting Ase and Abd elements in
// document order, then fans per-record processing (coordinate parsing,
// arc rasterization, altitude normalization) out across a worker pool
// sized to the available cores. Results are written back into an
// index-sized slice so document order survives the concurrency, the
// same shape as the teacher's jobs-channel worker pool
// (pkg/v1/parallel.go), rebuilt here on errgroup.
//
// A malformed individual Ase is logged to log and dropped; the XML
// document itself being malformed is fatal. If fewer than 95% of Ase
// records parsed, Parse still returns the records it has plus a
// DatasetIncomplete error describing the shortfall.
func Parse(ctx context.Context, r io.Reader, log *diag.Log) ([]Record, error) {
	decoder := xml.NewDecoder(r)

	var rawAses []rawAse
	bordersByCode := make(map[string][]rawAbd)

	for {
		if err := ctx.Err(); err != nil {
			return nil, diag.Wrap(diag.KindCancelled, "AIXM parse cancelled", err)
		}
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, diag.Wrap(diag.KindInputMalformed, "AIXM document is not well-formed", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "Ase":
			var a rawAse
			if err := decoder.DecodeElement(&a, &se); err != nil {
				return nil, diag.Wrap(diag.KindInputMalformed, "malformed Ase element", err)
			}
			rawAses = append(rawAses, a)
		case "Abd":
			var b rawAbd
			if err := decoder.DecodeElement(&b, &se); err != nil {
				return nil, diag.Wrap(diag.KindInputMalformed, "malformed Abd element", err)
			}
			codeID := b.AbdUid.AseUid.CodeID
			bordersByCode[codeID] = append(bordersByCode[codeID], b)
		}
	}

	results := make([]*Record, len(rawAses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, a := range rawAses {
		i, a := i, a
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := processAse(a, bordersByCode[a.AseUid.CodeID])
			if err != nil {
				log.Record(diag.KindDatasetIncomplete, fmt.Sprintf("Ase codeId=%s", a.AseUid.CodeID), err.Error())
				log.Tally(false)
				return nil
			}
			log.Tally(true)
			results[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, diag.Wrap(diag.KindCancelled, "AIXM parse cancelled", err)
	}

	records := make([]Record, 0, len(results))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}

	if rate := log.SuccessRate(); rate < successThreshold {
		return records, diag.New(diag.KindDatasetIncomplete,
			fmt.Sprintf("only %.1f%% of airspace records parsed (need %.0f%%)", rate*100, successThreshold*100))
	}
	return records, nil
}
