package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nonsonwune/seedgen/models"
)

// Importer converts a sectioned export into a validated dataset.
type Importer struct {
	opts Options
	log  zerolog.Logger
}

// New creates an importer.
func New(opts Options, lgr zerolog.Logger) *Importer {
	return &Importer{opts: opts, log: lgr}
}

// ImportFile opens path and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string) (*models.Dataset, *Report, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, nil, fmt.Errorf("error opening source: %w", err)
	}
	defer file.Close()

	return im.Import(ctx, file, path)
}

// Import reads, classifies and resolves every row of r. The report is returned
// even when the import fails, so callers can still show what was found.
func (im *Importer) Import(ctx context.Context, r io.Reader, source string) (*models.Dataset, *Report, error) {
	report := NewReport(uuid.NewString(), source)
	lgr := im.log.With().Str("run_id", report.RunID).Str("source", source).Logger()

	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	records, unreadable, err := ReadRecords(r)
	if err != nil {
		return nil, report, err
	}
	for _, e := range unreadable {
		report.Unreadable++
		report.record(e, nil)
	}
	if len(records) == 0 {
		lgr.Warn().Msg("source holds no records, the script will only reset the tables")
		return &models.Dataset{}, report, nil
	}
	report.Records = len(records)
	lgr.Debug().Int("records", len(records)).Int("unreadable", len(unreadable)).Msg("source read")

	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	var classifier Classifier
	sections := classifier.Partition(records)
	report.Headers = classifier.Headers
	report.Unsectioned = classifier.Unsectioned
	report.Skipped = classifier.Skipped
	report.AfterStop = classifier.AfterStop
	if classifier.Unsectioned > 0 {
		lgr.Warn().Int("rows", classifier.Unsectioned).Msg("rows before the first section header were ignored")
	}

	res := newResolver(im.opts, report, lgr)
	if err := res.run(ctx, sections); err != nil {
		return res.data, report, err
	}

	for _, s := range report.Summary() {
		if s.Rows == 0 {
			continue
		}
		lgr.Info().
			Str("section", s.Section).
			Int("rows", s.Rows).
			Int("accepted", s.Accepted).
			Int("malformed", s.Malformed).
			Int("duplicates", s.Duplicates).
			Int("fallbacks", s.Fallbacks).
			Int("dropped", s.Dropped).
			Msg("section resolved")
	}

	return res.data, report, nil
}
