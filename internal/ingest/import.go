package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/rainbow/internal/model"
	"github.com/nao1215/rainbow/internal/source"
)

// Recorder stores the outcome of import runs.
type Recorder interface {
	SaveImport(ctx context.Context, record *model.ImportRecord) error
}

// Import ingests src and saves an import record describing the run.
// The record is saved even when ingestion fails; its Error field then holds
// the failure. The returned error is the ingestion error if there was one,
// otherwise the error from saving the record.
func (p *Pipeline) Import(ctx context.Context, src *source.Source, recorder Recorder) (*model.ImportRecord, error) {
	record := model.NewImportRecord(src.Location, src.Checksum, len(src.Lines))
	logger := p.logger.With("import_id", record.ID)

	logger.Info("import started",
		"source", src.Location,
		"lines", len(src.Lines),
		"bytes", src.Size,
	)

	result, ingestErr := p.Ingest(ctx, src.Lines)

	record.Accepted = result.Accepted
	record.Skipped = result.Skipped
	record.Blank = result.Blank
	record.Failed = result.Failed
	record.FinishedAt = time.Now().UTC()
	if ingestErr != nil {
		record.Error = ingestErr.Error()
	}

	// A canceled ctx must not stop the record of the canceled run from being saved.
	saveErr := recorder.SaveImport(context.WithoutCancel(ctx), record)
	if saveErr != nil {
		logger.Error("failed to save import record", "error", saveErr)
	}

	if ingestErr != nil {
		return record, fmt.Errorf("import of %s failed: %w", src.Location, ingestErr)
	}
	if saveErr != nil {
		return record, saveErr
	}

	logger.Info("import finished",
		"source", src.Location,
		"accepted", record.Accepted,
		"duration", record.Duration(),
	)
	return record, nil
}

// ImportAll imports every source in order and stops at the first failure.
// Records of completed runs are returned along with the error.
func (p *Pipeline) ImportAll(ctx context.Context, sources []*source.Source, recorder Recorder) ([]*model.ImportRecord, error) {
	records := make([]*model.ImportRecord, 0, len(sources))
	for _, src := range sources {
		record, err := p.Import(ctx, src, recorder)
		records = append(records, record)
		if err != nil {
			return records, err
		}
	}
	return records, nil
}

// IsCanceled reports whether err comes from a canceled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
