// Package export encodes registry reports and uploads them to report storage.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/objectregistry/internal/storage"
	"github.com/objectregistry/pkg/errors"
	"github.com/objectregistry/pkg/model"
	"github.com/objectregistry/pkg/utils"
	"github.com/objectregistry/pkg/writer"
)

const (
	KindPopulation  = "population"
	KindMaintenance = "maintenance"
)

// Exporter writes reports under reports/<run>/<kind><ext>.
type Exporter struct {
	storage     storage.Storage
	compression writer.Compression
	logger      utils.Logger
}

// New creates an Exporter. A nil logger discards output.
func New(store storage.Storage, compression writer.Compression, logger utils.Logger) *Exporter {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Exporter{storage: store, compression: compression, logger: logger}
}

// ExportPopulation uploads a population report and returns its key.
func (e *Exporter) ExportPopulation(ctx context.Context, report *model.PopulationReport) (string, error) {
	return upload(ctx, e, report.RunUUID, KindPopulation, report)
}

// ExportMaintenance uploads the maintenance history of a run and returns its key.
func (e *Exporter) ExportMaintenance(ctx context.Context, runUUID string, reports []*model.MaintenanceReport) (string, error) {
	if reports == nil {
		reports = make([]*model.MaintenanceReport, 0)
	}
	return upload(ctx, e, runUUID, KindMaintenance, reports)
}

// LoadPopulation downloads and decodes the population report of a run.
func (e *Exporter) LoadPopulation(ctx context.Context, runUUID string) (*model.PopulationReport, error) {
	key := e.Key(runUUID, KindPopulation)
	rc, err := e.storage.Download(ctx, key)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDownloadError, fmt.Sprintf("failed to download %s", key), err)
	}
	defer rc.Close()

	report, err := writer.Read[*model.PopulationReport](rc, e.compression)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDownloadError, fmt.Sprintf("failed to decode %s", key), err)
	}
	return report, nil
}

// List returns the keys exported for a run.
func (e *Exporter) List(ctx context.Context, runUUID string) ([]string, error) {
	return e.storage.List(ctx, storage.ReportKey(runUUID, "", "")+"/")
}

// Key returns the object key for a report kind of a run.
func (e *Exporter) Key(runUUID, kind string) string {
	return storage.ReportKey(runUUID, kind, e.compression.Extension())
}

// URL returns where an exported key can be fetched.
func (e *Exporter) URL(key string) string {
	return e.storage.GetURL(key)
}

func upload[T any](ctx context.Context, e *Exporter, runUUID, kind string, data T) (string, error) {
	if runUUID == "" {
		return "", errors.New(errors.CodeInvalidInput, "report has no run id")
	}

	payload, err := writer.NewCompressedWriter[T](e.compression).Bytes(data)
	if err != nil {
		return "", errors.Wrap(errors.CodeUploadError, fmt.Sprintf("failed to encode %s report", kind), err)
	}

	key := e.Key(runUUID, kind)
	if err := e.storage.Upload(ctx, key, bytes.NewReader(payload), e.compression.ContentType()); err != nil {
		return "", errors.Wrap(errors.CodeUploadError, fmt.Sprintf("failed to upload %s", key), err)
	}

	e.logger.Info("Exported %s report to %s (%d bytes)", kind, key, len(payload))
	return key, nil
}
