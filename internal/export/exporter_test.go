package export

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objectregistry/internal/mock"
	"github.com/objectregistry/internal/storage"
	"github.com/objectregistry/pkg/errors"
	"github.com/objectregistry/pkg/model"
	"github.com/objectregistry/pkg/writer"
)

func sampleReport(runUUID string) *model.PopulationReport {
	r := model.NewPopulationReport(runUUID)
	r.SlotLength = 2048
	r.Capacity = 2048
	r.HashDensity = 1
	r.Size = 1500
	r.States = model.StateCounts{Live: 1400, Hollow: 60, Orphan: 40}
	r.TopTypes = []model.TypePopulation{{TypeName: "testutil.Node", Count: 1400, Percentage: 100}}
	r.GeneratedAt = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	return r
}

func TestExporter_RoundTrip(t *testing.T) {
	for _, c := range []writer.Compression{writer.CompressionNone, writer.CompressionGzip, writer.CompressionZstd} {
		t.Run(string(c), func(t *testing.T) {
			store, err := storage.NewLocalStorage(t.TempDir())
			require.NoError(t, err)
			e := New(store, c, nil)
			ctx := context.Background()

			key, err := e.ExportPopulation(ctx, sampleReport("run-1"))
			require.NoError(t, err)
			assert.Equal(t, "reports/run-1/population"+c.Extension(), key)

			loaded, err := e.LoadPopulation(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, 1500, loaded.Size)
			assert.Equal(t, model.StateCounts{Live: 1400, Hollow: 60, Orphan: 40}, loaded.States)
			assert.Equal(t, "testutil.Node", loaded.TopTypes[0].TypeName)
			assert.True(t, loaded.GeneratedAt.Equal(time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)))
		})
	}
}

func TestExporter_ExportMaintenance(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	e := New(store, writer.CompressionGzip, nil)
	ctx := context.Background()

	_, err = e.ExportPopulation(ctx, sampleReport("run-1"))
	require.NoError(t, err)
	_, err = e.ExportPopulation(ctx, sampleReport("run-10"))
	require.NoError(t, err)

	key, err := e.ExportMaintenance(ctx, "run-1", []*model.MaintenanceReport{
		{RunUUID: "run-1", Trigger: model.TriggerTick, Swept: 3},
		{RunUUID: "run-1", Trigger: model.TriggerManual, Swept: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "reports/run-1/maintenance.json.gz", key)

	keys, err := e.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/run-1/maintenance.json.gz", "reports/run-1/population.json.gz"}, keys)

	rc, err := store.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	history, err := writer.Read[[]*model.MaintenanceReport](rc, writer.CompressionGzip)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 3, history[0].Swept)
	assert.Equal(t, model.TriggerManual, history[1].Trigger)
}

func TestExporter_ContentType(t *testing.T) {
	store := &mock.MockStorage{}
	store.ExpectUpload("reports/run-1/population.json.zst", "application/zstd", nil).Once()
	store.ExpectGetURL("https://reports.example.com")

	e := New(store, writer.CompressionZstd, nil)
	key, err := e.ExportPopulation(context.Background(), sampleReport("run-1"))
	require.NoError(t, err)
	assert.Equal(t, "https://reports.example.com/reports/run-1/population.json.zst", e.URL(key))
	store.AssertExpectations(t)
}

func TestExporter_Errors(t *testing.T) {
	t.Run("UploadFailure", func(t *testing.T) {
		store := &mock.MockStorage{}
		store.ExpectAnyUpload(stderrors.New("bucket unavailable"))

		_, err := New(store, writer.CompressionNone, nil).ExportPopulation(context.Background(), sampleReport("run-1"))
		require.Error(t, err)
		assert.True(t, errors.IsUploadError(err))
		assert.Contains(t, err.Error(), "bucket unavailable")
	})

	t.Run("MissingRunID", func(t *testing.T) {
		store := &mock.MockStorage{}
		_, err := New(store, writer.CompressionNone, nil).ExportPopulation(context.Background(), sampleReport(""))
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetErrorCode(err))
		store.AssertNotCalled(t, "Upload")
	})

	t.Run("DownloadFailure", func(t *testing.T) {
		store := &mock.MockStorage{}
		store.ExpectDownload("reports/run-1/population.json", nil, stderrors.New("file not found: reports/run-1/population.json"))

		_, err := New(store, writer.CompressionNone, nil).LoadPopulation(context.Background(), "run-1")
		require.Error(t, err)
		assert.True(t, errors.IsDownloadError(err))
	})
}
