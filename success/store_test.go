package success

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renditionmaker/models"
)

func initTestStore(t *testing.T) {
	t.Helper()
	require.NoError(t, Init(filepath.Join(t.TempDir(), "Success.db")))
	t.Cleanup(func() { Close() })
}

func sampleReport() models.ExecutionReport {
	return models.ExecutionReport{
		AssetPath: "/content/a.jpg",
		Pairs: []models.PairResult{
			{Outcome: models.OutcomeGenerated},
			{Outcome: models.OutcomeGenerated},
			{Outcome: models.OutcomeFailed, Error: "boom"},
			{Outcome: models.OutcomeMalformed},
		},
	}
}

func TestStoreAndGetSuccess(t *testing.T) {
	initTestStore(t)

	item := models.WorkItem{ID: "w1", PayloadPath: "/content/a.jpg"}
	require.NoError(t, StoreSuccess(item, sampleReport()))

	rec, err := GetSuccess("w1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.Generated)
	assert.Equal(t, 1, rec.Failed)
	assert.Equal(t, 1, rec.Malformed)
	assert.Equal(t, 0, rec.Skipped)
	assert.Equal(t, "/content/a.jpg", rec.Report.AssetPath)
}

func TestGetSuccessMissing(t *testing.T) {
	initTestStore(t)
	rec, err := GetSuccess("nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestListDeleteAndCleanup(t *testing.T) {
	initTestStore(t)
	require.NoError(t, StoreSuccess(models.WorkItem{ID: "a"}, models.ExecutionReport{}))
	require.NoError(t, StoreSuccess(models.WorkItem{ID: "b"}, models.ExecutionReport{}))

	records, err := ListSuccessRecords()
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.NoError(t, DeleteSuccess("a"))
	require.NoError(t, CleanupOldRecords(time.Hour))
	records, err = ListSuccessRecords()
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.NoError(t, CleanupOldRecords(-time.Minute))
	records, err = ListSuccessRecords()
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, CheckHealth())
}

func TestUninitialized(t *testing.T) {
	assert.Error(t, StoreSuccess(models.WorkItem{ID: "x"}, models.ExecutionReport{}))
	assert.Error(t, CheckHealth())
}
