package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Run{}))
	return db
}

func TestGormRunStore_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormRunStore(db)
	ctx := context.Background()

	run := &Run{
		RunUUID:     "run-1",
		Algorithm:   AlgorithmBFS,
		Status:      StatusPending,
		GraphPath:   "graphs/p5.adj",
		VertexCount: 5,
	}
	require.NoError(t, s.CreateRun(ctx, run))

	got, err := s.GetRunByUUID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmBFS, got.Algorithm)
	assert.Equal(t, StatusPending, got.Status)
}

func TestGormRunStore_GetMissingReturnsError(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormRunStore(db)
	_, err := s.GetRunByUUID(context.Background(), "does-not-exist")
	assert.Error(t, err)
}

func TestGormRunStore_UpdateStatusAndComplete(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormRunStore(db)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, &Run{RunUUID: "run-2", Algorithm: AlgorithmSCC, Status: StatusPending}))
	require.NoError(t, s.UpdateStatus(ctx, "run-2", StatusRunning, ""))

	got, err := s.GetRunByUUID(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
	require.NotNil(t, got.BeginTime)

	require.NoError(t, s.CompleteRun(ctx, "run-2", JSONField(`{"components":2}`)))
	got, err = s.GetRunByUUID(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.EndTime)
	assert.JSONEq(t, `{"components":2}`, string(got.Result))
}

func TestGormRunStore_ListRunsFiltersByAlgorithm(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormRunStore(db)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, &Run{RunUUID: "a", Algorithm: AlgorithmBFS, Status: StatusCompleted}))
	require.NoError(t, s.CreateRun(ctx, &Run{RunUUID: "b", Algorithm: AlgorithmSSSP, Status: StatusCompleted}))

	runs, err := s.ListRuns(ctx, AlgorithmBFS, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "a", runs[0].RunUUID)

	all, err := s.ListRuns(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestJSONFieldRoundTrip(t *testing.T) {
	var j JSONField
	require.NoError(t, j.Scan([]byte(`{"x":1}`)))
	assert.JSONEq(t, `{"x":1}`, string(j))

	data, err := j.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(data))
}
