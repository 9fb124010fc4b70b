package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"detect-runner/internal/domain/entity"
	"detect-runner/internal/domain/port"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHistoryRepository_RecordAndRecent(t *testing.T) {
	repo := NewHistoryRepository(openTestDB(t))
	ctx := context.Background()

	first := &port.RunRecord{
		ModelPath: "model/best_iris3.onnx",
		ImagePath: "images/val/18.jpg",
		Threshold: 0.55,
		SavedPath: "runs/detect/predict/18.jpg",
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Detections: []entity.Detection{
			{ClassID: 0, Name: "iris", Confidence: 0.91, Box: entity.BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}},
			{ClassID: 1, Name: "pupil", Confidence: 0.62},
		},
	}
	id, err := repo.Record(ctx, first)
	require.NoError(t, err)
	require.Equal(t, id, first.ID)

	second := &port.RunRecord{
		ModelPath: "model/best_iris3.onnx",
		ImagePath: "images/val/19.jpg",
		Threshold: 0.7,
		CreatedAt: time.Date(2026, 10, 2, 12, 0, 0, 0, time.UTC),
	}
	_, err = repo.Record(ctx, second)
	require.NoError(t, err)

	records, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "images/val/19.jpg", records[0].ImagePath)
	require.Empty(t, records[0].Detections)

	got := records[1]
	require.Equal(t, first.SavedPath, got.SavedPath)
	require.InDelta(t, 0.55, got.Threshold, 1e-9)
	require.True(t, first.CreatedAt.Equal(got.CreatedAt))
	require.Equal(t, first.Detections, got.Detections)

	records, err = repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
}
