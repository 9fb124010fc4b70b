package sqlite

import (
	"context"
	"fmt"

	"detect-runner/internal/domain/entity"
	"detect-runner/internal/domain/port"
)

// HistoryRepository хранит запуски и найденные объекты.
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository создаёт репозиторий поверх открытой базы.
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record сохраняет запуск и его объекты одной транзакцией.
func (r *HistoryRepository) Record(ctx context.Context, rec *port.RunRecord) (int64, error) {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (model_path, image_path, threshold, saved_path, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ModelPath, rec.ImagePath, rec.Threshold, rec.SavedPath, rec.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO detections (run_id, position, class_id, class_name, confidence, x, y, width, height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, d := range rec.Detections {
		if _, err := stmt.ExecContext(ctx, runID, i, d.ClassID, d.Name, d.Confidence, d.Box.X, d.Box.Y, d.Box.Width, d.Box.Height); err != nil {
			return 0, fmt.Errorf("insert detection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	rec.ID = runID
	return runID, nil
}

// Recent возвращает последние limit запусков, новые первыми.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]port.RunRecord, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT id, model_path, image_path, threshold, saved_path, created_at
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var records []port.RunRecord
	for rows.Next() {
		var rec port.RunRecord
		if err := rows.Scan(&rec.ID, &rec.ModelPath, &rec.ImagePath, &rec.Threshold, &rec.SavedPath, &rec.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for i := range records {
		detections, err := r.detections(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Detections = detections
	}

	return records, nil
}

func (r *HistoryRepository) detections(ctx context.Context, runID int64) ([]entity.Detection, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT class_id, class_name, confidence, x, y, width, height
		FROM detections WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	defer rows.Close()

	var detections []entity.Detection
	for rows.Next() {
		var d entity.Detection
		if err := rows.Scan(&d.ClassID, &d.Name, &d.Confidence, &d.Box.X, &d.Box.Y, &d.Box.Width, &d.Box.Height); err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		detections = append(detections, d)
	}

	return detections, rows.Err()
}

// Проверка реализации интерфейса
var _ port.HistoryRepository = (*HistoryRepository)(nil)
