package port

import (
	"context"
	"time"

	"detect-runner/internal/domain/entity"
)

// ResultStore сохраняет артефакты запуска на диск
type ResultStore interface {
	// Save записывает размеченное изображение (и метки, если включены) и возвращает путь к нему
	Save(ctx context.Context, result *entity.ResultSet) (string, error)
}

// RunRecord запись истории одного запуска
type RunRecord struct {
	ID         int64
	ModelPath  string
	ImagePath  string
	Threshold  float64
	SavedPath  string
	Detections []entity.Detection
	CreatedAt  time.Time
}

// HistoryRepository хранилище истории запусков
type HistoryRepository interface {
	// Record сохраняет запуск вместе с найденными объектами
	Record(ctx context.Context, rec *RunRecord) (int64, error)
}

// Notifier отправляет итог запуска во внешний канал
type Notifier interface {
	Notify(ctx context.Context, summary string, result *entity.ResultSet) error
}
