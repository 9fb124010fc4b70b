package port

import (
	"context"

	"detect-runner/internal/domain/entity"
)

// PredictOptions параметры одного запуска инференса
type PredictOptions struct {
	Confidence float64 // минимальная уверенность
	IoU        float64 // порог подавления пересекающихся рамок
	Annotate   bool    // нарисовать рамки и вернуть JPEG в ResultSet.Annotated
	Show       bool    // показать окно с результатом, если есть графическое окружение
}

// Model загруженная модель детекции
type Model interface {
	// Names возвращает таблицу имён классов
	Names() entity.Labels

	// Predict запускает детекцию на изображении по пути
	Predict(ctx context.Context, imagePath string, opts PredictOptions) (*entity.ResultSet, error)

	// Close освобождает ресурсы модели
	Close() error
}

// ModelLoader загружает модель по пути к весам и файлу имён классов
type ModelLoader interface {
	Load(ctx context.Context, weightsPath, namesPath string) (Model, error)
}
