//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"detect-runner/internal/domain/entity"
	"detect-runner/internal/domain/port"
)

// ErrNoGoCV сборка без тега gocv не умеет выполнять сеть.
var ErrNoGoCV = errors.New("gocv build tag is not enabled")

// YOLOLoader загрузчик-заглушка (без OpenCV).
type YOLOLoader struct {
	InputSize int
}

// NewYOLOLoader создаёт загрузчик-заглушку.
func NewYOLOLoader(inputSize int) *YOLOLoader {
	return &YOLOLoader{InputSize: inputSize}
}

// Load всегда возвращает ModelLoadError, если сборка без тега gocv.
func (l *YOLOLoader) Load(ctx context.Context, weightsPath, namesPath string) (port.Model, error) {
	_ = ctx
	_ = namesPath
	return nil, &entity.ModelLoadError{Path: weightsPath, Err: ErrNoGoCV}
}

var _ port.ModelLoader = (*YOLOLoader)(nil)
