package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrModelLoad модель не удалось загрузить.
	ErrModelLoad = errors.New("model load failed")

	// ErrInference ошибка во время предсказания.
	ErrInference = errors.New("inference failed")

	// ErrInvalidThreshold порог вне диапазона [0,1].
	ErrInvalidThreshold = errors.New("threshold must be within [0,1]")
)

// ModelLoadError ошибка загрузки весов модели.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() []error {
	return []error{ErrModelLoad, e.Err}
}

// InferenceError ошибка инференса по конкретному изображению.
type InferenceError struct {
	ImagePath string
	Err       error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("predict %s: %v", e.ImagePath, e.Err)
}

func (e *InferenceError) Unwrap() []error {
	return []error{ErrInference, e.Err}
}
