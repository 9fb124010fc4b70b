package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"detect-runner/internal/domain/entity"
	"detect-runner/internal/domain/port"
)

// DetectionRequest параметры одного запуска.
type DetectionRequest struct {
	WeightsPath string
	NamesPath   string
	ImagePath   string
	Confidence  float64
	IoU         float64
	Save        bool
	Show        bool
}

// DetectionService линейный конвейер: загрузка модели, инференс, сводка.
type DetectionService struct {
	loader   port.ModelLoader
	store    port.ResultStore
	history  port.HistoryRepository
	notifier port.Notifier
	log      logrus.FieldLogger
	out      io.Writer
	now      func() time.Time
}

// NewDetectionService создаёт сервис. store, history и notifier могут быть nil.
func NewDetectionService(loader port.ModelLoader, store port.ResultStore, history port.HistoryRepository, notifier port.Notifier, log logrus.FieldLogger, out io.Writer) *DetectionService {
	return &DetectionService{
		loader:   loader,
		store:    store,
		history:  history,
		notifier: notifier,
		log:      log,
		out:      out,
		now:      time.Now,
	}
}

// Run выполняет запуск. Ошибка загрузки модели печатается и не возвращается: результат nil, ошибка nil.
// Ошибки инференса возвращаются вызывающему без обработки.
func (s *DetectionService) Run(ctx context.Context, req DetectionRequest) (*entity.ResultSet, error) {
	if req.Confidence < 0 || req.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v: %w", req.Confidence, entity.ErrInvalidThreshold)
	}
	if s.loader == nil {
		return nil, errors.New("model loader is not configured")
	}

	model, err := s.loader.Load(ctx, req.WeightsPath, req.NamesPath)
	if err != nil {
		s.log.WithError(err).WithField("weights", req.WeightsPath).Error("Model load failed")
		fmt.Fprintf(s.out, msgModelLoadError, err)
		fmt.Fprintf(s.out, msgModelLoadHint, filepath.Base(req.WeightsPath))
		return nil, nil
	}
	defer func() {
		if err := model.Close(); err != nil {
			s.log.WithError(err).Warn("Model close failed")
		}
	}()
	fmt.Fprintf(s.out, msgModelLoaded, req.WeightsPath)

	fmt.Fprintf(s.out, msgStart, req.ImagePath)
	started := s.now()
	result, err := model.Predict(ctx, req.ImagePath, port.PredictOptions{
		Confidence: req.Confidence,
		IoU:        req.IoU,
		Annotate:   req.Save && s.store != nil,
		Show:       req.Show,
	})
	if err != nil {
		return nil, err
	}
	result.Detections = result.AboveThreshold(req.Confidence)
	s.log.WithFields(logrus.Fields{
		"image":      req.ImagePath,
		"detections": result.Count(),
		"elapsed":    s.now().Sub(started),
	}).Debug("Inference finished")

	if req.Save && s.store != nil {
		path, err := s.store.Save(ctx, result)
		if err != nil {
			return nil, &entity.InferenceError{ImagePath: req.ImagePath, Err: fmt.Errorf("save results: %w", err)}
		}
		result.SavedPath = path
	}

	var summary bytes.Buffer
	Summarize(io.MultiWriter(s.out, &summary), result, model.Names())
	if result.SavedPath != "" {
		SavedNotice(s.out, result.SavedPath)
	}

	s.record(ctx, req, result)
	s.notify(ctx, summary.String(), result)

	return result, nil
}

// record пишет запуск в историю; ошибки только логируются.
func (s *DetectionService) record(ctx context.Context, req DetectionRequest, result *entity.ResultSet) {
	if s.history == nil {
		return
	}
	_, err := s.history.Record(ctx, &port.RunRecord{
		ModelPath:  req.WeightsPath,
		ImagePath:  req.ImagePath,
		Threshold:  req.Confidence,
		SavedPath:  result.SavedPath,
		Detections: result.Detections,
		CreatedAt:  s.now(),
	})
	if err != nil {
		s.log.WithError(err).Warn("History record failed")
	}
}

// notify отправляет сводку во внешний канал; ошибки только логируются.
func (s *DetectionService) notify(ctx context.Context, summary string, result *entity.ResultSet) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, summary, result); err != nil {
		s.log.WithError(err).Warn("Notification failed")
	}
}
