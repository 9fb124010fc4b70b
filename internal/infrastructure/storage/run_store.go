package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"detect-runner/internal/domain/entity"
	"detect-runner/internal/domain/port"
)

// RunStore раскладывает артефакты запуска по каталогу вида runs/detect/predict, predict2, ...
type RunStore struct {
	projectDir string
	name       string
	saveTxt    bool

	mu  sync.Mutex
	dir string
}

// NewRunStore создаёт хранилище. Каталог запуска выбирается при первом сохранении.
func NewRunStore(projectDir, name string, saveTxt bool) *RunStore {
	return &RunStore{
		projectDir: projectDir,
		name:       name,
		saveTxt:    saveTxt,
	}
}

// Dir возвращает каталог запуска, создавая его при первом обращении.
func (s *RunStore) Dir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dir != "" {
		return s.dir, nil
	}

	dir, err := NextRunDir(s.projectDir, s.name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	s.dir = dir
	return dir, nil
}

// Save записывает размеченное изображение и, если включено, файл меток в формате YOLO.
func (s *RunStore) Save(ctx context.Context, result *entity.ResultSet) (string, error) {
	_ = ctx
	if result == nil || len(result.Annotated) == 0 {
		return "", errors.New("nothing to save: annotated image is empty")
	}

	dir, err := s.Dir()
	if err != nil {
		return "", err
	}

	name := entity.AnnotatedFileName(result.ImagePath)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	imagePath := filepath.Join(dir, name)
	if err := os.WriteFile(imagePath, result.Annotated, 0o644); err != nil {
		return "", fmt.Errorf("write annotated image: %w", err)
	}

	if s.saveTxt {
		labelsDir := filepath.Join(dir, "labels")
		if err := os.MkdirAll(labelsDir, 0o755); err != nil {
			return "", fmt.Errorf("create labels dir: %w", err)
		}
		txt := FormatYOLOLabels(result)
		if err := os.WriteFile(filepath.Join(labelsDir, stem+".txt"), []byte(txt), 0o644); err != nil {
			return "", fmt.Errorf("write labels: %w", err)
		}
	}

	return imagePath, nil
}

// NextRunDir возвращает первый несуществующий каталог: name, name2, name3, ...
func NextRunDir(projectDir, name string) (string, error) {
	base := filepath.Join(projectDir, name)
	for i := 1; ; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
	}
}

// FormatYOLOLabels строки "класс cx cy w h уверенность" с координатами, нормированными на размер изображения.
func FormatYOLOLabels(result *entity.ResultSet) string {
	if result.ImageWidth <= 0 || result.ImageHeight <= 0 {
		return ""
	}
	w := float64(result.ImageWidth)
	h := float64(result.ImageHeight)

	var b strings.Builder
	for _, d := range result.Detections {
		cx, cy := d.Box.Center()
		fmt.Fprintf(&b, "%d %.6f %.6f %.6f %.6f %.6f\n",
			d.ClassID,
			float64(cx)/w,
			float64(cy)/h,
			float64(d.Box.Width)/w,
			float64(d.Box.Height)/h,
			d.Confidence,
		)
	}
	return b.String()
}

// Проверка реализации интерфейса
var _ port.ResultStore = (*RunStore)(nil)
