package entity

import (
	"path/filepath"
	"strings"
)

// ResultSet итог одного запуска инференса по изображению.
type ResultSet struct {
	ImagePath   string      // путь к исходному изображению
	ImageWidth  int         // ширина изображения
	ImageHeight int         // высота изображения
	Detections  []Detection // найденные объекты, по убыванию уверенности
	SavedPath   string      // куда сохранена размеченная копия, пусто если не сохранялась
	Annotated   []byte      // JPEG с нарисованными рамками, nil если не запрашивался
}

// Count возвращает число найденных объектов.
func (r *ResultSet) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Detections)
}

// AboveThreshold возвращает объекты с уверенностью не ниже порога, сохраняя порядок.
func (r *ResultSet) AboveThreshold(threshold float64) []Detection {
	if r == nil {
		return nil
	}
	out := make([]Detection, 0, len(r.Detections))
	for _, d := range r.Detections {
		if d.Confidence >= threshold {
			out = append(out, d)
		}
	}
	return out
}

// encodableExts форматы, в которых размеченная копия сохраняется под исходным именем.
var encodableExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// AnnotatedFileName имя файла размеченной копии: исходное имя, если формат можно записать, иначе <имя>.jpg.
func AnnotatedFileName(imagePath string) string {
	base := filepath.Base(imagePath)
	ext := filepath.Ext(base)
	if encodableExts[strings.ToLower(ext)] {
		return base
	}
	return strings.TrimSuffix(base, ext) + ".jpg"
}
