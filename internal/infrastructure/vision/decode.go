package vision

import (
	"fmt"
	"math"
	"sort"

	"detect-runner/internal/domain/entity"
)

// Candidate рамка-кандидат в координатах входа сети (x1,y1,x2,y2).
type Candidate struct {
	ClassID    int
	Confidence float64
	X1, Y1     float64
	X2, Y2     float64
}

// Output выход головы YOLO: 4 координаты рамки (cx, cy, w, h) и по одному скору на класс.
// По умолчанию раскладка [1, 4+nc, N]; Transposed означает [1, N, 4+nc].
type Output struct {
	Data       []float32
	Attrs      int
	Anchors    int
	Transposed bool
}

// NewOutput определяет раскладку по размерам тензора.
func NewOutput(data []float32, dims []int) (Output, error) {
	if len(dims) != 3 || dims[0] != 1 {
		return Output{}, fmt.Errorf("unexpected output shape %v", dims)
	}
	out := Output{Data: data, Attrs: dims[1], Anchors: dims[2]}
	if dims[1] > dims[2] {
		out.Attrs, out.Anchors, out.Transposed = dims[2], dims[1], true
	}
	if out.Attrs < 5 {
		return Output{}, fmt.Errorf("output has %d attributes, need at least 5", out.Attrs)
	}
	if len(data) < out.Attrs*out.Anchors {
		return Output{}, fmt.Errorf("output has %d values, shape %v needs %d", len(data), dims, out.Attrs*out.Anchors)
	}
	return out, nil
}

// NumClasses число классов, которое предсказывает сеть.
func (o Output) NumClasses() int {
	return o.Attrs - 4
}

func (o Output) at(attr, anchor int) float64 {
	if o.Transposed {
		return float64(o.Data[anchor*o.Attrs+attr])
	}
	return float64(o.Data[attr*o.Anchors+anchor])
}

// Decode выбирает для каждого якоря лучший класс и оставляет кандидатов с уверенностью не ниже порога.
// Классы за пределами таблицы numLabels отбрасываются.
func Decode(out Output, numLabels int, confThreshold float64) []Candidate {
	nc := out.NumClasses()
	candidates := make([]Candidate, 0, 64)
	for i := 0; i < out.Anchors; i++ {
		classID, best := -1, -1.0
		for c := 0; c < nc; c++ {
			if s := out.at(4+c, i); s > best {
				classID, best = c, s
			}
		}
		if classID < 0 || classID >= numLabels {
			continue
		}
		best = entity.ClampConfidence(best)
		if best < confThreshold {
			continue
		}

		cx, cy := out.at(0, i), out.at(1, i)
		w, h := out.at(2, i), out.at(3, i)
		candidates = append(candidates, Candidate{
			ClassID:    classID,
			Confidence: best,
			X1:         cx - w/2,
			Y1:         cy - h/2,
			X2:         cx + w/2,
			Y2:         cy + h/2,
		})
	}
	return candidates
}

// IoU отношение площади пересечения к площади объединения.
func IoU(a, b Candidate) float64 {
	ix := math.Max(0, math.Min(a.X2, b.X2)-math.Max(a.X1, b.X1))
	iy := math.Max(0, math.Min(a.Y2, b.Y2)-math.Max(a.Y1, b.Y1))
	inter := ix * iy
	union := (a.X2-a.X1)*(a.Y2-a.Y1) + (b.X2-b.X1)*(b.Y2-b.Y1) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// NMS подавляет пересекающиеся рамки одного класса. Результат отсортирован по убыванию уверенности.
// gocv.NMSBoxes не смотрит на класс и подавил бы рамки разных классов на одном месте.
func NMS(candidates []Candidate, iouThreshold float64) []Candidate {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Candidate, 0, len(sorted))
	suppressed := make([]bool, len(sorted))
	for i := range sorted {
		if suppressed[i] {
			continue
		}
		kept = append(kept, sorted[i])
		for j := i + 1; j < len(sorted); j++ {
			if suppressed[j] || sorted[j].ClassID != sorted[i].ClassID {
				continue
			}
			if IoU(sorted[i], sorted[j]) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

// ToDetections переводит кандидатов в координаты исходника и подставляет имена классов.
func ToDetections(candidates []Candidate, lb Letterbox, labels entity.Labels) []entity.Detection {
	detections := make([]entity.Detection, 0, len(candidates))
	for _, c := range candidates {
		name, ok := labels.Name(c.ClassID)
		if !ok {
			continue
		}
		box := lb.ToSource(c.X1, c.Y1, c.X2, c.Y2)
		if box.Area() == 0 {
			// рамка целиком в полях
			continue
		}
		detections = append(detections, entity.Detection{
			ClassID:    c.ClassID,
			Name:       name,
			Confidence: c.Confidence,
			Box:        box,
		})
	}
	return detections
}
