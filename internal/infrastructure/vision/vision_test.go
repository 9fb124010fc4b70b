package vision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"detect-runner/internal/domain/entity"
)

func TestNewLetterbox_Landscape(t *testing.T) {
	lb := NewLetterbox(1280, 720, 640)
	require.InDelta(t, 0.5, lb.Scale, 1e-9)
	require.Equal(t, 640, lb.NewWidth)
	require.Equal(t, 360, lb.NewHeight)
	require.Equal(t, 0, lb.PadLeft)
	require.Equal(t, 140, lb.PadTop)
	require.Equal(t, 140, lb.PadBottom)
	require.Equal(t, 640, lb.NewHeight+lb.PadTop+lb.PadBottom)
}

func TestLetterbox_ToSource(t *testing.T) {
	lb := NewLetterbox(1280, 720, 640)
	// рамка (100,200)-(300,400) в исходнике во входе сети лежит в (50,240)-(150,340)
	box := lb.ToSource(50, 240, 150, 340)
	require.Equal(t, entity.BoundingBox{X: 100, Y: 200, Width: 200, Height: 200}, box)

	// выход за поля обрезается по краям исходника
	box = lb.ToSource(-20, 100, 700, 600)
	require.Equal(t, 0, box.X)
	require.Equal(t, 0, box.Y)
	require.Equal(t, 1280, box.Width)
	require.Equal(t, 720, box.Height)
}

// makeOutput собирает тензор [1, 4+nc, N] из строк якорей (cx, cy, w, h, scores...).
func makeOutput(t *testing.T, anchors [][]float32) Output {
	t.Helper()
	attrs := len(anchors[0])
	data := make([]float32, attrs*len(anchors))
	for i, a := range anchors {
		for j, v := range a {
			data[j*len(anchors)+i] = v
		}
	}
	out, err := NewOutput(data, []int{1, attrs, len(anchors)})
	require.NoError(t, err)
	return out
}

func TestNewOutput_Layouts(t *testing.T) {
	_, err := NewOutput(make([]float32, 10), []int{1, 6})
	require.Error(t, err)

	_, err = NewOutput(make([]float32, 10), []int{1, 6, 8400})
	require.Error(t, err)

	out, err := NewOutput(make([]float32, 6*100), []int{1, 100, 6})
	require.NoError(t, err)
	require.True(t, out.Transposed)
	require.Equal(t, 6, out.Attrs)
	require.Equal(t, 2, out.NumClasses())
}

func TestDecode_ThresholdAndClasses(t *testing.T) {
	out := makeOutput(t, [][]float32{
		{100, 100, 20, 20, 0.9, 0.1, 0.0},
		{200, 200, 20, 20, 0.2, 0.5, 0.0},
		{300, 300, 20, 20, 0.1, 0.1, 0.95}, // класс 2 вне таблицы из двух имён
		{400, 400, 20, 20, 0.3, 0.2, 0.0},
	})

	got := Decode(out, 2, 0.5)
	require.Len(t, got, 2)
	require.Equal(t, 0, got[0].ClassID)
	require.InDelta(t, 0.9, got[0].Confidence, 1e-6)
	require.InDelta(t, 90, got[0].X1, 1e-6)
	require.InDelta(t, 110, got[0].Y2, 1e-6)
	require.Equal(t, 1, got[1].ClassID)

	// повышение порога не увеличивает число кандидатов
	prev := len(Decode(out, 2, 0))
	for _, th := range []float64{0.1, 0.3, 0.5, 0.9, 1} {
		n := len(Decode(out, 2, th))
		require.LessOrEqual(t, n, prev)
		prev = n
	}
}

func TestDecode_Transposed(t *testing.T) {
	data := []float32{
		10, 10, 4, 4, 0.1, 0.8,
		50, 50, 4, 4, 0.7, 0.2,
	}
	out := Output{Data: data, Attrs: 6, Anchors: 2, Transposed: true}
	got := Decode(out, 2, 0.5)
	require.Len(t, got, 2)
	require.Equal(t, 1, got[0].ClassID)
	require.Equal(t, 0, got[1].ClassID)
}

func TestIoU(t *testing.T) {
	a := Candidate{X1: 0, Y1: 0, X2: 10, Y2: 10}
	require.InDelta(t, 1.0, IoU(a, a), 1e-9)
	require.InDelta(t, 0.0, IoU(a, Candidate{X1: 20, Y1: 20, X2: 30, Y2: 30}), 1e-9)
	require.InDelta(t, 25.0/175.0, IoU(a, Candidate{X1: 5, Y1: 5, X2: 15, Y2: 15}), 1e-9)
	require.Zero(t, IoU(Candidate{}, Candidate{}))
}

func TestNMS(t *testing.T) {
	candidates := []Candidate{
		{ClassID: 0, Confidence: 0.6, X1: 1, Y1: 1, X2: 11, Y2: 11},
		{ClassID: 0, Confidence: 0.9, X1: 0, Y1: 0, X2: 10, Y2: 10},
		{ClassID: 1, Confidence: 0.7, X1: 0, Y1: 0, X2: 10, Y2: 10},
		{ClassID: 0, Confidence: 0.8, X1: 50, Y1: 50, X2: 60, Y2: 60},
	}

	kept := NMS(candidates, 0.5)
	require.Len(t, kept, 3)
	require.InDelta(t, 0.9, kept[0].Confidence, 1e-9)
	require.InDelta(t, 0.8, kept[1].Confidence, 1e-9)
	require.Equal(t, 1, kept[2].ClassID)

	for i := range kept {
		for j := i + 1; j < len(kept); j++ {
			if kept[i].ClassID == kept[j].ClassID {
				require.LessOrEqual(t, IoU(kept[i], kept[j]), 0.5)
			}
		}
	}

	// исходный срез не меняется
	require.InDelta(t, 0.6, candidates[0].Confidence, 1e-9)
}

func TestToDetections(t *testing.T) {
	lb := NewLetterbox(640, 640, 640)
	dets := ToDetections([]Candidate{
		{ClassID: 1, Confidence: 0.73, X1: 10, Y1: 20, X2: 30, Y2: 60},
		{ClassID: 5, Confidence: 0.99},
		{ClassID: 0, Confidence: 0.8, X1: 700, Y1: 700, X2: 720, Y2: 720},
	}, lb, entity.Labels{"iris", "pupil"})

	require.Len(t, dets, 1)
	require.Equal(t, "pupil", dets[0].Name)
	require.Equal(t, entity.BoundingBox{X: 10, Y: 20, Width: 20, Height: 40}, dets[0].Box)
}

func TestLoadLabels(t *testing.T) {
	dir := t.TempDir()

	list := filepath.Join(dir, "list.yaml")
	require.NoError(t, os.WriteFile(list, []byte("path: ../data\nnc: 2\nnames: ['iris', 'pupil']\n"), 0o644))
	labels, err := LoadLabels(list)
	require.NoError(t, err)
	require.Equal(t, entity.Labels{"iris", "pupil"}, labels)

	byIndex := filepath.Join(dir, "map.yml")
	require.NoError(t, os.WriteFile(byIndex, []byte("names:\n  1: pupil\n  0: iris\n"), 0o644))
	labels, err = LoadLabels(byIndex)
	require.NoError(t, err)
	require.Equal(t, entity.Labels{"iris", "pupil"}, labels)

	gap := filepath.Join(dir, "gap.yaml")
	require.NoError(t, os.WriteFile(gap, []byte("names:\n  0: iris\n  2: pupil\n"), 0o644))
	_, err = LoadLabels(gap)
	require.Error(t, err)

	noNames := filepath.Join(dir, "none.yaml")
	require.NoError(t, os.WriteFile(noNames, []byte("nc: 2\n"), 0o644))
	_, err = LoadLabels(noNames)
	require.Error(t, err)

	txt := filepath.Join(dir, "classes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("iris\n\n  pupil  \n"), 0o644))
	labels, err = LoadLabels(txt)
	require.NoError(t, err)
	require.Equal(t, entity.Labels{"iris", "pupil"}, labels)

	_, err = LoadLabels(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
