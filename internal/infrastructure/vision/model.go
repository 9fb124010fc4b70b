//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"detect-runner/internal/domain/entity"
	"detect-runner/internal/domain/port"
)

// showDelayMs сколько окно с результатом держится на экране перед продолжением.
const showDelayMs = 300

// YOLOLoader загружает ONNX-экспорт YOLO через модуль DNN OpenCV.
type YOLOLoader struct {
	InputSize int
}

// NewYOLOLoader создаёт загрузчик для сети со стороной входа inputSize.
func NewYOLOLoader(inputSize int) *YOLOLoader {
	return &YOLOLoader{InputSize: inputSize}
}

// Load читает веса и имена классов. Любая ошибка оборачивается в ModelLoadError.
func (l *YOLOLoader) Load(ctx context.Context, weightsPath, namesPath string) (port.Model, error) {
	_ = ctx
	if _, err := os.Stat(weightsPath); err != nil {
		return nil, &entity.ModelLoadError{Path: weightsPath, Err: err}
	}

	net, err := readNet(weightsPath)
	if err != nil {
		return nil, &entity.ModelLoadError{Path: weightsPath, Err: err}
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, &entity.ModelLoadError{Path: weightsPath, Err: err}
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, &entity.ModelLoadError{Path: weightsPath, Err: err}
	}

	var labels entity.Labels
	if namesPath != "" {
		labels, err = LoadLabels(namesPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			net.Close()
			return nil, &entity.ModelLoadError{Path: weightsPath, Err: err}
		}
	}

	return &YOLOModel{
		net:       net,
		labels:    labels,
		inputSize: l.InputSize,
	}, nil
}

// readNet загружает граф. При исключении OpenCV сеть не инициализирована,
// и трогать её (даже Empty) нельзя: сначала проверяем последнее исключение.
func readNet(path string) (gocv.Net, error) {
	gocv.ClearLastException()
	net := gocv.ReadNetFromONNX(path)
	if err := gocv.LastExceptionError(); err != nil {
		return gocv.Net{}, fmt.Errorf("read onnx: %w", err)
	}
	if net.Empty() {
		net.Close()
		return gocv.Net{}, errors.New("network is empty after reading weights")
	}
	return net, nil
}

// YOLOModel загруженная сеть YOLO.
type YOLOModel struct {
	net       gocv.Net
	labels    entity.Labels
	inputSize int
}

// Names возвращает таблицу имён классов.
func (m *YOLOModel) Names() entity.Labels {
	return m.labels
}

// Close освобождает сеть.
func (m *YOLOModel) Close() error {
	return m.net.Close()
}

// Predict прогоняет одно изображение через сеть.
func (m *YOLOModel) Predict(ctx context.Context, imagePath string, opts port.PredictOptions) (*entity.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, &entity.InferenceError{ImagePath: imagePath, Err: err}
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, &entity.InferenceError{ImagePath: imagePath, Err: err}
	}

	mat, err := decodeToMat(data)
	if err != nil {
		return nil, &entity.InferenceError{ImagePath: imagePath, Err: err}
	}
	defer mat.Close()

	lb := NewLetterbox(mat.Cols(), mat.Rows(), m.inputSize)
	out, err := m.forward(mat, lb)
	if err != nil {
		return nil, &entity.InferenceError{ImagePath: imagePath, Err: err}
	}

	labels := m.labels
	if labels == nil {
		// без файла имён классы называются своими номерами
		labels = entity.IndexLabels(out.NumClasses())
		m.labels = labels
	}

	candidates := NMS(Decode(out, labels.Len(), opts.Confidence), opts.IoU)
	result := &entity.ResultSet{
		ImagePath:   imagePath,
		ImageWidth:  mat.Cols(),
		ImageHeight: mat.Rows(),
		Detections:  ToDetections(candidates, lb, labels),
	}

	if opts.Annotate || opts.Show {
		annotated := mat.Clone()
		defer annotated.Close()
		if err := drawDetections(&annotated, result.Detections); err != nil {
			return nil, &entity.InferenceError{ImagePath: imagePath, Err: err}
		}

		if opts.Annotate {
			ext := filepath.Ext(entity.AnnotatedFileName(imagePath))
			buf, err := gocv.IMEncode(gocv.FileExt(ext), annotated)
			if err != nil {
				return nil, &entity.InferenceError{ImagePath: imagePath, Err: fmt.Errorf("encode annotated image: %w", err)}
			}
			result.Annotated = append([]byte(nil), buf.GetBytes()...)
			buf.Close()
		}

		if opts.Show && hasDisplay() {
			window := gocv.NewWindow("detect-runner")
			window.IMShow(annotated)
			window.WaitKey(showDelayMs)
			window.Close()
		}
	}

	return result, nil
}

// forward вписывает изображение во вход сети и возвращает копию выходного тензора.
func (m *YOLOModel) forward(mat gocv.Mat, lb Letterbox) (Output, error) {
	resized := gocv.NewMat()
	defer resized.Close()
	if err := gocv.Resize(mat, &resized, image.Pt(lb.NewWidth, lb.NewHeight), 0, 0, gocv.InterpolationLinear); err != nil {
		return Output{}, fmt.Errorf("resize: %w", err)
	}

	padded := gocv.NewMat()
	defer padded.Close()
	pad := color.RGBA{R: PadValue, G: PadValue, B: PadValue, A: 0}
	if err := gocv.CopyMakeBorder(resized, &padded, lb.PadTop, lb.PadBottom, lb.PadLeft, lb.PadRight, gocv.BorderConstant, pad); err != nil {
		return Output{}, fmt.Errorf("pad: %w", err)
	}

	blob := gocv.BlobFromImage(padded, 1.0/255.0, image.Pt(lb.Size, lb.Size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	m.net.SetInput(blob, "")
	output := m.net.Forward("")
	defer output.Close()

	if output.Empty() {
		return Output{}, errors.New("network returned empty output")
	}

	raw, err := output.DataPtrFloat32()
	if err != nil {
		return Output{}, fmt.Errorf("read output: %w", err)
	}
	data := make([]float32, len(raw))
	copy(data, raw)

	return NewOutput(data, output.Size())
}

var palette = []color.RGBA{
	{R: 255, G: 56, B: 56, A: 255},
	{R: 255, G: 157, B: 151, A: 255},
	{R: 255, G: 112, B: 31, A: 255},
	{R: 255, G: 178, B: 29, A: 255},
	{R: 207, G: 210, B: 49, A: 255},
	{R: 72, G: 249, B: 10, A: 255},
	{R: 26, G: 147, B: 52, A: 255},
	{R: 0, G: 212, B: 187, A: 255},
}

// drawDetections рисует рамки и подписи "имя уверенность".
func drawDetections(mat *gocv.Mat, detections []entity.Detection) error {
	for _, d := range detections {
		c := palette[d.ClassID%len(palette)]
		rect := image.Rect(d.Box.X, d.Box.Y, d.Box.X+d.Box.Width, d.Box.Y+d.Box.Height)
		if err := gocv.Rectangle(mat, rect, c, 2); err != nil {
			return fmt.Errorf("draw rectangle: %w", err)
		}

		label := fmt.Sprintf("%s %.2f", d.Name, d.Confidence)
		y := d.Box.Y - 5
		if y < 12 {
			y = d.Box.Y + 15
		}
		if err := gocv.PutText(mat, label, image.Pt(d.Box.X, y), gocv.FontHersheySimplex, 0.5, c, 1); err != nil {
			return fmt.Errorf("draw label: %w", err)
		}
	}
	return nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

var _ port.ModelLoader = (*YOLOLoader)(nil)
var _ port.Model = (*YOLOModel)(nil)
