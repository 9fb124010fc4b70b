package container

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	app "detect-runner/internal/application"
	"detect-runner/internal/infrastructure/storage"
	"detect-runner/internal/infrastructure/vision"
)

func TestNew_WiresDetectionService(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	var out bytes.Buffer

	c := New(vision.NewYOLOLoader(640), storage.NewRunStore(t.TempDir(), "predict", false), nil, nil, log, &out)
	require.NotNil(t, c.DetectionService)

	// весов нет на диске (или сборка без OpenCV): конвейер останавливается на загрузке
	result, err := c.DetectionService.Run(context.Background(), app.DetectionRequest{
		WeightsPath: "model/best_iris3.onnx",
		ImagePath:   "images/18.jpg",
		Confidence:  0.55,
		Save:        true,
	})
	require.NoError(t, err)
	require.Nil(t, result)
	require.Contains(t, out.String(), "ERRO ao carregar o modelo")
}
