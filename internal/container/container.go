package container

import (
	"io"

	"github.com/sirupsen/logrus"

	app "detect-runner/internal/application"
	"detect-runner/internal/domain/port"
)

type Container struct {
	DetectionService *app.DetectionService
}

func New(loader port.ModelLoader, store port.ResultStore, history port.HistoryRepository, notifier port.Notifier, log logrus.FieldLogger, out io.Writer) *Container {
	return &Container{
		DetectionService: app.NewDetectionService(loader, store, history, notifier, log, out),
	}
}
