package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New создаёт logrus-логгер для диагностики. Вывод отчёта для пользователя идёт мимо него.
// Неизвестный уровень заменяется на info.
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stderr)
}

// NewWithOutput то же, что New, но с произвольным writer.
func NewWithOutput(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}
