package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"detect-runner/internal/domain/entity"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MODEL_PATH", "NAMES_PATH", "IMAGE_PATH", "CONF_THRESHOLD", "IOU_THRESHOLD", "INPUT_SIZE",
		"SAVE", "SHOW", "SAVE_TXT", "PROJECT_DIR", "RUN_NAME", "HISTORY_DB",
		"TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultModelPath, cfg.ModelPath)
	require.Equal(t, DefaultImagePath, cfg.ImagePath)
	require.Equal(t, 0.55, cfg.Confidence)
	require.Equal(t, 640, cfg.InputSize)
	require.True(t, cfg.Save)
	require.True(t, cfg.Show)
	require.False(t, cfg.SaveTxt)
	require.Equal(t, "runs/detect", cfg.ProjectDir)
	require.Equal(t, "predict", cfg.RunName)
	require.False(t, cfg.TelegramEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONF_THRESHOLD", "0.25")
	t.Setenv("SHOW", "false")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 0.25, cfg.Confidence)
	require.False(t, cfg.Show)
	require.Equal(t, int64(-1001), cfg.TelegramChatID)
	require.True(t, cfg.TelegramEnabled())
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONF_THRESHOLD", "high")
	_, err := Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("SAVE", "maybe")
	_, err = Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("TELEGRAM_CHAT_ID", "chat")
	_, err = Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Confidence = 1.5
	require.ErrorIs(t, cfg.Validate(), entity.ErrInvalidThreshold)

	cfg.Confidence = 0.5
	cfg.IoU = -0.1
	require.ErrorIs(t, cfg.Validate(), entity.ErrInvalidThreshold)

	cfg.IoU = 0.7
	cfg.InputSize = 100
	require.Error(t, cfg.Validate())

	cfg.InputSize = 640
	cfg.ImagePath = " "
	require.Error(t, cfg.Validate())
}
