package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"detect-runner/internal/domain/entity"
)

// Значения по умолчанию повторяют исходные константы скрипта.
const (
	DefaultModelPath  = "./model/best_iris3.onnx"
	DefaultNamesPath  = "./model/data.yaml"
	DefaultImagePath  = "./dataset_treinamento/images/val/18.jpg"
	DefaultConfidence = 0.55
	DefaultIoU        = 0.7
	DefaultInputSize  = 640
	DefaultProjectDir = "runs/detect"
	DefaultRunName    = "predict"
)

type Config struct {
	ModelPath  string
	NamesPath  string
	ImagePath  string
	Confidence float64
	IoU        float64
	InputSize  int
	Save       bool
	Show       bool
	SaveTxt    bool
	ProjectDir string
	RunName    string

	HistoryDB string

	TelegramToken  string
	TelegramChatID int64

	LogLevel string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		ModelPath:     getEnv("MODEL_PATH", DefaultModelPath),
		NamesPath:     getEnv("NAMES_PATH", DefaultNamesPath),
		ImagePath:     getEnv("IMAGE_PATH", DefaultImagePath),
		ProjectDir:    getEnv("PROJECT_DIR", DefaultProjectDir),
		RunName:       getEnv("RUN_NAME", DefaultRunName),
		HistoryDB:     os.Getenv("HISTORY_DB"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Confidence, err = getEnvAsFloat("CONF_THRESHOLD", DefaultConfidence); err != nil {
		return nil, err
	}
	if cfg.IoU, err = getEnvAsFloat("IOU_THRESHOLD", DefaultIoU); err != nil {
		return nil, err
	}
	if cfg.InputSize, err = getEnvAsInt("INPUT_SIZE", DefaultInputSize); err != nil {
		return nil, err
	}
	if cfg.Save, err = getEnvAsBool("SAVE", true); err != nil {
		return nil, err
	}
	if cfg.Show, err = getEnvAsBool("SHOW", true); err != nil {
		return nil, err
	}
	if cfg.SaveTxt, err = getEnvAsBool("SAVE_TXT", false); err != nil {
		return nil, err
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if cfg.TelegramChatID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
	}

	return cfg, nil
}

// Validate проверяет пороги и размер входа сети.
func (c *Config) Validate() error {
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("CONF_THRESHOLD=%v: %w", c.Confidence, entity.ErrInvalidThreshold)
	}
	if c.IoU < 0 || c.IoU > 1 {
		return fmt.Errorf("IOU_THRESHOLD=%v: %w", c.IoU, entity.ErrInvalidThreshold)
	}
	if c.InputSize <= 0 || c.InputSize%32 != 0 {
		return fmt.Errorf("INPUT_SIZE must be a positive multiple of 32, got %d", c.InputSize)
	}
	if strings.TrimSpace(c.ModelPath) == "" {
		return errors.New("MODEL_PATH is empty")
	}
	if strings.TrimSpace(c.ImagePath) == "" {
		return errors.New("IMAGE_PATH is empty")
	}
	return nil
}

// TelegramEnabled включены ли уведомления в Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
