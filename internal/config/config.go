package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Detector backends.
const (
	BackendONNX   = "onnx"
	BackendOpenCV = "opencv"
)

type Config struct {
	Port                int
	DetectorBackend     string
	ModelPath           string
	ConfigPath          string // OpenCV DNN graph config, opencv backend only
	LabelsPath          string // empty means built-in COCO labels
	OnnxRuntimeLib      string
	InputSize           int
	ConfidenceThreshold float32
	NMSThreshold        float32
	ShowConfidence      bool
	JPEGQuality         int
	MaxUploadMB         int64
	FeedEnabled         bool
	ReleaseMode         bool
	ExposeLogs          bool
	LogDirectory        string
	LogLevel            string
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	// a missing .env is fine, the environment and defaults still apply
	_ = godotenv.Load()

	return &Config{
		Port:                getEnvAsInt("PORT", 8001),
		DetectorBackend:     strings.ToLower(getEnv("DETECTOR_BACKEND", BackendONNX)),
		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "models", "yolov8n.onnx")),
		ConfigPath:          getEnv("CONFIG_PATH", ""),
		LabelsPath:          getEnv("LABELS_PATH", ""),
		OnnxRuntimeLib:      getEnv("ONNXRUNTIME_LIB", defaultOnnxRuntimeLib()),
		InputSize:           getEnvAsInt("INPUT_SIZE", 640),
		ConfidenceThreshold: getEnvAsFloat32("CONFIDENCE_THRESHOLD", 0.5),
		NMSThreshold:        getEnvAsFloat32("NMS_THRESHOLD", 0.5),
		ShowConfidence:      getEnvAsBool("SHOW_CONFIDENCE", true),
		JPEGQuality:         getEnvAsInt("JPEG_QUALITY", 90),
		MaxUploadMB:         getEnvAsInt64("MAX_UPLOAD_MB", 20),
		FeedEnabled:         getEnvAsBool("FEED_ENABLED", true),
		ReleaseMode:         getEnvAsBool("RELEASE_MODE", false),
		ExposeLogs:          getEnvAsBool("EXPOSE_LOGS", false),
		LogDirectory:        getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func defaultOnnxRuntimeLib() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(".", "third_party", "onnxruntime.dll")
	case "darwin":
		return filepath.Join(".", "third_party", "onnxruntime_arm64.dylib")
	default:
		if runtime.GOARCH == "arm64" {
			return filepath.Join(".", "third_party", "onnxruntime_arm64.so")
		}
		return filepath.Join(".", "third_party", "onnxruntime.so")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatValue)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
