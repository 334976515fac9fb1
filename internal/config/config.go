// Package config resolves server settings from a .env file and the
// environment.
//
// Sources, later ones winning:
//  1. Built-in defaults.
//  2. A dotenv file: LoadOptions.EnvFile, else the file named by
//     HANDWRITE_ENV_FILE, else .env next to the executable.
//  3. Process environment variables.
//
// Malformed numbers fall back to their defaults and are reported in
// Config.Warnings rather than failing the load.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendHuggingFace = "huggingface"
	BackendTesseract   = "tesseract"

	EnvFileEnvVar = "HANDWRITE_ENV_FILE"

	DefaultRequestTimeout = 60 * time.Second
	DefaultPadding        = 10
	DefaultContainerWidth = 800
	DefaultMaxUploadMB    = 10
	DefaultTesseractLang  = "eng"
	DefaultLogLevel       = "info"
)

// LoadOptions overrides the file lookup and selected values, typically
// from command-line flags.
type LoadOptions struct {
	EnvFile         string
	BackendOverride string
}

type Config struct {
	// Backend is BackendHuggingFace or BackendTesseract.
	Backend string

	// ModelURL is the Inference API endpoint. Empty selects the default
	// handwriting model.
	ModelURL string

	// APIKey seeds the credential store when the store is empty.
	APIKey string

	// CredentialFile is the dotenv file holding the saved API key. Empty
	// selects the per-user default.
	CredentialFile string

	RequestTimeout time.Duration
	Padding        int
	ContainerWidth float64
	MaxUploadBytes int64
	TesseractLang  string
	LogLevel       string

	// EnvFile is the dotenv file that was loaded, if any.
	EnvFile string

	// Warnings lists values that were ignored.
	Warnings []string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	envPath, err := resolveEnvPath(opts)
	if err != nil {
		return nil, err
	}
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	cfg := &Config{
		ModelURL:       strings.TrimSpace(os.Getenv("HANDWRITE_MODEL_URL")),
		APIKey:         strings.TrimSpace(os.Getenv("HANDWRITE_API_KEY")),
		CredentialFile: strings.TrimSpace(os.Getenv("HANDWRITE_CREDENTIAL_FILE")),
		TesseractLang:  getEnvWithDefault("HANDWRITE_TESSERACT_LANG", DefaultTesseractLang),
		LogLevel:       getEnvWithDefault("HANDWRITE_LOG_LEVEL", DefaultLogLevel),
		EnvFile:        envPath,
	}

	backend := os.Getenv("HANDWRITE_BACKEND")
	if override := strings.TrimSpace(opts.BackendOverride); override != "" {
		backend = override
	}
	cfg.Backend, err = resolveBackend(backend)
	if err != nil {
		return nil, err
	}

	timeoutSec := cfg.intEnv("HANDWRITE_REQUEST_TIMEOUT_SEC", int(DefaultRequestTimeout/time.Second), 1)
	cfg.RequestTimeout = time.Duration(timeoutSec) * time.Second
	cfg.Padding = cfg.intEnv("HANDWRITE_PADDING", DefaultPadding, 0)
	cfg.ContainerWidth = float64(cfg.intEnv("HANDWRITE_CONTAINER_WIDTH", DefaultContainerWidth, 1))
	cfg.MaxUploadBytes = int64(cfg.intEnv("HANDWRITE_MAX_UPLOAD_MB", DefaultMaxUploadMB, 1)) * 1024 * 1024

	return cfg, nil
}

func resolveEnvPath(opts LoadOptions) (string, error) {
	if explicit := strings.TrimSpace(opts.EnvFile); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("env file: %w", err)
		}
		return explicit, nil
	}

	if alt := strings.TrimSpace(os.Getenv(EnvFileEnvVar)); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt, nil
		}
	}

	execPath, err := os.Executable()
	if err != nil {
		return "", nil
	}
	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv, nil
	}
	return "", nil
}

func resolveBackend(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "hf", BackendHuggingFace:
		return BackendHuggingFace, nil
	case BackendTesseract:
		return BackendTesseract, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want %s or %s)", value, BackendHuggingFace, BackendTesseract)
	}
}

// intEnv reads an integer of at least min, recording a warning and
// returning def when the value is unusable.
func (c *Config) intEnv(key string, def, min int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is invalid, using %d", key, v, def))
		return def
	}
	return n
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
