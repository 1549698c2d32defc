package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the AuthLens server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Detectors DetectorConfig
	Analysis  AnalysisConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	RateLimitPerMin int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// DetectorConfig selects and parameterizes the detector backends. Mode "mock"
// runs fully self-contained deterministic detectors for local development.
type DetectorConfig struct {
	Mode           string
	Timeout        time.Duration
	Classifier     EndpointConfig
	VisionLanguage EndpointConfig
	Frequency      EndpointConfig
}

type EndpointConfig struct {
	BaseURL string
	APIKey  string
}

// AnalysisConfig parameterizes the fusion and uncertainty stages.
type AnalysisConfig struct {
	Weights         map[string]float64
	ConfidenceLevel float64
	CacheTTL        time.Duration
}

const weightTolerance = 1e-9

var validModes = map[string]bool{
	"http": true,
	"mock": true,
}

func defaultWeights() map[string]float64 {
	return map[string]float64{
		"classifier":      0.6,
		"vision_language": 0.3,
		"frequency":       0.1,
	}
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("AUTHLENS_PORT", 8080),
			Env:             envString("AUTHLENS_ENV", "development"),
			RateLimitPerMin: envInt("RATE_LIMIT_PER_MIN", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Detectors: DetectorConfig{
			Mode:    envString("DETECTOR_MODE", "mock"),
			Timeout: envDurationSecs("DETECTOR_TIMEOUT_SECS", 30*time.Second),
			Classifier: EndpointConfig{
				BaseURL: os.Getenv("CLASSIFIER_BASE_URL"),
				APIKey:  os.Getenv("CLASSIFIER_API_KEY"),
			},
			VisionLanguage: EndpointConfig{
				BaseURL: os.Getenv("VISION_BASE_URL"),
				APIKey:  os.Getenv("VISION_API_KEY"),
			},
			Frequency: EndpointConfig{
				BaseURL: os.Getenv("FREQUENCY_BASE_URL"),
				APIKey:  os.Getenv("FREQUENCY_API_KEY"),
			},
		},
		Analysis: AnalysisConfig{
			Weights:         defaultWeights(),
			ConfidenceLevel: envFloat("CONFIDENCE_LEVEL", 0.95),
			CacheTTL:        envDuration("REPORT_CACHE_TTL", time.Hour),
		},
	}

	if path := os.Getenv("AUTHLENS_WEIGHTS_FILE"); path != "" {
		weights, err := loadWeightsFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Analysis.Weights = weights
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadWeightsFile reads a detector-name → weight mapping from a YAML file,
// overriding the built-in defaults wholesale.
func loadWeightsFile(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights file: %w", err)
	}
	var weights map[string]float64
	if err := yaml.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("parse weights file %s: %w", path, err)
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("weights file %s contains no entries", path)
	}
	return weights, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !validModes[c.Detectors.Mode] {
		return fmt.Errorf("DETECTOR_MODE must be one of http, mock; got %q", c.Detectors.Mode)
	}
	if c.Detectors.Mode == "http" {
		endpoints := map[string]string{
			"CLASSIFIER_BASE_URL": c.Detectors.Classifier.BaseURL,
			"VISION_BASE_URL":     c.Detectors.VisionLanguage.BaseURL,
			"FREQUENCY_BASE_URL":  c.Detectors.Frequency.BaseURL,
		}
		for name, baseURL := range endpoints {
			if baseURL == "" {
				return fmt.Errorf("%s is required when DETECTOR_MODE is http", name)
			}
			if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
				return fmt.Errorf("%s must start with http:// or https://, got %q", name, baseURL)
			}
		}
	}

	var sum float64
	for name, w := range c.Analysis.Weights {
		if w < 0 {
			return fmt.Errorf("detector weight for %q must be non-negative, got %f", name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("detector weights must sum to 1.0, got %f", sum)
	}

	if c.Analysis.ConfidenceLevel <= 0 || c.Analysis.ConfidenceLevel >= 1 {
		return fmt.Errorf("CONFIDENCE_LEVEL must be in (0, 1), got %f", c.Analysis.ConfidenceLevel)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
