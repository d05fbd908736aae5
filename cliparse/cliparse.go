// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Secrets
	AdminToken    string
	AdminKeySalt  string
	IntegritySalt string

	// Biometric tuning
	BiometricScale     float64
	BiometricThreshold float64
	LivenessMinFrames  int

	// Fraud policy
	FraudThreshold int
	RiskFloor      float64
	CounterBackend string
	RedisAddr      string

	// External services
	DeepFaceURL       string
	DeepFaceModel     string
	DeepFaceTimeout   time.Duration
	DeepFaceRetries   int
	GeminiAPIKey      string
	GeminiModel       string
	OCRTimeout        time.Duration
	RollLookupTimeout time.Duration

	MaxUploadBytes    int64
	ElectionSweepSpec string
	LogLevel          string
	LogFormat         string
}

// Counter backends
const (
	CounterSQL   = "sql"
	CounterRedis = "redis"
)

// ParseFlags reads flags, falling back to environment variables, then defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("voteguard", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminToken, "admin-token", "", "Registry admin token (prefer env)")
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Election admin key salt (prefer env)")
	fs.StringVar(&cfg.IntegritySalt, "integrity-salt", "", "Vote integrity token salt (prefer env)")

	fs.Float64Var(&cfg.BiometricScale, "bio-scale", 0, "Distance at which face confidence reaches zero")
	fs.Float64Var(&cfg.BiometricThreshold, "bio-threshold", 0, "Maximum face distance (exclusive) for a match")
	fs.IntVar(&cfg.LivenessMinFrames, "liveness-frames", 0, "Minimum frames for the liveness gate")

	fs.IntVar(&cfg.FraudThreshold, "fraud-threshold", 0, "Violations tolerated before a session is blocked")
	fs.Float64Var(&cfg.RiskFloor, "risk-floor", -1, "Risk score at or above which a RISK_SCORE signal counts")
	fs.StringVar(&cfg.CounterBackend, "counter", "", "Violation counter backend (sql or redis)")
	fs.StringVar(&cfg.RedisAddr, "redis", "", "Redis address for the redis counter")

	fs.StringVar(&cfg.DeepFaceURL, "deepface", "", "DeepFace service base URL")
	fs.StringVar(&cfg.DeepFaceModel, "deepface-model", "", "DeepFace model name")
	fs.DurationVar(&cfg.DeepFaceTimeout, "deepface-timeout", 0, "Timeout per embedding call")
	fs.IntVar(&cfg.DeepFaceRetries, "deepface-retries", -1, "Retries on embedding service failure")
	fs.StringVar(&cfg.GeminiModel, "gemini-model", "", "Gemini model for document OCR")
	fs.DurationVar(&cfg.OCRTimeout, "ocr-timeout", 0, "Timeout per OCR call")
	fs.DurationVar(&cfg.RollLookupTimeout, "roll-timeout", 0, "Timeout per roll lookup")

	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload", 0, "Maximum request body size in bytes")
	fs.StringVar(&cfg.ElectionSweepSpec, "sweep", "", "Cron spec for election status recomputation")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (json or console)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	stringDefault(&cfg.DatabaseType, "DATABASE_TYPE", "sqlite")

	// Secrets - MUST be provided
	for _, s := range []struct {
		val *string
		env string
	}{
		{&cfg.AdminToken, "ADMIN_TOKEN"},
		{&cfg.AdminKeySalt, "ADMIN_KEY_SALT"},
		{&cfg.IntegritySalt, "INTEGRITY_SALT"},
	} {
		if *s.val == "" {
			*s.val = os.Getenv(s.env)
		}
		if *s.val == "" {
			return Config{}, fmt.Errorf("%s required", s.env)
		}
	}

	var err error
	if err = floatDefault(&cfg.BiometricScale, "BIOMETRIC_SCALE", 20); err != nil {
		return Config{}, err
	}
	if err = floatDefault(&cfg.BiometricThreshold, "BIOMETRIC_THRESHOLD", 10); err != nil {
		return Config{}, err
	}
	if err = intDefault(&cfg.LivenessMinFrames, "LIVENESS_MIN_FRAMES", 3); err != nil {
		return Config{}, err
	}
	if err = intDefault(&cfg.FraudThreshold, "FRAUD_THRESHOLD", 3); err != nil {
		return Config{}, err
	}
	// Zero is a valid floor: every reported risk score counts.
	if cfg.RiskFloor < 0 {
		cfg.RiskFloor = 0.5
		if v := os.Getenv("RISK_FLOOR"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Config{}, errors.New("invalid RISK_FLOOR env variable")
			}
			cfg.RiskFloor = f
		}
	}
	if cfg.RiskFloor < 0 || cfg.RiskFloor > 1 {
		return Config{}, fmt.Errorf("risk floor must be between 0 and 1, got %g", cfg.RiskFloor)
	}
	stringDefault(&cfg.CounterBackend, "COUNTER_BACKEND", CounterSQL)
	stringDefault(&cfg.RedisAddr, "REDIS_ADDR", "")
	if cfg.CounterBackend != CounterSQL && cfg.CounterBackend != CounterRedis {
		return Config{}, fmt.Errorf("unknown counter backend %q", cfg.CounterBackend)
	}
	if cfg.CounterBackend == CounterRedis && cfg.RedisAddr == "" {
		return Config{}, errors.New("REDIS_ADDR required for the redis counter")
	}

	stringDefault(&cfg.DeepFaceURL, "DEEPFACE_URL", "")
	if cfg.DeepFaceURL == "" {
		return Config{}, errors.New("DEEPFACE_URL required")
	}
	stringDefault(&cfg.DeepFaceModel, "DEEPFACE_MODEL", "Facenet")
	if err = durationDefault(&cfg.DeepFaceTimeout, "DEEPFACE_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.DeepFaceRetries < 0 {
		cfg.DeepFaceRetries = 0
		if err = intDefault(&cfg.DeepFaceRetries, "DEEPFACE_RETRIES", 2); err != nil {
			return Config{}, err
		}
	}

	// Gemini key is env only; OCR is skipped without it.
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	stringDefault(&cfg.GeminiModel, "GEMINI_MODEL", "gemini-1.5-flash")
	if err = durationDefault(&cfg.OCRTimeout, "OCR_TIMEOUT", 20*time.Second); err != nil {
		return Config{}, err
	}
	if err = durationDefault(&cfg.RollLookupTimeout, "ROLL_LOOKUP_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 10 << 20
		if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 {
				return Config{}, errors.New("invalid MAX_UPLOAD_BYTES env variable")
			}
			cfg.MaxUploadBytes = n
		}
	}
	stringDefault(&cfg.ElectionSweepSpec, "ELECTION_SWEEP", "@every 30s")
	stringDefault(&cfg.LogLevel, "LOG_LEVEL", "info")
	stringDefault(&cfg.LogFormat, "LOG_FORMAT", "json")

	return cfg, nil
}

func stringDefault(v *string, env, def string) {
	if *v != "" {
		return
	}
	if e := os.Getenv(env); e != "" {
		*v = e
		return
	}
	*v = def
}

func intDefault(v *int, env string, def int) error {
	if *v != 0 {
		return nil
	}
	if e := os.Getenv(env); e != "" {
		n, err := strconv.Atoi(e)
		if err != nil {
			return fmt.Errorf("invalid %s env variable", env)
		}
		*v = n
		return nil
	}
	*v = def
	return nil
}

func floatDefault(v *float64, env string, def float64) error {
	if *v != 0 {
		return nil
	}
	if e := os.Getenv(env); e != "" {
		f, err := strconv.ParseFloat(e, 64)
		if err != nil {
			return fmt.Errorf("invalid %s env variable", env)
		}
		*v = f
		return nil
	}
	*v = def
	return nil
}

func durationDefault(v *time.Duration, env string, def time.Duration) error {
	if *v != 0 {
		return nil
	}
	if e := os.Getenv(env); e != "" {
		d, err := time.ParseDuration(e)
		if err != nil {
			return fmt.Errorf("invalid %s env variable", env)
		}
		*v = d
		return nil
	}
	*v = def
	return nil
}
