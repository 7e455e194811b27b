package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

type ServerEnv = string

var (
	DevEnv  ServerEnv = "dev"
	ProdEnv ServerEnv = "prod"
)

type GeneralConfig struct {
	HTTPPort string
	HTTPHost string
	Env      string
	LogLevel string
}

func (gc *GeneralConfig) Load() error {
	gc.HTTPPort = getEnvOrDefault("HTTP_PORT", "8080")
	gc.HTTPHost = getEnvOrDefault("HTTP_HOST", "localhost")
	gc.Env = getEnvOrDefault("ENV", DevEnv)
	gc.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	return gc.Validate()
}

func (gc *GeneralConfig) Validate() error {
	if gc.HTTPPort == "" || gc.HTTPHost == "" || gc.Env == "" {
		return errors.New("invalid server config")
	}
	return nil
}

// ApplyLogLevel configures the global zerolog level from LOG_LEVEL,
// falling back to info on unknown values.
func (gc *GeneralConfig) ApplyLogLevel() {
	level, err := zerolog.ParseLevel(gc.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// SolverConfig carries the engine tunables and the batch output
// destination.
type SolverConfig struct {
	// FeeBps is the multiplicative fee discount applied to sell inputs,
	// in basis points. Zero keeps the bare constant-product formula.
	FeeBps uint32
	// ConservationTolerance is the absolute wei-scale error allowed by
	// the conservation verifier.
	ConservationTolerance int64
	// BatchWorkers bounds the solve fan-out for one instance file.
	BatchWorkers int
	OutputDir    string
}

func (sc *SolverConfig) Load() error {
	fee, err := envInt("FEE_BPS", 0)
	if err != nil {
		return err
	}
	tol, err := envInt("CONSERVATION_TOLERANCE", 10000)
	if err != nil {
		return err
	}
	workers, err := envInt("BATCH_WORKERS", 4)
	if err != nil {
		return err
	}
	sc.FeeBps = uint32(fee)
	sc.ConservationTolerance = tol
	sc.BatchWorkers = int(workers)
	sc.OutputDir = getEnvOrDefault("OUTPUT_DIR", "solutions")
	return sc.Validate()
}

func (sc *SolverConfig) Validate() error {
	if sc.FeeBps >= 10000 {
		return fmt.Errorf("FEE_BPS %d leaves no input", sc.FeeBps)
	}
	if sc.ConservationTolerance < 0 {
		return errors.New("CONSERVATION_TOLERANCE must be non-negative")
	}
	if sc.BatchWorkers <= 0 {
		return errors.New("BATCH_WORKERS must be positive")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
