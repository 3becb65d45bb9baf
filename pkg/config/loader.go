package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("config.nil_pointer")

	// ErrParsingConfig wraps env parsing failures.
	ErrParsingConfig = errors.New("config.parsing_failed")
)

var defaultEnvLoaded sync.Once

// Load populates cfg from environment variables. The default .env file is
// loaded once per process; its absence is not an error.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}
