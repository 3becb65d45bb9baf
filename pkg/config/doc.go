// Package config loads typed configuration structs from environment
// variables, reading a .env file first when one exists. Struct fields
// declare their variables with `env` tags:
//
//	type SessionConfig struct {
//	    RestoreTimeout time.Duration `env:"SESSION_RESTORE_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg SessionConfig
//	if err := config.Load(&cfg); err != nil { ... }
package config
