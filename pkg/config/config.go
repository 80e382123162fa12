// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads engine configuration from defaults, an optional
// YAML file, and PREFVEC_-prefixed environment variables, in that
// order of precedence.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Store     StoreConfig     `koanf:"store"`
	Engine    EngineConfig    `koanf:"engine"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type StoreConfig struct {
	Backend    string `koanf:"backend"` // inmemory, redis, sqlite, qdrant
	Addr       string `koanf:"addr"`    // redis / qdrant address
	DB         int    `koanf:"db"`      // redis logical database
	DSN        string `koanf:"dsn"`     // sqlite path
	Collection string `koanf:"collection"`
}

type EngineConfig struct {
	LearningRate float64 `koanf:"learning_rate"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// Load reads configuration. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("store.backend", "inmemory")
	k.Set("store.addr", "localhost:6334")
	k.Set("store.db", 0)
	k.Set("store.dsn", "data/prefvec.db")
	k.Set("store.collection", "user_profiles")

	k.Set("engine.learning_rate", 0.3)

	k.Set("telemetry.exporter", "stdout")
	k.Set("telemetry.otlp_insecure", true)

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (PREFVEC_STORE_BACKEND -> store.backend)
	if err := k.Load(env.Provider("PREFVEC_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "PREFVEC_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
