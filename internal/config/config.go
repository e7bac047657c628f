/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig
	Limits LimitsConfig

	LogLevel string
}

// ServerConfig holds HTTP transport configuration.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// LimitsConfig bounds per-request resource usage. Uploads are rejected
// before ingestion when they exceed MaxUploadBytes; ingested datasets are
// rejected when they exceed MaxRows or MaxColumns.
type LimitsConfig struct {
	MaxUploadBytes int64
	MaxRows        int
	MaxColumns     int
}

var globalConfig *Config

// Load reads configuration from QVCTI_* environment variables, applying
// defaults for anything unset. Flags in cmd/root.go may override the result.
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("QVCTI")
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("max_upload_bytes", int64(10<<20))
	v.SetDefault("max_rows", 50000)
	v.SetDefault("max_columns", 400)
	v.SetDefault("log_level", "info")

	return &Config{
		Server: ServerConfig{
			Addr:           v.GetString("addr"),
			AllowedOrigins: splitOrigins(v.GetString("allowed_origins")),
		},
		Limits: LimitsConfig{
			MaxUploadBytes: v.GetInt64("max_upload_bytes"),
			MaxRows:        v.GetInt("max_rows"),
			MaxColumns:     v.GetInt("max_columns"),
		},
		LogLevel: v.GetString("log_level"),
	}
}

// SetConfig sets the global configuration.
func SetConfig(cfg *Config) {
	globalConfig = cfg
}

// GetConfig returns the global configuration, loading defaults when it was
// never set explicitly.
func GetConfig() *Config {
	if globalConfig == nil {
		globalConfig = Load()
	}
	return globalConfig
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
