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
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/qvcti/visualization-api/internal/chart/builders"
	"github.com/qvcti/visualization-api/internal/config"
)

var (
	addr      string
	logLevel  string
	maxUpload int64

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "qvcti-viz",
	Short: "HTTP API turning QVT/QVCT survey files into Vega-Lite charts",
	Long: `qvcti-viz serves a stateless HTTP API that accepts uploaded QVT/QVCT
tabular survey files (CSV or XLSX) and returns ready-to-render Vega-Lite
chart specifications.`,
	PersistentPreRunE: initConfigAndLogger,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// initConfigAndLogger resolves configuration from environment and flags,
// then builds the process logger. Flags win over environment values.
func initConfigAndLogger(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cmd != nil {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = addr
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("max-upload-bytes") {
			cfg.Limits.MaxUploadBytes = maxUpload
		}
	}
	config.SetConfig(cfg)

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	logger, err = zapCfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", ":8080", "HTTP listen address (also QVCTI_ADDR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error (also QVCTI_LOG_LEVEL)")
	rootCmd.PersistentFlags().Int64Var(&maxUpload, "max-upload-bytes", 10<<20, "Maximum accepted upload size in bytes (also QVCTI_MAX_UPLOAD_BYTES)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(keysCmd)
}
