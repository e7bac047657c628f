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

	"github.com/qvcti/visualization-api/internal/config"
	"github.com/qvcti/visualization-api/internal/dataset"
	"github.com/qvcti/visualization-api/internal/server"
	"github.com/qvcti/visualization-api/internal/viz"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the visualization HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetConfig()
		service := viz.NewService(dataset.Limits{
			MaxRows:    cfg.Limits.MaxRows,
			MaxColumns: cfg.Limits.MaxColumns,
		}, logger)
		srv := server.New(service, *cfg, logger)
		if err := srv.ListenAndServe(); err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	},
}
