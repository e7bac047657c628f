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

	"github.com/qvcti/visualization-api/internal/chart"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the registered chart keys",
	Run: func(cmd *cobra.Command, args []string) {
		for _, key := range chart.Keys() {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
	},
}
