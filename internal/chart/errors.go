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
package chart

import (
	"fmt"
	"strings"
)

// UnknownChartError reports a chart key with no registered builder.
type UnknownChartError struct {
	Key       string
	Supported []string
}

func (e *UnknownChartError) Error() string {
	return fmt.Sprintf("unknown chart key %q (supported: %s)", e.Key, strings.Join(e.Supported, ", "))
}

// Kind returns the machine-readable error kind for the transport layer.
func (e *UnknownChartError) Kind() string { return "unknown_chart" }

// InsufficientDataError reports that filtering or validation left no usable
// rows for the requested chart. Reported explicitly so the caller can tell
// "no data" apart from a rendering problem.
type InsufficientDataError struct {
	Msg string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Msg)
}

func (e *InsufficientDataError) Kind() string { return "insufficient_data" }
