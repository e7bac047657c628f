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

// Package builders contains one chart builder per supported chart key.
// Each builder registers itself in its init function; importing this
// package (blank import in cmd) populates the chart registry.
//
// To add a chart: create a file here, implement chart.Builder, call
// chart.Register in init, and document required columns plus recognized
// options on the type.
package builders
