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
package dataset

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from an uploaded dataset.
type SchemaError struct {
	Columns []string
	Msg     string
}

func (e *SchemaError) Error() string {
	if len(e.Columns) > 0 {
		return fmt.Sprintf("schema error: missing required column(s): %s", strings.Join(e.Columns, ", "))
	}
	return fmt.Sprintf("schema error: %s", e.Msg)
}

// Kind returns the machine-readable error kind for the transport layer.
func (e *SchemaError) Kind() string { return "schema_error" }

// TypeCoercionError reports a column whose values do not parse to the
// declared semantic type within the chart's malformed-cell tolerance.
type TypeCoercionError struct {
	Column   string
	Declared Type
	Bad      int
	Total    int
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("type coercion error: column %q: %d of %d cells not coercible to %s",
		e.Column, e.Bad, e.Total, e.Declared)
}

func (e *TypeCoercionError) Kind() string { return "type_coercion_error" }

// FilterError reports a predicate referencing an unknown column or using an
// operator incompatible with the column's type.
type FilterError struct {
	Column string
	Msg    string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter error: column %q: %s", e.Column, e.Msg)
}

func (e *FilterError) Kind() string { return "filter_error" }

// PayloadTooLargeError reports an upload exceeding the configured bounds,
// either in raw bytes or in ingested rows/columns.
type PayloadTooLargeError struct {
	Msg string
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload too large: %s", e.Msg)
}

func (e *PayloadTooLargeError) Kind() string { return "payload_too_large" }
