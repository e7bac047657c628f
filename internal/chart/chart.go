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
	"log"
	"sync"

	"github.com/qvcti/visualization-api/internal/dataset"
)

// Builder turns a filtered dataset plus chart configuration into an
// EncodingPlan. One implementation exists per chart key; implementations
// self-register in their init functions and are selected by explicit key
// lookup, never by reflection.
type Builder interface {
	// Key is the chart key this builder serves.
	Key() string
	// RequiredColumns declares the columns the builder depends on. Dynamic
	// column families (Likert items) are detected inside Build instead.
	RequiredColumns() []dataset.ColumnSpec
	// RecognizedOptions enumerates the configuration keys the builder
	// honors. Unrecognized keys in a request are ignored, not errors.
	RecognizedOptions() []string
	// Build shapes the filtered dataset into an EncodingPlan.
	Build(d *dataset.Dataset, cfg Config) (*EncodingPlan, error)
}

var (
	mu       sync.RWMutex
	builders = make(map[string]Builder)
	order    []string
)

// Register adds a builder under its key. Intended to be called from init
// functions of the builders package; registration order is preserved and is
// the order reported by Keys.
func Register(b Builder) {
	mu.Lock()
	defer mu.Unlock()
	key := b.Key()
	if _, exists := builders[key]; exists {
		log.Printf("WARN: chart builder for %q is being overwritten.", key)
	} else {
		order = append(order, key)
	}
	builders[key] = b
}

// Keys returns all registered chart keys in registration order.
func Keys() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Resolve returns the builder for key, or UnknownChartError carrying the
// set of valid keys.
func Resolve(key string) (Builder, error) {
	mu.RLock()
	defer mu.RUnlock()
	b, ok := builders[key]
	if !ok {
		supported := make([]string, len(order))
		copy(supported, order)
		return nil, &UnknownChartError{Key: key, Supported: supported}
	}
	return b, nil
}

// CheckData runs the standard post-filter usability checks shared by all
// builders: a dataset with zero rows, or whose required columns are entirely
// null, cannot produce a chart.
func CheckData(d *dataset.Dataset, specs []dataset.ColumnSpec) error {
	if d.Len() == 0 {
		return &InsufficientDataError{Msg: "no rows remain after filtering"}
	}
	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		allNull := true
		for _, v := range d.ColumnValues(spec.Name) {
			if v != nil {
				allNull = false
				break
			}
		}
		if allNull {
			return &InsufficientDataError{Msg: fmt.Sprintf("required column %q contains no values", spec.Name)}
		}
	}
	return nil
}
