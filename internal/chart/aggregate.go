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
	"math"
	"sort"

	"github.com/qvcti/visualization-api/internal/dataset"
)

// Aggregation methods accepted by aggregation builders.
const (
	AggMean   = "mean"
	AggSum    = "sum"
	AggCount  = "count"
	AggMedian = "median"
)

// Group is one partition of a grouped dataset.
type Group struct {
	Key string
	// Count is the number of rows in the group, including rows whose value
	// cell is null.
	Count int
	// Values holds the non-null numeric cells of the value column.
	Values []float64
}

// GroupBy partitions rows by the string form of groupCol, collecting
// numeric values of valueCol per group. Group order is the first-seen order
// of the key in the dataset; rows with a null group key are dropped. Every
// remaining row lands in exactly one group.
func GroupBy(d *dataset.Dataset, groupCol, valueCol string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, row := range d.Rows() {
		key, ok := dataset.AsString(row[groupCol])
		if !ok {
			continue
		}
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Count++
		if f, ok := dataset.AsFloat(row[valueCol]); ok {
			groups[i].Values = append(groups[i].Values, f)
		}
	}
	return groups
}

// Reduce applies an aggregation method to one group. Unknown methods fall
// back to mean, matching the ignore-unrecognized-options policy for
// configuration values.
func Reduce(g Group, method string) float64 {
	switch method {
	case AggSum:
		return sum(g.Values)
	case AggCount:
		return float64(g.Count)
	case AggMedian:
		return median(g.Values)
	default:
		return Mean(g.Values)
	}
}

// Mean returns the arithmetic mean, or NaN for an empty slice.
func Mean(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	return sum(vs) / float64(len(vs))
}

// StdDev returns the population standard deviation, or 0 when fewer than
// two values are present.
func StdDev(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	m := Mean(vs)
	var acc float64
	for _, v := range vs {
		acc += (v - m) * (v - m)
	}
	return math.Sqrt(acc / float64(len(vs)))
}

func sum(vs []float64) float64 {
	var acc float64
	for _, v := range vs {
		acc += v
	}
	return acc
}

func median(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Round2 rounds to two decimals for stable, presentation-ready plan rows.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
