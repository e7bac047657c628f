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

// Package viz runs the visualization pipeline: ingest an uploaded tabular
// file, validate and filter it, hand it to the requested chart builder, and
// assemble the result into a Vega-Lite specification.
package viz

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qvcti/visualization-api/internal/chart"
	"github.com/qvcti/visualization-api/internal/dataset"
	"github.com/qvcti/visualization-api/internal/vega"
)

// Request carries everything needed to generate one chart.
type Request struct {
	ChartKey string
	Filename string
	Payload  []byte
	Filters  []dataset.Predicate
	Config   chart.Config
}

// Response wraps the assembled Vega-Lite spec with generation metadata.
type Response struct {
	ChartKey    string         `json:"chart_key"`
	GeneratedAt time.Time      `json:"generated_at"`
	Spec        map[string]any `json:"spec"`
}

// Service is the stateless pipeline front. It holds no per-request state,
// so a single instance is safe for concurrent use.
type Service struct {
	limits dataset.Limits
	logger *zap.Logger
}

func NewService(limits dataset.Limits, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{limits: limits, logger: logger}
}

// Generate runs the full pipeline for one request. Errors carry a Kind()
// taxonomy the transport layer maps to HTTP statuses.
func (s *Service) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	logger := s.logger.With(zap.String("chart_key", req.ChartKey))

	builder, err := chart.Resolve(req.ChartKey)
	if err != nil {
		return nil, err
	}

	ingestStart := time.Now()
	res, err := dataset.Read(req.Payload, req.Filename, s.limits)
	if err != nil {
		return nil, err
	}
	d := res.Dataset
	if res.SkippedRows > 0 {
		logger.Warn("skipped malformed rows", zap.Int("rows", res.SkippedRows))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err = dataset.Validate(d, builder.RequiredColumns())
	if err != nil {
		return nil, err
	}

	d, err = dataset.Apply(d, req.Filters)
	if err != nil {
		return nil, err
	}
	if err := chart.CheckData(d, builder.RequiredColumns()); err != nil {
		return nil, err
	}
	ingestDur := time.Since(ingestStart)

	buildStart := time.Now()
	plan, err := builder.Build(d, req.Config)
	if err != nil {
		return nil, err
	}
	spec, err := vega.Assemble(plan)
	if err != nil {
		return nil, err
	}

	logger.Info("chart generated",
		zap.Int("rows_in", res.Dataset.Len()),
		zap.Int("rows_filtered", d.Len()),
		zap.Duration("ingest", ingestDur),
		zap.Duration("build", time.Since(buildStart)),
		zap.Duration("total", time.Since(start)),
	)

	return &Response{
		ChartKey:    req.ChartKey,
		GeneratedAt: time.Now().UTC(),
		Spec:        spec,
	}, nil
}
