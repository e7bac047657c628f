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
	"strings"

	"github.com/qvcti/visualization-api/internal/dataset"
)

// Config is the generic per-chart configuration decoded from the request.
// Builders read it through the typed accessors; keys a builder does not
// recognize are ignored for forward compatibility.
type Config map[string]any

// Role restricts which configuration options a builder honors. It is a
// configuration axis, not a separate code path: every builder enforces its
// own restrictions, the transport layer never does.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleRH       Role = "rh"
)

// Role returns the requested role view, defaulting to RH (the full
// configuration surface). Unknown role values also fall back to RH.
func (c Config) Role() Role {
	switch Role(strings.ToLower(c.String("role", string(RoleRH)))) {
	case RoleEmployee:
		return RoleEmployee
	case RoleManager:
		return RoleManager
	default:
		return RoleRH
	}
}

// String reads a string option with a default.
func (c Config) String(key, def string) string {
	if v, ok := c[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// Float reads a numeric option with a default. JSON numbers arrive as
// float64; numeric strings are accepted too.
func (c Config) Float(key string, def float64) float64 {
	if v, ok := c[key]; ok {
		if f, ok := dataset.AsFloat(v); ok {
			return f
		}
	}
	return def
}

// Int reads an integer option with a default.
func (c Config) Int(key string, def int) int {
	if v, ok := c[key]; ok {
		if f, ok := dataset.AsFloat(v); ok {
			return int(f)
		}
	}
	return def
}

// Bool reads a boolean option with a default.
func (c Config) Bool(key string, def bool) bool {
	if v, ok := c[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
		if s, ok := v.(string); ok {
			switch strings.ToLower(s) {
			case "true", "1", "yes":
				return true
			case "false", "0", "no":
				return false
			}
		}
	}
	return def
}
