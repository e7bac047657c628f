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

// Package survey holds the QVT/QVCT domain vocabulary of the POV survey
// export: Likert item prefixes, socio-demographic columns, code-to-label
// mappings, and the wide-to-long reshaping used by survey-aware charts.
package survey

import (
	"fmt"
	"strings"

	"github.com/qvcti/visualization-api/internal/dataset"
)

// likertPrefixes lists known Likert item prefixes in match order. Longer
// prefixes sort before their own prefixes (PPD before PD) so matching stays
// unambiguous.
var likertPrefixes = []string{
	"POV", "PGC", "CSA", "CSE", "EVPVP", "RECO", "COM",
	"DL", "PPD", "JUST", "PI", "PD", "ENG", "EPUI",
}

// PrefixLabels maps Likert prefixes to human-readable dimension labels.
var PrefixLabels = map[string]string{
	"POV":   "Pratiques organisationnelles vertueuses",
	"PGC":   "Pratiques de gestion de carrière",
	"CSA":   "Pratiques de santé et de sécurité",
	"CSE":   "Pratiques de santé et de sécurité",
	"EVPVP": "Pratiques de conciliation entre la vie privée et la vie personnelle",
	"RECO":  "Pratiques de reconnaissance",
	"COM":   "Pratiques de communication",
	"DL":    "Pratiques de dialogue social",
	"PPD":   "Pratiques de participation à la prise de décision",
	"JUST":  "Pratiques de justice organisationnelle",
	"PI":    "Pratiques d'inclusion",
	"PD":    "Pratiques de développement durable",
	"ENG":   "Engagement au travail",
	"EPUI":  "Epuisement émotionnel",
}

// SocioColumns are the socio-demographic columns expected in the POV export.
var SocioColumns = []string{
	"ID", "Sexe", "Age", "Contrat", "Temps", "Encadre", "Ancienne", "Secteur", "TailleOr",
}

// DemoValueMapping translates numeric socio-demographic codes to labels.
var DemoValueMapping = map[string]map[int]string{
	"Sexe": {1: "Homme", 2: "Femme", 3: "Autre"},
	"Encadre": {
		1: "Non",
		2: "Oui, en tant que cadre opérationnel",
		3: "Oui, en tant que cadre dirigeant",
	},
	"Temps":   {1: "Temps plein", 2: "Temps partiel"},
	"Contrat": {1: "CDI", 2: "CDD", 3: "Intérim"},
	"Secteur": {1: "Privé", 2: "Public", 3: "Associatif"},
	"TailleOr": {
		1: "Moins de 10",
		2: "De 11 à 49",
		3: "De 50 à 249",
		4: "De 250 à 499",
		5: "500 et plus",
	},
}

// Prefix returns the Likert dimension prefix of a column name, or false when
// the column is not a Likert item.
func Prefix(column string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(column))
	for _, p := range likertPrefixes {
		if strings.HasPrefix(upper, p) {
			return p, true
		}
	}
	return "", false
}

// PrefixLabel returns the human-readable label of a dimension prefix,
// falling back to the prefix itself.
func PrefixLabel(prefix string) string {
	if label, ok := PrefixLabels[prefix]; ok {
		return label
	}
	return prefix
}

// QuestionLabel decorates a Likert item name with its dimension label.
func QuestionLabel(column string) string {
	if p, ok := Prefix(column); ok {
		return fmt.Sprintf("%s (%s)", column, PrefixLabel(p))
	}
	return column
}

// LikertColumns returns the dataset columns recognized as Likert items, in
// column order.
func LikertColumns(d *dataset.Dataset) []string {
	var out []string
	for _, c := range d.Columns() {
		if _, ok := Prefix(c.Name); ok {
			out = append(out, c.Name)
		}
	}
	return out
}

// MapDemographics returns a copy of the dataset with numeric
// socio-demographic codes replaced by their labels (Sexe 1 becomes Homme,
// and so on). Unknown codes pass through unchanged.
func MapDemographics(d *dataset.Dataset) *dataset.Dataset {
	out := d.Clone()
	for col, mapping := range DemoValueMapping {
		if !out.HasColumn(col) {
			continue
		}
		for _, row := range out.Rows() {
			f, ok := dataset.AsFloat(row[col])
			if !ok {
				continue
			}
			if label, found := mapping[int(f)]; found {
				row[col] = label
			}
		}
	}
	return out
}

// Response is one Likert answer in long form.
type Response struct {
	Question string
	Prefix   string
	Label    string
	Value    float64
	// Row is the source row, kept for segment lookups.
	Row dataset.Row
}

// ToLong melts the wide POV export into long-form Likert responses,
// dropping cells that are empty or non-numeric. Responses outside 1..5 are
// counted in outOfRange but still dropped.
func ToLong(d *dataset.Dataset, likertCols []string) (responses []Response, outOfRange int) {
	for _, row := range d.Rows() {
		for _, col := range likertCols {
			v, ok := dataset.AsFloat(row[col])
			if !ok {
				continue
			}
			if v < 1 || v > 5 {
				outOfRange++
				continue
			}
			prefix, _ := Prefix(col)
			responses = append(responses, Response{
				Question: col,
				Prefix:   prefix,
				Label:    QuestionLabel(col),
				Value:    v,
				Row:      row,
			})
		}
	}
	return responses, outOfRange
}

// AgeBandLabels lists the age reporting bands in ascending order.
var AgeBandLabels = []string{
	"Moins de 30 ans", "30-39 ans", "40-49 ans", "50-59 ans", "60 ans et plus",
}

// SeniorityBandLabels lists the seniority reporting bands in ascending order.
var SeniorityBandLabels = []string{
	"Moins d'un an", "1-5 ans", "6-10 ans", "11-20 ans", "Plus de 20 ans",
}

// AgeBand maps the raw Age column to the reporting bands used by the
// demographic charts.
func AgeBand(age float64) string {
	switch {
	case age < 30:
		return "Moins de 30 ans"
	case age < 40:
		return "30-39 ans"
	case age < 50:
		return "40-49 ans"
	case age < 60:
		return "50-59 ans"
	default:
		return "60 ans et plus"
	}
}

// SeniorityBand maps the raw Ancienne column to reporting bands.
func SeniorityBand(years float64) string {
	switch {
	case years < 1:
		return "Moins d'un an"
	case years <= 5:
		return "1-5 ans"
	case years <= 10:
		return "6-10 ans"
	case years <= 20:
		return "11-20 ans"
	default:
		return "Plus de 20 ans"
	}
}
