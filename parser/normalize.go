// Package parser turns loosely structured species pages into typed
// catalog records.
package parser

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-scrape-pokedex/models"
)

var (
	tagRe  = regexp.MustCompile(`<[^>]*>`)
	unitRe = regexp.MustCompile(`^(\d+\.?\d*)\s*([a-zA-Z%]+)$`)
)

// unitFactors convert a recognized metric unit to its imperial
// counterpart when ConvertUnits is set.
var unitFactors = map[string]float64{
	"kg": 2.20462, // kg → lb
	"m":  3.28084, // m → ft
}

// Normalizer converts raw extracted text into typed scalars. The zero
// value keeps numbers in their source units, dropping the unit suffix.
type Normalizer struct {
	// ConvertUnits applies kg→lb and m→ft to recognized units.
	// Unrecognized units always pass through unconverted.
	ConvertUnits bool
}

// Clean strips markup, decodes HTML entities (named, numeric, and hex),
// collapses whitespace runs to single spaces, and trims.
func (n *Normalizer) Clean(raw string) string {
	out := tagRe.ReplaceAllString(raw, "")
	out = html.UnescapeString(out)
	return strings.Join(strings.Fields(out), " ")
}

// Normalize cleans raw text and types it. Percentages become fractions
// in [0,1]; numbers with a unit suffix lose the suffix; whole numbers
// come back integer-kinded; everything else stays a string. Empty or
// absent input normalizes to the empty string.
func (n *Normalizer) Normalize(raw string) models.Value {
	cleaned := n.Clean(raw)
	if cleaned == "" {
		return models.String("")
	}

	if m := unitRe.FindStringSubmatch(cleaned); m != nil {
		num, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return models.String(cleaned)
		}
		unit := m[2]
		if unit == "%" {
			return models.Float(num / 100)
		}
		if factor, ok := unitFactors[unit]; ok && n.ConvertUnits {
			return models.Float(num * factor)
		}
		return numeric(m[1], num)
	}

	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return numeric(cleaned, f)
	}
	return models.String(cleaned)
}

// numeric picks integer over float when the literal has no fractional
// part.
func numeric(literal string, f float64) models.Value {
	if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return models.Int(i)
	}
	return models.Float(f)
}
