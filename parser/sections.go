package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SectionSpec names one known section of a species page. Heading is the
// exact heading text identifying the section; Key is the stable key the
// assembled record uses. Index is the section's position in the legacy
// keyed-by-position page variant, -1 when the section never appeared
// there.
type SectionSpec struct {
	Key     string
	Heading string
	Index   int
}

// DefaultSections lists the sections assembled into every record, in
// output order. The index values mirror the historical table order so
// pages from the older variant still resolve.
var DefaultSections = []SectionSpec{
	{Key: "pokedexData", Heading: "Pokédex data", Index: 0},
	{Key: "training", Heading: "Training", Index: 1},
	{Key: "breeding", Heading: "Breeding", Index: 2},
	{Key: "pokedexEntries", Heading: "Pokédex entries", Index: 4},
	{Key: "whereToFind", Heading: "Where to find", Index: 5},
	{Key: "otherLanguages", Heading: "Other languages", Index: 6},
}

// statsSection locates the base-stats table, which feeds the stat
// extractor rather than the generic converter.
var statsSection = SectionSpec{Key: "baseStats", Heading: "Base stats", Index: 3}

// LocateSection finds the data table for the named section: the first
// heading whose exact text equals name, then the nearest following
// table sibling, skipping intervening non-table siblings. Returns nil
// when the heading is missing or no table follows; a missing section is
// data, not an error.
func LocateSection(doc *goquery.Document, name string) *goquery.Selection {
	var table *goquery.Selection
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if strings.TrimSpace(heading.Text()) != name {
			return true
		}
		if t := heading.NextAllFiltered("table").First(); t.Length() > 0 {
			table = t
		}
		// Only the first matching heading counts, found or not.
		return false
	})
	return table
}

// locate resolves a section against the canonical heading scheme, then
// falls back to the legacy positional scheme.
func locate(doc *goquery.Document, spec SectionSpec) *goquery.Selection {
	if table := LocateSection(doc, spec.Heading); table != nil {
		return table
	}
	if spec.Index >= 0 {
		if t := doc.Find(".vitals-table").Eq(spec.Index); t.Length() > 0 {
			return t
		}
	}
	return nil
}
