package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-pokedex/models"
)

var barWidthRe = regexp.MustCompile(`width:\s*(\d+(?:\.\d+)?)%`)

// TableRecord converts a key/value section table into a FieldRecord.
// Each row's header cell is the field name; each data cell is
// normalized individually, except cells carrying a graphical bar, whose
// value is the percentage encoded in the bar's style attribute. Rows
// with one data cell yield a scalar, rows with several yield the full
// ordered sequence. Duplicate headers: the last row wins.
func (e *Extractor) TableRecord(table *goquery.Selection) *models.FieldRecord {
	record := models.NewFieldRecord()
	if table == nil {
		return record
	}

	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		name := e.Norm.Clean(row.Find("th").First().Text())
		if name == "" {
			return
		}

		var values models.FieldValue
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			values = append(values, e.cellValue(cell))
		})
		if len(values) == 0 {
			return
		}
		record.Set(name, values)
	})
	return record
}

// cellValue normalizes one data cell, reading percentage bars out of
// their style attribute instead of the (empty) cell text.
func (e *Extractor) cellValue(cell *goquery.Selection) models.Value {
	if bar := cell.Find("div[style]").First(); bar.Length() > 0 {
		if m := barWidthRe.FindStringSubmatch(bar.AttrOr("style", "")); m != nil {
			return e.Norm.Normalize(m[1] + "%")
		}
	}
	return e.Norm.Normalize(cell.Text())
}

// Stats converts the base-stats table into StatEntry rows: stat name
// from the header cell, base/min/max from the first three numeric
// cells, truncated to integers. A footer row synthesizes a "Total"
// entry whose base is numeric but whose min/max carry the footer's
// header labels as strings. A nil table yields an empty sequence.
func (e *Extractor) Stats(table *goquery.Selection) []models.StatEntry {
	var entries []models.StatEntry
	if table == nil {
		return entries
	}

	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		name := e.Norm.Clean(row.Find("th").First().Text())
		if name == "" {
			return
		}

		cells := row.Find("td.cell-num")
		entry := models.StatEntry{StatName: name}
		entry.Base = e.Norm.Normalize(cells.Eq(0).Text()).AsInt()
		entry.Min = models.Int(e.Norm.Normalize(cells.Eq(1).Text()).AsInt())
		entry.Max = models.Int(e.Norm.Normalize(cells.Eq(2).Text()).AsInt())
		entries = append(entries, entry)
	})

	foot := table.Find("tfoot tr").First()
	if foot.Length() > 0 {
		name := e.Norm.Clean(foot.Find("th").First().Text())
		if name == "" {
			name = "Total"
		}
		labels := foot.Find("th.cell-num")
		entries = append(entries, models.StatEntry{
			StatName: name,
			Base:     e.Norm.Normalize(foot.Find("td").First().Text()).AsInt(),
			Min:      models.String(e.Norm.Clean(labels.Eq(0).Text())),
			Max:      models.String(e.Norm.Clean(labels.Eq(1).Text())),
		})
	}
	return entries
}

// TypeInteractions reads the type-effectiveness table: the header cells
// name the attacking types, the second row's cells carry the
// multiplier (normalized) and a longer description in their title
// attribute.
func (e *Extractor) TypeInteractions(doc *goquery.Document) map[string]models.TypeInteraction {
	interactions := make(map[string]models.TypeInteraction)

	doc.Find(".type-table.type-table-pokedex").Each(func(_ int, table *goquery.Selection) {
		var names []string
		table.Find("th").Each(func(_ int, th *goquery.Selection) {
			names = append(names, e.Norm.Clean(th.Text()))
		})

		table.Find("tr").Eq(1).Find("td").Each(func(i int, cell *goquery.Selection) {
			if i >= len(names) || names[i] == "" {
				return
			}
			title, _ := cell.Attr("title")
			interactions[names[i]] = models.TypeInteraction{
				Effectiveness: e.Norm.Normalize(cell.Text()),
				Description:   strings.TrimSpace(title),
			}
		})
	})
	return interactions
}
