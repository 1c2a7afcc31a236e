package parser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/aluiziolira/go-scrape-pokedex/models"
)

func mustDoc(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestLocateSection(t *testing.T) {
	doc := mustDoc(t, `
		<h2>Training</h2>
		<p>intervening paragraph</p>
		<div>another non-table sibling</div>
		<table id="training"><tbody><tr><th>EV yield</th><td>1</td></tr></tbody></table>
		<h2>Training</h2>
		<table id="duplicate"></table>
		<h2>Orphan</h2>
		<p>no table follows</p>
	`)

	table := LocateSection(doc, "Training")
	if table == nil {
		t.Fatalf("expected Training table")
	}
	if id, _ := table.Attr("id"); id != "training" {
		t.Fatalf("located table id = %q, want %q (first heading wins)", id, "training")
	}

	if got := LocateSection(doc, "Breeding"); got != nil {
		t.Fatalf("missing heading should locate nil, got %v", got)
	}
	if got := LocateSection(doc, "Orphan"); got != nil {
		t.Fatalf("heading without following table should locate nil, got %v", got)
	}
}

func TestLocatePositionalFallback(t *testing.T) {
	// Legacy variant: no headings, tables keyed purely by position.
	doc := mustDoc(t, `
		<table class="vitals-table" id="zero"></table>
		<table class="vitals-table" id="one"></table>
	`)

	table := locate(doc, SectionSpec{Key: "training", Heading: "Training", Index: 1})
	if table == nil {
		t.Fatalf("expected positional fallback to resolve")
	}
	if id, _ := table.Attr("id"); id != "one" {
		t.Fatalf("fallback table id = %q, want %q", id, "one")
	}

	if got := locate(doc, SectionSpec{Key: "x", Heading: "X", Index: -1}); got != nil {
		t.Fatalf("section without a positional index should not fall back, got %v", got)
	}
}

func TestTableRecordArity(t *testing.T) {
	e := NewExtractor()
	doc := mustDoc(t, `
		<table><tbody>
			<tr><th>A</th><td>1</td></tr>
			<tr><th>B</th><td>two</td></tr>
			<tr><th>X</th><td>1</td><td>2</td><td>3</td></tr>
		</tbody></table>
	`)

	record := e.TableRecord(doc.Find("table"))
	if record.Len() != 3 {
		t.Fatalf("record has %d fields, want 3", record.Len())
	}

	a, _ := record.Get("A")
	if scalar, ok := a.Scalar(); !ok || scalar != models.Int(1) {
		t.Fatalf("A = %#v, want scalar 1", a)
	}
	b, _ := record.Get("B")
	if scalar, ok := b.Scalar(); !ok || scalar != models.String("two") {
		t.Fatalf("B = %#v, want scalar \"two\"", b)
	}

	x, _ := record.Get("X")
	if _, ok := x.Scalar(); ok {
		t.Fatalf("X should be a sequence, got scalar")
	}
	want := models.FieldValue{models.Int(1), models.Int(2), models.Int(3)}
	if diff := cmp.Diff(want, x); diff != "" {
		t.Fatalf("X mismatch (-want +got):\n%s", diff)
	}
}

func TestTableRecordDuplicateHeaderLastWins(t *testing.T) {
	e := NewExtractor()
	doc := mustDoc(t, `
		<table><tbody>
			<tr><th>Local №</th><td>001</td></tr>
			<tr><th>Local №</th><td>226</td></tr>
		</tbody></table>
	`)

	record := e.TableRecord(doc.Find("table"))
	if record.Len() != 1 {
		t.Fatalf("record has %d fields, want 1", record.Len())
	}
	v, _ := record.Get("Local №")
	scalar, ok := v.Scalar()
	if !ok {
		t.Fatalf("expected scalar, got %#v", v)
	}
	if scalar != models.Int(226) {
		t.Fatalf("duplicate header value = %#v, want last row (226)", scalar)
	}
}

func TestTableRecordBarCell(t *testing.T) {
	e := NewExtractor()
	doc := mustDoc(t, `
		<table><tbody>
			<tr><th>Gender</th><td><div style="width:88.1%;"></div></td></tr>
		</tbody></table>
	`)

	record := e.TableRecord(doc.Find("table"))
	v, _ := record.Get("Gender")
	scalar, ok := v.Scalar()
	if !ok {
		t.Fatalf("expected scalar, got %#v", v)
	}
	if scalar != models.Float(pct(88.1)) {
		t.Fatalf("bar cell = %#v, want 0.881", scalar)
	}
}

func TestTableRecordEmptyAndMissing(t *testing.T) {
	e := NewExtractor()

	if got := e.TableRecord(nil); got.Len() != 0 {
		t.Fatalf("nil table record has %d fields, want 0", got.Len())
	}

	doc := mustDoc(t, `<table><tbody></tbody></table>`)
	if got := e.TableRecord(doc.Find("table")); got.Len() != 0 {
		t.Fatalf("empty body record has %d fields, want 0", got.Len())
	}

	// A row without a header cell never produces a field.
	doc = mustDoc(t, `<table><tbody><tr><td>orphan value</td></tr></tbody></table>`)
	if got := e.TableRecord(doc.Find("table")); got.Len() != 0 {
		t.Fatalf("headerless row record has %d fields, want 0", got.Len())
	}
}

func TestStats(t *testing.T) {
	e := NewExtractor()
	doc := mustDoc(t, `
		<table>
		<tbody>
			<tr><th>HP</th><td class="cell-num">45</td><td class="cell-barchart"><div style="width:25%;"></div></td><td class="cell-num">200</td><td class="cell-num">294</td></tr>
			<tr><th>Attack</th><td class="cell-num">49</td><td class="cell-barchart"></td><td class="cell-num">92</td><td class="cell-num">216</td></tr>
			<tr><th>Defense</th><td class="cell-num">49</td><td class="cell-barchart"></td><td class="cell-num">92</td><td class="cell-num">216</td></tr>
		</tbody>
		<tfoot>
			<tr><th>Total</th><td class="cell-num cell-total">143</td><th class="cell-num">Min</th><th class="cell-num">Max</th></tr>
		</tfoot>
		</table>
	`)

	entries := e.Stats(doc.Find("table"))
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4 (3 rows + footer)", len(entries))
	}

	first := entries[0]
	if first.StatName != "HP" || first.Base != 45 {
		t.Fatalf("entry[0] = %+v, want HP/45", first)
	}
	if first.Min != models.Int(200) || first.Max != models.Int(294) {
		t.Fatalf("entry[0] min/max = %#v/%#v, want 200/294", first.Min, first.Max)
	}

	total := entries[3]
	if total.StatName != "Total" {
		t.Fatalf("entry[3].StatName = %q, want Total", total.StatName)
	}
	if total.Base != 143 {
		t.Fatalf("total base = %d, want 143", total.Base)
	}
	if total.Min != models.String("Min") || total.Max != models.String("Max") {
		t.Fatalf("total min/max = %#v/%#v, want label text", total.Min, total.Max)
	}
}

func TestStatsAbsentTable(t *testing.T) {
	e := NewExtractor()
	if got := e.Stats(nil); len(got) != 0 {
		t.Fatalf("nil table stats = %v, want empty", got)
	}
}

func TestTypeInteractions(t *testing.T) {
	e := NewExtractor()
	doc := mustDoc(t, `
		<table class="type-table type-table-pokedex">
			<tr><th>Fire</th><th>Water</th><th>Grass</th></tr>
			<tr>
				<td title="Fire is super-effective">2</td>
				<td title="Water is not very effective">½</td>
				<td></td>
			</tr>
		</table>
	`)

	interactions := e.TypeInteractions(doc)
	if len(interactions) != 3 {
		t.Fatalf("interactions = %d, want 3", len(interactions))
	}

	fire := interactions["Fire"]
	if fire.Effectiveness != models.Int(2) {
		t.Fatalf("Fire effectiveness = %#v, want 2", fire.Effectiveness)
	}
	if fire.Description != "Fire is super-effective" {
		t.Fatalf("Fire description = %q", fire.Description)
	}

	water := interactions["Water"]
	if water.Effectiveness != models.String("½") {
		t.Fatalf("Water effectiveness = %#v, want the raw glyph", water.Effectiveness)
	}

	grass := interactions["Grass"]
	if grass.Effectiveness != models.String("") || grass.Description != "" {
		t.Fatalf("Grass = %+v, want empty effectiveness and description", grass)
	}
}
