package parser

import (
	"errors"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-pokedex/models"
)

// ErrInvalidDocument reports a document too empty to assemble.
var ErrInvalidDocument = errors.New("parser: invalid document")

// descriptionLimit caps the number of leading paragraphs kept.
const descriptionLimit = 3

// Extractor runs the extraction engine against one document. The zero
// value is not usable; construct with NewExtractor.
type Extractor struct {
	Norm     *Normalizer
	Sections []SectionSpec
}

// NewExtractor returns an extractor with the default section set and
// source-unit normalization.
func NewExtractor() *Extractor {
	return &Extractor{
		Norm:     &Normalizer{},
		Sections: DefaultSections,
	}
}

// Assemble produces the catalog record for one species page. Every
// known section appears in the record even when the page lacks it; a
// missing sprite table leaves Sprites empty. The only failure is an
// unusable document.
func (e *Extractor) Assemble(doc *goquery.Document) (*models.Record, error) {
	if doc == nil || doc.Find("body").Children().Length() == 0 {
		return nil, ErrInvalidDocument
	}

	record := &models.Record{
		Sections:         models.NewSectionSet(),
		TypeInteractions: e.TypeInteractions(doc),
		BaseStats:        e.Stats(locate(doc, statsSection)),
		Evolutions:       e.EvolutionChain(doc),
	}

	for _, spec := range e.Sections {
		record.Sections.Set(spec.Key, e.TableRecord(locate(doc, spec)))
	}

	record.Description = e.description(doc)

	sprites, err := e.Sprites(doc)
	if err != nil {
		slog.Debug("sprite table missing", slog.Any("error", err))
	} else {
		record.Sprites = sprites
	}

	return record, nil
}

// description keeps the first few content paragraphs, normalized
// individually. Fewer than the limit is fine.
func (e *Extractor) description(doc *goquery.Document) []string {
	var paragraphs []string
	doc.Find("div > div > p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if text := e.Norm.Clean(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < descriptionLimit
	})
	return paragraphs
}
