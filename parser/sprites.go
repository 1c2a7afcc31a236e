package parser

import (
	"errors"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-pokedex/models"
)

// ErrNoSpriteTable reports a page without a sprite-history table.
var ErrNoSpriteTable = errors.New("parser: no sprite table")

// Sprites converts the sprite-history table into variant → release →
// image URL. Every row carries the full header-column key set; columns
// without a linked image hold the absence sentinel. Rows with an empty
// variant cell are keyed "Unknown Type".
func (e *Extractor) Sprites(doc *goquery.Document) (models.SpriteTable, error) {
	table := doc.Find(".data-table.sprites-table.sprites-history-table").First()
	if table.Length() == 0 {
		return nil, ErrNoSpriteTable
	}

	var headers []string
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		if i == 0 {
			return
		}
		headers = append(headers, e.Norm.Clean(th.Text()))
	})

	sprites := make(models.SpriteTable)
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		variant := e.Norm.Clean(row.Find("td").First().Text())
		if variant == "" {
			variant = models.UnknownVariant
		}

		cells := row.Find("td.text-center")
		images := make(map[string]string, len(headers))
		for i, header := range headers {
			images[header] = models.SpriteAbsent
			cell := cells.Eq(i)
			if cell.Length() == 0 {
				continue
			}
			if cell.Find("a").Length() == 0 || cell.Find("img").Length() == 0 {
				continue
			}
			if src, ok := cell.Find("img").First().Attr("src"); ok {
				images[header] = e.Norm.Clean(src)
			}
		}
		sprites[variant] = images
	})
	return sprites, nil
}
