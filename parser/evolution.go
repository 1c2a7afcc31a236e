package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-pokedex/models"
)

// chainPart classifies one child of the evolution-chain container
// before the fold consumes it.
type chainPart int

const (
	partOther chainPart = iota
	partCard
	partArrow
)

// classifyChainPart inspects the child's class tokens. Arrows are
// checked first: "infocard-arrow" also contains "infocard" as a word,
// so token equality is required, not substring or word-boundary match.
func classifyChainPart(s *goquery.Selection) chainPart {
	for _, token := range strings.Fields(s.AttrOr("class", "")) {
		if token == "infocard-arrow" {
			return partArrow
		}
	}
	for _, token := range strings.Fields(s.AttrOr("class", "")) {
		if token == "infocard" {
			return partCard
		}
	}
	return partOther
}

// EvolutionChain folds the alternating entity-card / transition-arrow
// children of the chain container into an ordered node sequence. An
// arrow annotates the pending node; an arrow with no pending node is
// discarded; consecutive arrows overwrite, the last one before the next
// card wins.
func (e *Extractor) EvolutionChain(doc *goquery.Document) []models.EvolutionNode {
	var chain []models.EvolutionNode
	var pending *models.EvolutionNode

	doc.Find(".infocard-list-evo > div").Each(func(_ int, child *goquery.Selection) {
		switch classifyChainPart(child) {
		case partCard:
			if pending != nil {
				chain = append(chain, *pending)
			}
			pending = e.evolutionCard(child)
		case partArrow:
			if pending != nil {
				detail := e.Norm.Clean(child.Text())
				pending.TransitionDetail = &detail
			}
		}
	})

	if pending != nil {
		chain = append(chain, *pending)
	}
	return chain
}

// evolutionCard extracts one entity card: display name, catalog number
// with the leading '#' stripped, type labels in order, and image URL.
func (e *Extractor) evolutionCard(card *goquery.Selection) *models.EvolutionNode {
	node := &models.EvolutionNode{
		Name: e.Norm.Clean(card.Find(".ent-name").First().Text()),
		ID:   strings.TrimPrefix(e.Norm.Clean(card.Find(".infocard-lg-data small").First().Text()), "#"),
	}
	card.Find(".itype").Each(func(_ int, t *goquery.Selection) {
		node.Types = append(node.Types, e.Norm.Clean(t.Text()))
	})
	node.Image, _ = card.Find("img").First().Attr("src")
	return node
}
