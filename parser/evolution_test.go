package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aluiziolira/go-scrape-pokedex/models"
)

func evoCard(name, id string, types ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="infocard">`)
	fmt.Fprintf(&b, `<span class="infocard-lg-img"><a href="/pokedex/%s"><img src="https://img.example/%s.png"></a></span>`, strings.ToLower(name), strings.ToLower(name))
	b.WriteString(`<span class="infocard-lg-data text-muted">`)
	fmt.Fprintf(&b, `<small>#%s</small><br><a class="ent-name" href="/pokedex/%s">%s</a><br>`, id, strings.ToLower(name), name)
	for _, typ := range types {
		fmt.Fprintf(&b, `<small><a class="itype %s">%s</a></small>`, strings.ToLower(typ), typ)
	}
	b.WriteString(`</span></div>`)
	return b.String()
}

func evoArrow(detail string) string {
	return fmt.Sprintf(`<div class="infocard-arrow"><i class="icon-arrow"></i><small>(%s)</small></div>`, detail)
}

func evoDoc(t *testing.T, parts ...string) string {
	t.Helper()
	return `<div class="infocard-list-evo">` + strings.Join(parts, "") + `</div>`
}

func strPtr(s string) *string { return &s }

func TestEvolutionChain(t *testing.T) {
	e := NewExtractor()
	doc := mustDoc(t, evoDoc(t,
		evoCard("Bulbasaur", "0001", "Grass", "Poison"),
		evoArrow("Level 16"),
		evoCard("Ivysaur", "0002", "Grass", "Poison"),
		evoArrow("Level 32"),
		evoCard("Venusaur", "0003", "Grass", "Poison"),
	))

	// An arrow annotates the node it follows: the evolving form carries
	// the condition for its own transition, the final form carries nil.
	chain := e.EvolutionChain(doc)
	want := []models.EvolutionNode{
		{
			Name:             "Bulbasaur",
			ID:               "0001",
			Types:            []string{"Grass", "Poison"},
			Image:            "https://img.example/bulbasaur.png",
			TransitionDetail: strPtr("(Level 16)"),
		},
		{
			Name:             "Ivysaur",
			ID:               "0002",
			Types:            []string{"Grass", "Poison"},
			Image:            "https://img.example/ivysaur.png",
			TransitionDetail: strPtr("(Level 32)"),
		},
		{
			Name:  "Venusaur",
			ID:    "0003",
			Types: []string{"Grass", "Poison"},
			Image: "https://img.example/venusaur.png",
		},
	}
	if diff := cmp.Diff(want, chain); diff != "" {
		t.Fatalf("chain mismatch (-want +got):\n%s", diff)
	}
}

func TestEvolutionChainLeadingArrowDiscarded(t *testing.T) {
	e := NewExtractor()
	doc := mustDoc(t, evoDoc(t,
		evoArrow("orphan annotation"),
		evoCard("Pikachu", "0025", "Electric"),
	))

	chain := e.EvolutionChain(doc)
	if len(chain) != 1 {
		t.Fatalf("chain length = %d, want 1", len(chain))
	}
	if chain[0].TransitionDetail != nil {
		t.Fatalf("leading arrow should be discarded, got %q", *chain[0].TransitionDetail)
	}
}

func TestEvolutionChainConsecutiveArrowsOverwrite(t *testing.T) {
	e := NewExtractor()
	doc := mustDoc(t, evoDoc(t,
		evoCard("Eevee", "0133", "Normal"),
		evoArrow("use Water Stone"),
		evoArrow("use Thunder Stone"),
		evoCard("Jolteon", "0135", "Electric"),
	))

	chain := e.EvolutionChain(doc)
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	if chain[0].TransitionDetail == nil || *chain[0].TransitionDetail != "(use Thunder Stone)" {
		t.Fatalf("consecutive arrows should overwrite, got %v", chain[0].TransitionDetail)
	}
	if chain[1].TransitionDetail != nil {
		t.Fatalf("final card should have no annotation, got %q", *chain[1].TransitionDetail)
	}
}

func TestEvolutionChainCardsOnly(t *testing.T) {
	e := NewExtractor()
	doc := mustDoc(t, evoDoc(t,
		evoCard("Tauros", "0128", "Normal"),
	))

	chain := e.EvolutionChain(doc)
	if len(chain) != 1 {
		t.Fatalf("chain length = %d, want 1", len(chain))
	}
	if chain[0].TransitionDetail != nil {
		t.Fatalf("card-only chain should carry no annotations")
	}
}

func TestEvolutionChainAbsentContainer(t *testing.T) {
	e := NewExtractor()
	doc := mustDoc(t, `<div><p>no chain here</p></div>`)
	if chain := e.EvolutionChain(doc); len(chain) != 0 {
		t.Fatalf("chain = %v, want empty", chain)
	}
}

func TestClassifyChainPart(t *testing.T) {
	tests := []struct {
		class    string
		expected chainPart
	}{
		{class: "infocard", expected: partCard},
		{class: "infocard extra", expected: partCard},
		// "infocard-arrow" contains "infocard" at a word boundary;
		// token equality must still classify it as an arrow.
		{class: "infocard-arrow", expected: partArrow},
		{class: "infocard infocard-arrow", expected: partArrow},
		{class: "unrelated", expected: partOther},
		{class: "", expected: partOther},
	}

	for _, tt := range tests {
		t.Run("class="+tt.class, func(t *testing.T) {
			doc := mustDoc(t, fmt.Sprintf(`<div class="wrap"><div class="%s"></div></div>`, tt.class))
			child := doc.Find(".wrap > div")
			if got := classifyChainPart(child); got != tt.expected {
				t.Fatalf("classifyChainPart(%q) = %d, want %d", tt.class, got, tt.expected)
			}
		})
	}
}
