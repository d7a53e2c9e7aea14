// file: internal/startlist/parser.go
// version: 1.0.0
// guid: 3d7a9c15-b2e4-4f68-8a01-5c9e6b4d2f73

package startlist

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy extracts a startlist from one kind of page layout. Parse returns
// nil (or an empty startlist) when the layout is not recognised.
type Strategy interface {
	Name() string
	Parse(doc *goquery.Document) *Startlist
}

// Parser tries its strategies in order; the first non-empty result wins.
type Parser struct {
	strategies []Strategy
}

// DefaultStrategies returns the site-specific strategies followed by the
// generic fallbacks.
func DefaultStrategies() []Strategy {
	return []Strategy{
		FirstCycling{},
		ProCyclingStats{},
		StartlistLists{},
		Tables{},
		TeamDivs{},
	}
}

// NewParser creates a parser. Without arguments it uses DefaultStrategies.
func NewParser(strategies ...Strategy) *Parser {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Parser{strategies: strategies}
}

// Parse parses an HTML document held in memory. It returns nil when no
// strategy recognises the page.
func (p *Parser) Parse(html string) *Startlist {
	sl, _ := p.ParseReader(strings.NewReader(html))
	return sl
}

// ParseReader parses an HTML document from r. Only read failures are
// errors; an unrecognised page yields a nil startlist.
func (p *Parser) ParseReader(r io.Reader) (*Startlist, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML: %w", err)
	}
	return p.ParseDocument(doc), nil
}

// ParseFile parses a saved startlist page.
func (p *Parser) ParseFile(path string) (*Startlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open startlist page: %w", err)
	}
	defer f.Close()
	return p.ParseReader(f)
}

// ParseDocument runs the strategy chain over an already parsed document.
func (p *Parser) ParseDocument(doc *goquery.Document) *Startlist {
	for _, s := range p.strategies {
		sl := s.Parse(doc)
		if !sl.Empty() {
			sl.Source = s.Name()
			return sl
		}
	}
	return nil
}

// orNil turns an empty startlist into nil.
func orNil(sl *Startlist) *Startlist {
	if sl.Empty() {
		return nil
	}
	return sl
}

// text returns the element text with whitespace runs collapsed.
func text(sel *goquery.Selection) string {
	return collapse(sel.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
