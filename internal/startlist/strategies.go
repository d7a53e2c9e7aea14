// file: internal/startlist/strategies.go
// version: 1.0.0
// guid: f5b1e8d2-6a4c-4937-8c0e-2d9a7b3f1e64

package startlist

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// UnknownTeam names a generic list whose heading could not be used.
const UnknownTeam = "Unknown Team"

var (
	categorySuffix = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	rankPrefix     = regexp.MustCompile(`^\d+\s*`)
)

// FirstCycling parses firstcycling.com pages: one table.tablesorter per
// team, the team in the first header cell and one rider link per row.
type FirstCycling struct{}

// Name implements Strategy.
func (FirstCycling) Name() string { return "firstcycling" }

// Parse implements Strategy.
func (FirstCycling) Parse(doc *goquery.Document) *Startlist {
	if doc.Find(`a[href*="firstcycling.com"]`).Length() == 0 {
		return nil
	}

	sl := New()
	doc.Find("table.tablesorter").Each(func(_ int, table *goquery.Selection) {
		th := table.Find("thead").First().Find("th").First()
		if th.Length() == 0 {
			return
		}
		teamName := text(th)
		if link := th.Find("a").First(); link.Length() > 0 {
			teamName = text(link)
		}
		if teamName == "" {
			return
		}

		var riders []string
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			link := row.Find(`a[href*="rider.php"]`).First()
			if link.Length() == 0 {
				return
			}
			name := strings.TrimSpace(link.AttrOr("title", ""))
			if name == "" {
				name = text(link)
			}
			if name != "" {
				riders = append(riders, name)
			}
		})
		if len(riders) > 0 {
			sl.Set(teamName, riders)
		}
	})
	return orNil(sl)
}

// ProCyclingStats parses procyclingstats.com startlists (ul.startlist_v4),
// where riders are printed "LASTNAME Firstname".
type ProCyclingStats struct{}

// Name implements Strategy.
func (ProCyclingStats) Name() string { return "procyclingstats" }

// Parse implements Strategy.
func (ProCyclingStats) Parse(doc *goquery.Document) *Startlist {
	if doc.Find("ul.startlist_v4").Length() == 0 {
		return nil
	}

	sl := New()
	doc.Find("ul.startlist_v4 > li").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a.team").First()
		if link.Length() == 0 {
			return
		}
		teamName := strings.TrimSpace(categorySuffix.ReplaceAllString(text(link), ""))
		if teamName == "" {
			return
		}

		var riders []string
		item.Find(`ul > li a[href*="rider/"]`).Each(func(_ int, a *goquery.Selection) {
			if raw := text(a); raw != "" {
				riders = append(riders, SurnameLast(raw))
			}
		})
		if len(riders) > 0 {
			sl.Set(teamName, riders)
		}
	})
	return orNil(sl)
}

// SurnameLast converts "LASTNAME Firstname" into "Firstname LASTNAME". The
// given names start at the first word that has letters and is not entirely
// upper-case. The input is returned unchanged when no such boundary exists
// or when the very first word already qualifies.
func SurnameLast(name string) string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}

	firstIdx := len(parts)
	for i, w := range parts {
		if hasLetter(w) && !isUpperWord(w) {
			firstIdx = i
			break
		}
	}
	if firstIdx == 0 || firstIdx >= len(parts) {
		return name
	}
	return strings.Join(parts[firstIdx:], " ") + " " + strings.Join(parts[:firstIdx], " ")
}

func hasLetter(w string) bool {
	return strings.IndexFunc(w, unicode.IsLetter) >= 0
}

// isUpperWord reports whether w has cased letters and all of them are upper-case.
func isUpperWord(w string) bool {
	cased := false
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// StartlistLists handles ul elements whose class mentions "startlist". The
// team name comes from the nearest heading-like element before the list.
type StartlistLists struct{}

// Name implements Strategy.
func (StartlistLists) Name() string { return "startlist-lists" }

// Parse implements Strategy.
func (StartlistLists) Parse(doc *goquery.Document) *Startlist {
	lists := doc.Find("ul").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(s.AttrOr("class", "")), "startlist")
	})
	if lists.Length() == 0 {
		return nil
	}

	sl := New()
	lists.Each(func(_ int, ul *goquery.Selection) {
		teamName := UnknownTeam
		if prev := previousElement(ul.Nodes[0], atom.H3, atom.H4, atom.H5, atom.Div); prev != nil {
			t := collapse(nodeText(prev))
			if n := utf8.RuneCountInString(t); n > 3 && n < 100 {
				teamName = t
			}
		}

		var riders []string
		ul.Find("li").Each(func(_ int, li *goquery.Selection) {
			name := collapse(rankPrefix.ReplaceAllString(text(li), ""))
			if utf8.RuneCountInString(name) > 2 {
				riders = append(riders, name)
			}
		})
		if len(riders) > 0 {
			sl.Set(teamName, riders)
		}
	})
	return orNil(sl)
}

// Tables walks every table row: a row with a single cell, or whose text
// mentions "team", opens a new team section; other rows add the first cell
// longer than two characters as a rider.
type Tables struct{}

// Name implements Strategy.
func (Tables) Name() string { return "tables" }

// Parse implements Strategy.
func (Tables) Parse(doc *goquery.Document) *Startlist {
	sl := New()
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var (
			current string
			riders  []string
		)
		flush := func() {
			if current != "" && len(riders) > 0 {
				sl.Set(current, riders)
			}
		}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() == 0 {
				return
			}

			if cells.Length() == 1 || strings.Contains(strings.ToLower(row.Text()), "team") {
				flush()
				current = text(cells.First())
				riders = nil
				return
			}

			// the rank is stripped before the length check, so bib-only cells are skipped
			cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
				name := rankPrefix.ReplaceAllString(text(cell), "")
				if utf8.RuneCountInString(name) > 2 {
					riders = append(riders, name)
					return false
				}
				return true
			})
		})
		flush()
	})
	return orNil(sl)
}

// TeamDivs handles div containers whose class mentions "team": the name
// from a nested heading or strong element, riders from links to rider pages.
type TeamDivs struct{}

// Name implements Strategy.
func (TeamDivs) Name() string { return "team-divs" }

// Parse implements Strategy.
func (TeamDivs) Parse(doc *goquery.Document) *Startlist {
	sl := New()
	doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(s.AttrOr("class", "")), "team")
	}).Each(func(_ int, div *goquery.Selection) {
		header := div.Find("h3, h4, h5, strong").First()
		if header.Length() == 0 {
			return
		}
		teamName := text(header)
		if teamName == "" {
			return
		}

		var riders []string
		div.Find(`a[href*="rider"]`).Each(func(_ int, a *goquery.Selection) {
			if name := text(a); name != "" {
				riders = append(riders, name)
			}
		})
		if len(riders) > 0 {
			sl.Set(teamName, riders)
		}
	})
	return orNil(sl)
}

// previousElement walks backwards in document order (previous siblings'
// deepest last descendants, then ancestors) and returns the first element
// with one of the given tags.
func previousElement(n *html.Node, tags ...atom.Atom) *html.Node {
	for p := prevInDocument(n); p != nil; p = prevInDocument(p) {
		if p.Type != html.ElementNode {
			continue
		}
		for _, tag := range tags {
			if p.DataAtom == tag {
				return p
			}
		}
	}
	return nil
}

func prevInDocument(n *html.Node) *html.Node {
	if p := n.PrevSibling; p != nil {
		for p.LastChild != nil {
			p = p.LastChild
		}
		return p
	}
	return n.Parent
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
