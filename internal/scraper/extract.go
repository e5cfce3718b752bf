package scraper

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RawDraw is an unresolved (slot time, animal text) pair recovered from markup.
type RawDraw struct {
	Slot string // "HH:MM"
	Raw  string // free-form animal text, trimmed
}

var slotPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Extract recovers (slot, animal) pairs from raw markup. Strategies are
// applied in order — a DOM table walk first, then the per-site regex sets —
// and the first one yielding at least one structurally valid pair wins.
// Duplicated slots keep their first occurrence; output is sorted ascending
// by slot. Unrecognized markup yields an empty slice, never an error: the
// caller treats that as a per-source failure and moves on.
func Extract(markup string) []RawDraw {
	if strings.TrimSpace(markup) == "" {
		return nil
	}

	draws := extractFromTables(markup)
	if len(draws) == 0 {
		for _, set := range patternSets {
			draws = applyPatternSet(set, markup)
			if len(draws) > 0 {
				break
			}
		}
	}
	if len(draws) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(draws))
	unique := draws[:0]
	for _, d := range draws {
		if seen[d.Slot] {
			continue
		}
		seen[d.Slot] = true
		unique = append(unique, d)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Slot < unique[j].Slot })
	return unique
}

// extractFromTables walks parsed table rows: a cell holding an HH:MM time
// followed by a non-empty cell is taken as a result pair.
func extractFromTables(markup string) []RawDraw {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}
	var draws []RawDraw
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		n := cells.Length()
		for i := 0; i < n-1; i++ {
			slot := strings.TrimSpace(cells.Eq(i).Text())
			if !slotPattern.MatchString(slot) {
				continue
			}
			raw := strings.TrimSpace(cells.Eq(i + 1).Text())
			if raw == "" {
				continue
			}
			draws = append(draws, RawDraw{Slot: slot, Raw: raw})
			break
		}
	})
	return draws
}

func applyPatternSet(set patternSet, markup string) []RawDraw {
	var draws []RawDraw
	for _, p := range set.patterns {
		for _, m := range p.FindAllStringSubmatch(markup, -1) {
			if len(m) < 3 {
				continue
			}
			slot := strings.TrimSpace(m[1])
			raw := strings.TrimSpace(m[2])
			if !slotPattern.MatchString(slot) || raw == "" {
				continue
			}
			draws = append(draws, RawDraw{Slot: slot, Raw: raw})
		}
	}
	return draws
}
