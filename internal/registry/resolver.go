package registry

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"AnimalitoSentinel/internal/model"
)

// minNameLength rejects normalized inputs too short to match a name safely.
const minNameLength = 2

var numberPattern = regexp.MustCompile(`\b(\d{1,2})\b`)

// Resolve normalizes free-form source text ("Culebra (36)", "36-Culebra",
// "leon") into a registry entry. A numeric match always wins over a textual
// one; numbers are less ambiguous than partial names. Returns false when
// nothing matches — callers drop the entry, they never fail the batch.
func (r *Registry) Resolve(input string) (*model.Animal, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(input))
	if cleaned == "" {
		return nil, false
	}

	if m := numberPattern.FindStringSubmatch(cleaned); m != nil {
		code := m[1]
		if len(code) == 1 {
			code = "0" + code
		}
		if a, ok := r.byCode[code]; ok {
			return a, true
		}
	}

	normalized := normalizeName(cleaned)
	if len(normalized) < minNameLength {
		return nil, false
	}
	for i, name := range r.normalizedNames {
		if name == normalized || strings.Contains(name, normalized) || strings.Contains(normalized, name) {
			return r.entries[i], true
		}
	}
	return nil, false
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName lower-cases, strips diacritics and keeps letters only.
func normalizeName(s string) string {
	lowered := strings.ToLower(s)
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		stripped = lowered
	}
	var b strings.Builder
	for _, c := range stripped {
		if c >= 'a' && c <= 'z' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
