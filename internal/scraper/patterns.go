package scraper

import "regexp"

// patternSet groups the expressions tuned to one site's markup shape.
// Sets are tried in order; within a set every expression contributes.
type patternSet struct {
	name     string
	patterns []*regexp.Regexp
}

var patternSets = []patternSet{
	{
		name: "loteriadehoy",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)<td[^>]*class="[^"]*hora[^"]*"[^>]*>(\d{2}:\d{2})</td>\s*<td[^>]*class="[^"]*animal[^"]*"[^>]*>([^<]+)</td>`),
			regexp.MustCompile(`(?is)<div[^>]*class="[^"]*resultado[^"]*"[^>]*>.*?(\d{2}:\d{2}).*?>([A-Za-zÁÉÍÓÚáéíóúñÑ]+|\d{1,2})<.*?</div>`),
		},
	},
	{
		name: "triplecaliente",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)<span[^>]*class="[^"]*time[^"]*"[^>]*>(\d{2}:\d{2})</span>.*?<span[^>]*class="[^"]*animal[^"]*"[^>]*>([^<]+)</span>`),
		},
	},
	{
		name: "animalitosvenezuela",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)<tr[^>]*>.*?<td[^>]*>(\d{2}:\d{2})</td>.*?<td[^>]*>([^<]+)</td>.*?</tr>`),
		},
	},
	{
		name: "generic",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)<td[^>]*>(\d{2}:\d{2})</td>\s*<td[^>]*>([^<]+)</td>`),
			regexp.MustCompile(`(?i)<div[^>]*class="[^"]*hour[^"]*"[^>]*>(\d{2}:\d{2})</div>\s*<div[^>]*class="[^"]*animal[^"]*"[^>]*>([^<]+)</div>`),
			regexp.MustCompile(`(?i)\{[^}]*"hora"[^}]*"(\d{2}:\d{2})"[^}]*"animal"[^}]*"([^"]+)"[^}]*\}`),
		},
	},
}
