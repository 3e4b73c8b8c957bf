package phrases

import "strings"

// Search returns the phrases matching query, in corpus order.
//
// japanese, furigana and keywords are matched case-sensitively as raw
// substrings; translation is matched case-insensitively. An empty or
// whitespace-only query matches nothing. The result is never nil.
func Search(list []Phrase, query string) []Phrase {
	results := []Phrase{}
	if strings.TrimSpace(query) == "" {
		return results
	}

	lower := strings.ToLower(query)
	for _, p := range list {
		if matches(p, query, lower) {
			results = append(results, p)
		}
	}
	return results
}

func matches(p Phrase, query, lower string) bool {
	if strings.Contains(p.Japanese, query) || strings.Contains(p.Furigana, query) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Translation), lower) {
		return true
	}
	for _, k := range p.Keywords {
		if strings.Contains(k, query) {
			return true
		}
	}
	return false
}
