package phrases

// NoLevel is the bucket used by stats for phrases without a level.
const NoLevel = "N/A"

// Phrase is one learning sentence with its reading, translation and tags.
type Phrase struct {
	ID          int      `json:"id"`
	Japanese    string   `json:"japanese"`
	Furigana    string   `json:"furigana"`
	Translation string   `json:"translation"`
	Keywords    []string `json:"keywords"`
	// Level is a proficiency tier such as "N5". nil when the source omits it.
	Level *string `json:"level,omitempty"`
	// Formality describes the register ("formal", "casual", ...). nil when omitted.
	Formality *string `json:"formality,omitempty"`
}

// LevelOrDefault returns the phrase level, or NoLevel when it is absent.
func (p Phrase) LevelOrDefault() string {
	if p.Level == nil {
		return NoLevel
	}
	return *p.Level
}

// StringPtr is a small helper for filling the optional fields.
func StringPtr(s string) *string { return &s }

// Example returns the built-in corpus served when the phrase file cannot be loaded.
// Every call returns a fresh copy so callers may modify it.
func Example() []Phrase {
	return []Phrase{
		{
			ID:          1,
			Japanese:    "私は毎日日本語を勉強します。",
			Furigana:    "わたしは まいにち にほんごを べんきょうします。",
			Translation: "I study Japanese every day.",
			Keywords:    []string{"勉強", "毎日", "日本語"},
			Level:       StringPtr("N5"),
			Formality:   StringPtr("formal"),
		},
	}
}
