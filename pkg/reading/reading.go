package reading

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Token represents a single analyzed unit of text.
type Token struct {
	Surface  string   // The text as it appears (e.g. "行っ")
	BaseForm string   // The dictionary form (e.g. "行く")
	Reading  string   // Katakana reading (e.g. "イッ"); empty for unknown words
	Features []string // IPA POS labels, e.g. ["動詞", "自立", "*", "*", ...]
}

// POS returns the primary part of speech.
func (t Token) POS() string { return t.feature(0) }

// SubPOS returns the first sub-category of the part of speech.
func (t Token) SubPOS() string { return t.feature(1) }

func (t Token) feature(i int) string {
	if len(t.Features) > i {
		return t.Features[i]
	}
	return ""
}

// Analyzer tokenizes Japanese text with the IPA dictionary.
// It is safe for concurrent use.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer creates a new tokenizer instance.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Analyze breaks text into tokens with readings and base forms.
// Whitespace-only tokens are dropped.
func (a *Analyzer) Analyze(text string) []Token {
	var result []Token
	for _, tok := range a.t.Tokenize(text) {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}

		// IPA features: 0-3 POS, 4-5 conjugation, 6 base form, 7 reading, 8 pronunciation.
		features := tok.Features()
		base := tok.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = features[7]
		}

		result = append(result, Token{
			Surface:  tok.Surface,
			BaseForm: base,
			Reading:  reading,
			Features: features,
		})
	}
	return result
}

// Furigana returns the hiragana reading of text, with a space before each
// group that starts on a content word. Particles, auxiliaries, suffixes,
// dependent words and punctuation stay attached to the group before them.
// Words without a dictionary reading are kept as written.
func (a *Analyzer) Furigana(text string) string {
	var b strings.Builder
	var prev Token
	for i, tok := range a.Analyze(text) {
		if i > 0 && !attaches(prev, tok) {
			b.WriteByte(' ')
		}
		if tok.Reading != "" {
			b.WriteString(ToHiragana(tok.Reading))
		} else {
			b.WriteString(tok.Surface)
		}
		prev = tok
	}
	return b.String()
}

func attaches(prev, tok Token) bool {
	switch tok.POS() {
	case "助詞", "助動詞", "記号":
		return true
	}
	switch tok.SubPOS() {
	case "非自立", "接尾":
		return true
	}
	// 勉強 + する
	if tok.BaseForm == "する" && prev.POS() == "名詞" && prev.SubPOS() == "サ変接続" {
		return true
	}
	return false
}

// Keywords returns the distinct base forms of the content words in text,
// in order of first appearance.
func (a *Analyzer) Keywords(text string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, tok := range a.Analyze(text) {
		if !isContentWord(tok) || seen[tok.BaseForm] {
			continue
		}
		seen[tok.BaseForm] = true
		out = append(out, tok.BaseForm)
	}
	return out
}

func isContentWord(tok Token) bool {
	switch tok.POS() {
	case "名詞":
		switch tok.SubPOS() {
		case "代名詞", "数", "非自立", "接尾":
			return false
		}
		return ContainsJapanese(tok.Surface)
	case "動詞", "形容詞":
		return tok.SubPOS() == "自立"
	}
	return false
}

// Formality labels a sentence "formal" when it uses the polite です/ます
// auxiliaries and "casual" otherwise.
func (a *Analyzer) Formality(text string) string {
	for _, tok := range a.Analyze(text) {
		if tok.POS() == "助動詞" && (tok.BaseForm == "です" || tok.BaseForm == "ます") {
			return "formal"
		}
	}
	return "casual"
}

// SplitSentences splits text on Japanese sentence delimiters (。！？) and newlines.
// Delimiters stay with their sentence; surrounding whitespace is trimmed and
// empty pieces are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	for _, r := range text {
		if r == '\n' {
			flush()
			continue
		}
		current.WriteRune(r)
		if r == '。' || r == '！' || r == '？' {
			flush()
		}
	}
	flush()
	return sentences
}

// ContainsJapanese reports whether s holds at least one kana or kanji rune.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses (<rp>...</rp>)
// from HTML so that extracted text does not repeat the reading after each
// kanji (e.g. "漢字かんじ").
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, nil)
	return reRP.ReplaceAll(cleaned, nil)
}
