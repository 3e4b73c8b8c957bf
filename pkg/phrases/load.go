package phrases

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNotArray is returned when the phrase file holds valid JSON that is not an array.
var ErrNotArray = errors.New("phrase file does not contain a JSON array")

// Read decodes the phrase file at path. A missing file yields an error
// wrapping fs.ErrNotExist.
func Read(path string) ([]Phrase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phrase file: %w", err)
	}
	return Decode(data)
}

// Decode parses a JSON array of phrases. Trailing data after the array is rejected.
func Decode(data []byte) ([]Phrase, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if json.Valid(trimmed) {
			return nil, ErrNotArray
		}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var out []Phrase
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode phrases: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode phrases: unexpected data after array")
	}

	for i := range out {
		if out[i].Keywords == nil {
			out[i].Keywords = []string{}
		}
	}
	if out == nil {
		out = []Phrase{}
	}
	return out, nil
}

// Outcome is the result of Load. When Fallback is set, Err holds the reason the
// file could not be used and Phrases is the example corpus.
type Outcome struct {
	Phrases  []Phrase
	Fallback bool
	Err      error
}

// Missing reports whether the fallback was caused by an absent file.
func (o Outcome) Missing() bool {
	return o.Fallback && errors.Is(o.Err, os.ErrNotExist)
}

// Load reads path and substitutes the example corpus when it cannot be read.
func Load(path string) Outcome {
	list, err := Read(path)
	if err != nil {
		return Outcome{Phrases: Example(), Fallback: true, Err: err}
	}
	return Outcome{Phrases: list}
}
