package harvest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/japaniel/tatoebando/pkg/phrases"
)

// MergeResult describes what Merge changed.
type MergeResult struct {
	// Added holds the drafts written, with their assigned ids.
	Added   []phrases.Phrase
	Skipped int
	Total   int
}

// Merge appends drafts to the phrase file at path. A missing file starts an
// empty corpus; an unreadable one is an error and is left untouched. Drafts
// whose japanese text is already present, or for which seen reports true, are
// skipped. New ids continue from the highest existing id.
func Merge(path string, drafts []phrases.Phrase, seen func(string) (bool, error)) (MergeResult, error) {
	existing, err := phrases.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		existing = []phrases.Phrase{}
	} else if err != nil {
		return MergeResult{}, fmt.Errorf("refusing to overwrite %s: %w", path, err)
	}

	known := make(map[string]bool, len(existing))
	nextID := 1
	for _, p := range existing {
		known[p.Japanese] = true
		if p.ID >= nextID {
			nextID = p.ID + 1
		}
	}

	var res MergeResult
	for _, d := range drafts {
		if known[d.Japanese] {
			res.Skipped++
			continue
		}
		if seen != nil {
			ok, err := seen(d.Japanese)
			if err != nil {
				return MergeResult{}, fmt.Errorf("check history: %w", err)
			}
			if ok {
				res.Skipped++
				continue
			}
		}
		known[d.Japanese] = true
		d.ID = nextID
		nextID++
		if d.Keywords == nil {
			d.Keywords = []string{}
		}
		existing = append(existing, d)
		res.Added = append(res.Added, d)
	}
	res.Total = len(existing)

	if len(res.Added) == 0 {
		return res, nil
	}
	if err := WriteFile(path, existing); err != nil {
		return MergeResult{}, err
	}
	return res, nil
}

// Encode renders phrases as indented JSON without HTML escaping.
func Encode(list []phrases.Phrase) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile replaces the phrase file at path. The content is written to a
// temporary file in the same directory and renamed over the target, so the
// server never reads a half-written file.
func WriteFile(path string, list []phrases.Phrase) error {
	data, err := Encode(list)
	if err != nil {
		return fmt.Errorf("encode phrases: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".phrases-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
