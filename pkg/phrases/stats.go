package phrases

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Stats summarizes a corpus.
type Stats struct {
	Total   int         `json:"total"`
	ByLevel LevelCounts `json:"by_level"`
}

// LevelCount is the number of phrases sharing one level.
type LevelCount struct {
	Level string
	Count int
}

// LevelCounts keeps levels in order of first occurrence.
type LevelCounts []LevelCount

// ComputeStats counts phrases in total and per level.
func ComputeStats(list []Phrase) Stats {
	var counts LevelCounts
	index := make(map[string]int)
	for _, p := range list {
		level := p.LevelOrDefault()
		i, ok := index[level]
		if !ok {
			i = len(counts)
			index[level] = i
			counts = append(counts, LevelCount{Level: level})
		}
		counts[i].Count++
	}
	return Stats{Total: len(list), ByLevel: counts}
}

// Count returns the count for level, or 0 when it does not occur.
func (lc LevelCounts) Count(level string) int {
	for _, c := range lc {
		if c.Level == level {
			return c.Count
		}
	}
	return 0
}

// Map returns the counts keyed by level.
func (lc LevelCounts) Map() map[string]int {
	m := make(map[string]int, len(lc))
	for _, c := range lc {
		m[c.Level] = c.Count
	}
	return m
}

// MarshalJSON encodes the counts as an object, keeping first-occurrence order.
func (lc LevelCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range lc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Level)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
