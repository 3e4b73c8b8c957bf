package db

import "time"

// Source is a provenance record for a harvested article.
type Source struct {
	ID         int64
	SourceType string
	Title      string
	Author     string
	Website    string
	URL        string
	Meta       string
	AddedAt    time.Time
}

// SourceSummary is a Source with the number of sentences harvested from it.
type SourceSummary struct {
	Source
	Sentences int
}
