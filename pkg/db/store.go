package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetSource returns existing source id or inserts a new source and returns its id.
func CreateOrGetSource(db DBExecutor, sourceType, title, author, website, url, meta string) (int64, error) {
	trimmedSourceType := strings.TrimSpace(sourceType)
	if trimmedSourceType == "" {
		return 0, fmt.Errorf("sourceType must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(
			`SELECT id FROM sources WHERE IFNULL(url, '') = ? AND IFNULL(title, '') = ? AND IFNULL(author, '') = ?`,
			url, title, author,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}

		res, err := db.Exec(
			`INSERT INTO sources (source_type, title, author, website, url, meta, added_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			trimmedSourceType, title, author, website, url, meta, time.Now().UTC(),
		)
		if err != nil {
			// Another writer inserted the same source; retry the SELECT.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get source after %d retries", maxRetries)
}

// RecordSentence stores a harvested sentence and the phrase id it was given.
// It reports false when the sentence was already recorded.
func RecordSentence(db DBExecutor, sourceID int64, phraseID int, text string) (bool, error) {
	if sourceID <= 0 {
		return false, fmt.Errorf("sourceID must be positive")
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false, fmt.Errorf("sentence must be non-empty")
	}
	res, err := db.Exec(
		`INSERT OR IGNORE INTO harvested_sentences (source_id, phrase_id, text, harvested_at) VALUES (?, ?, ?, ?)`,
		sourceID, phraseID, trimmed, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("record sentence: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasSentence reports whether text has been harvested before.
func HasSentence(db DBExecutor, text string) (bool, error) {
	var one int
	err := db.QueryRow(`SELECT 1 FROM harvested_sentences WHERE text = ?`, strings.TrimSpace(text)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListSources returns every source with its harvested sentence count, oldest first.
func ListSources(db DBExecutor) ([]SourceSummary, error) {
	rows, err := db.Query(`SELECT s.id, s.source_type, s.title, s.author, s.website, s.url, s.meta, s.added_at, COUNT(h.id)
		FROM sources s LEFT JOIN harvested_sentences h ON h.source_id = s.id
		GROUP BY s.id ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceSummary
	for rows.Next() {
		var s SourceSummary
		var title, author, website, url, meta sql.NullString
		if err := rows.Scan(&s.ID, &s.SourceType, &title, &author, &website, &url, &meta, &s.AddedAt, &s.Sentences); err != nil {
			return nil, err
		}
		s.Title = title.String
		s.Author = author.String
		s.Website = website.String
		s.URL = url.String
		s.Meta = meta.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
