package harvest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/japaniel/tatoebando/pkg/db"
	"github.com/japaniel/tatoebando/pkg/phrases"
)

// History remembers which sentences have been harvested, across runs.
type History interface {
	// Begin registers the article the following calls belong to.
	Begin(article *Article) error
	Seen(sentence string) (bool, error)
	Record(p phrases.Phrase) error
	// Commit makes recorded phrases durable.
	Commit() error
}

// SQLHistory is a History stored in the SQLite harvest database.
// Records are written in batched transactions.
type SQLHistory struct {
	conn     *sql.DB
	batch    *db.Batch
	sourceID int64
}

// NewSQLHistory wraps an initialized history database.
func NewSQLHistory(conn *sql.DB) *SQLHistory {
	return &SQLHistory{conn: conn, batch: db.NewBatch(conn, 50)}
}

func (h *SQLHistory) Begin(article *Article) error {
	id, err := db.CreateOrGetSource(h.conn, "website_article", article.Title, article.Byline, article.SiteName, article.URL, "")
	if err != nil {
		return fmt.Errorf("persist source: %w", err)
	}
	h.sourceID = id
	return nil
}

func (h *SQLHistory) Seen(sentence string) (bool, error) {
	return db.HasSentence(h.conn, sentence)
}

func (h *SQLHistory) Record(p phrases.Phrase) error {
	if h.sourceID == 0 {
		return fmt.Errorf("history: Record called before Begin")
	}
	sourceID := h.sourceID
	return h.batch.Add(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		_, err := db.RecordSentence(tx, sourceID, p.ID, p.Japanese)
		return err
	})
}

func (h *SQLHistory) Commit() error {
	return h.batch.Flush(context.Background())
}
