// Package harvest drafts phrase records from Japanese web articles.
package harvest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/japaniel/tatoebando/pkg/phrases"
	"github.com/japaniel/tatoebando/pkg/reading"
)

// maxBodySize caps fetched HTML to avoid OOM on untrusted URLs.
const maxBodySize = 10 * 1024 * 1024

// Article is the readable content of a fetched page.
type Article struct {
	URL      string
	Title    string
	Byline   string
	SiteName string
	Text     string
}

// Harvester fetches articles and turns their sentences into draft phrases.
type Harvester struct {
	Client   *http.Client
	Analyzer *reading.Analyzer
	Logger   *zap.Logger

	// Workers is the number of goroutines analyzing sentences.
	Workers int
	// Sentences outside [MinRunes, MaxRunes] are skipped.
	MinRunes int
	MaxRunes int
}

// New creates a Harvester with default settings.
func New(analyzer *reading.Analyzer, logger *zap.Logger) *Harvester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harvester{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Analyzer: analyzer,
		Logger:   logger,
		Workers:  4,
		MinRunes: 4,
		MaxRunes: 120,
	}
}

// Fetch downloads rawURL and extracts its readable text.
func (h *Harvester) Fetch(ctx context.Context, rawURL string) (*Article, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Some news sites reject requests without browser headers.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > maxBodySize {
		return nil, fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, maxBodySize)
	}

	// Read one byte past the limit to tell a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response body exceeded maximum size limit of %d bytes", maxBodySize)
	}

	return ExtractArticle(body, pageURL)
}

// ExtractArticle runs readability over an HTML document. Ruby readings are
// removed first so furigana is not duplicated into the text.
func ExtractArticle(html []byte, pageURL *url.URL) (*Article, error) {
	article, err := readability.FromReader(bytes.NewReader(reading.SanitizeRuby(html)), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}
	return &Article{
		URL:      pageURL.String(),
		Title:    article.Title,
		Byline:   article.Byline,
		SiteName: article.SiteName,
		Text:     article.TextContent,
	}, nil
}

// Draft splits text into sentences and builds one draft phrase per usable
// sentence, in document order. Drafts have no id, translation or level.
func (h *Harvester) Draft(ctx context.Context, text string) ([]phrases.Phrase, error) {
	var candidates []string
	seen := make(map[string]bool)
	for _, s := range reading.SplitSentences(text) {
		if seen[s] || !h.usable(s) {
			continue
		}
		seen[s] = true
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return []phrases.Phrase{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := NewWorkerPool(h.Workers, h.Workers*2)
	pool.Start(ctx)

	// Each job writes only its own slot, so no further locking is needed.
	drafts := make([]phrases.Phrase, len(candidates))
	for i, s := range candidates {
		err := pool.SubmitCtx(ctx, func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			drafts[i] = h.draftOne(s)
			return nil
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("submit sentence: %w", err)
		}
	}
	pool.Close()

	if err := pool.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return drafts, nil
}

func (h *Harvester) usable(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < h.MinRunes || (h.MaxRunes > 0 && n > h.MaxRunes) {
		return false
	}
	return reading.ContainsJapanese(s)
}

func (h *Harvester) draftOne(sentence string) phrases.Phrase {
	return phrases.Phrase{
		Japanese:  sentence,
		Furigana:  h.Analyzer.Furigana(sentence),
		Keywords:  h.Analyzer.Keywords(sentence),
		Formality: phrases.StringPtr(h.Analyzer.Formality(sentence)),
	}
}

// Report describes one harvest run.
type Report struct {
	Article *Article
	Drafted int
	Merge   MergeResult
}

// Into harvests rawURL and merges the drafts into the phrase file at path.
// Sentences already known to hist are skipped; added ones are recorded in it.
// A nil hist disables history.
func (h *Harvester) Into(ctx context.Context, rawURL, path string, hist History) (*Report, error) {
	article, err := h.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	h.Logger.Info("extracted article",
		zap.String("title", article.Title),
		zap.Int("chars", utf8.RuneCountInString(article.Text)))

	drafts, err := h.Draft(ctx, article.Text)
	if err != nil {
		return nil, err
	}

	var seen func(string) (bool, error)
	if hist != nil {
		if err := hist.Begin(article); err != nil {
			return nil, err
		}
		seen = hist.Seen
	}

	res, err := Merge(path, drafts, seen)
	if err != nil {
		return nil, err
	}

	if hist != nil {
		for _, p := range res.Added {
			if err := hist.Record(p); err != nil {
				return nil, err
			}
		}
		if err := hist.Commit(); err != nil {
			return nil, fmt.Errorf("commit history: %w", err)
		}
	}

	h.Logger.Info("merged drafts",
		zap.String("path", path),
		zap.Int("drafted", len(drafts)),
		zap.Int("added", len(res.Added)),
		zap.Int("skipped", res.Skipped),
		zap.Int("total", res.Total))

	return &Report{Article: article, Drafted: len(drafts), Merge: res}, nil
}
