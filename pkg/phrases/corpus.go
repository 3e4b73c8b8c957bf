package phrases

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Snapshot is an immutable view of the corpus at one point in time.
type Snapshot struct {
	Phrases  []Phrase
	Fallback bool
	// Err explains why the fallback corpus is in use; nil otherwise.
	Err      error
	LoadedAt time.Time
}

// Corpus owns the phrase list served by the application. Readers take the
// current snapshot without locking; Reload swaps it in a single atomic store,
// so a reader sees either the old or the new list, never a mix.
type Corpus struct {
	path   string
	logger *zap.Logger

	reloadMu sync.Mutex
	current  atomic.Pointer[Snapshot]
}

// NewCorpus loads the phrase file at path and returns a corpus backed by it.
// A nil logger disables logging.
func NewCorpus(path string, logger *zap.Logger) *Corpus {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Corpus{path: path, logger: logger}
	c.Reload()
	return c
}

// NewCorpusFrom wraps an in-memory list. It has no backing file, so Reload
// replaces it with the example corpus.
func NewCorpusFrom(list []Phrase) *Corpus {
	c := &Corpus{logger: zap.NewNop()}
	c.current.Store(&Snapshot{Phrases: list, LoadedAt: time.Now()})
	return c
}

// Path returns the backing file path.
func (c *Corpus) Path() string { return c.path }

// Snapshot returns the current snapshot.
func (c *Corpus) Snapshot() *Snapshot { return c.current.Load() }

// Phrases returns every phrase in corpus order. The slice must not be modified.
func (c *Corpus) Phrases() []Phrase { return c.Snapshot().Phrases }

// Len returns the number of phrases currently served.
func (c *Corpus) Len() int { return len(c.Snapshot().Phrases) }

// Search runs Search against the current snapshot.
func (c *Corpus) Search(query string) []Phrase { return Search(c.Phrases(), query) }

// Stats runs ComputeStats against the current snapshot.
func (c *Corpus) Stats() Stats { return ComputeStats(c.Phrases()) }

// Reload re-reads the backing file and replaces the corpus, falling back to
// the example corpus when the file is missing or unreadable.
func (c *Corpus) Reload() *Snapshot {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	out := Load(c.path)
	switch {
	case out.Missing():
		c.logger.Warn("phrase file not found, serving example phrases",
			zap.String("path", c.path))
	case out.Fallback:
		c.logger.Error("failed to load phrase file, serving example phrases",
			zap.String("path", c.path), zap.Error(out.Err))
	default:
		c.logger.Info("loaded phrases",
			zap.String("path", c.path), zap.Int("count", len(out.Phrases)))
	}

	snap := &Snapshot{
		Phrases:  out.Phrases,
		Fallback: out.Fallback,
		Err:      out.Err,
		LoadedAt: time.Now(),
	}
	c.current.Store(snap)
	return snap
}
