package harvest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/japaniel/tatoebando/pkg/phrases"
	"github.com/japaniel/tatoebando/pkg/reading"
)

func newTestHarvester(t *testing.T) *Harvester {
	t.Helper()
	analyzer, err := reading.NewAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	return New(analyzer, nil)
}

func serveFixture(t *testing.T) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile("testdata/article.html")
	if err != nil {
		t.Fatalf("Failed to open test data: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/article" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func findJapanese(list []phrases.Phrase, text string) (phrases.Phrase, bool) {
	for _, p := range list {
		if p.Japanese == text {
			return p, true
		}
	}
	return phrases.Phrase{}, false
}

func TestDraftFiltersAndOrders(t *testing.T) {
	h := newTestHarvester(t)
	drafts, err := h.Draft(context.Background(), "猫です。犬が走る。abc。猫です。\n短\nとても長い文" + strings.Repeat("あ", 200) + "。")
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	var got []string
	for _, d := range drafts {
		got = append(got, d.Japanese)
	}
	want := []string{"猫です。", "犬が走る。"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}

	if drafts[0].Formality == nil || *drafts[0].Formality != "formal" {
		t.Errorf("expected formal draft, got %v", drafts[0].Formality)
	}
	if drafts[1].Formality == nil || *drafts[1].Formality != "casual" {
		t.Errorf("expected casual draft, got %v", drafts[1].Formality)
	}
	if !slices.Contains(drafts[1].Keywords, "犬") {
		t.Errorf("expected 犬 in keywords, got %v", drafts[1].Keywords)
	}
	if drafts[0].Level != nil || drafts[0].Translation != "" || drafts[0].ID != 0 {
		t.Errorf("draft should have no level, translation or id: %+v", drafts[0])
	}
}

func TestDraftEmpty(t *testing.T) {
	h := newTestHarvester(t)
	drafts, err := h.Draft(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	if drafts == nil || len(drafts) != 0 {
		t.Fatalf("expected empty non-nil drafts, got %v", drafts)
	}
}

func TestDraftCanceled(t *testing.T) {
	h := newTestHarvester(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Draft(ctx, "猫です。犬が走る。"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestFetchFixture(t *testing.T) {
	srv := serveFixture(t)
	h := newTestHarvester(t)

	article, err := h.Fetch(context.Background(), srv.URL+"/article")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(article.Title, "猫と暮らす毎日") {
		t.Errorf("Expected title to contain %q, extracted: %q", "猫と暮らす毎日", article.Title)
	}
	if strings.Contains(article.Text, "一緒いっしょ") {
		t.Errorf("ruby readings leaked into text: %q", article.Text)
	}

	drafts, err := h.Draft(context.Background(), article.Text)
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	p, ok := findJapanese(drafts, "タマはとても元気な猫です。")
	if !ok {
		t.Fatalf("expected sentence in drafts, got %d drafts", len(drafts))
	}
	if !slices.Contains(p.Keywords, "猫") {
		t.Errorf("expected 猫 in keywords, got %v", p.Keywords)
	}
	if p.Furigana == "" {
		t.Error("expected furigana")
	}
	if _, ok := findJapanese(drafts, "一緒に晩ご飯を食べて、テレビを見ます。"); !ok {
		t.Error("expected ruby sentence without readings in drafts")
	}
}

func TestFetchErrors(t *testing.T) {
	srv := serveFixture(t)
	h := newTestHarvester(t)

	if _, err := h.Fetch(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("expected error for 404")
	}
	if _, err := h.Fetch(context.Background(), "://bad"); err == nil {
		t.Error("expected error for invalid url")
	}
}

type memoryHistory struct {
	begun    int
	recorded map[string]int
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{recorded: map[string]int{}}
}

func (m *memoryHistory) Begin(*Article) error { m.begun++; return nil }

func (m *memoryHistory) Seen(s string) (bool, error) {
	_, ok := m.recorded[s]
	return ok, nil
}

func (m *memoryHistory) Record(p phrases.Phrase) error {
	m.recorded[p.Japanese] = p.ID
	return nil
}

func (m *memoryHistory) Commit() error { return nil }

func TestIntoWithHistory(t *testing.T) {
	srv := serveFixture(t)
	h := newTestHarvester(t)
	path := filepath.Join(t.TempDir(), "phrases.json")
	hist := newMemoryHistory()

	report, err := h.Into(context.Background(), srv.URL+"/article", path, hist)
	if err != nil {
		t.Fatalf("Into failed: %v", err)
	}
	if len(report.Merge.Added) == 0 || report.Merge.Total != len(report.Merge.Added) {
		t.Fatalf("unexpected report: %+v", report.Merge)
	}
	if len(hist.recorded) != len(report.Merge.Added) || hist.begun != 1 {
		t.Fatalf("history recorded %d of %d", len(hist.recorded), len(report.Merge.Added))
	}

	saved, err := phrases.Read(path)
	if err != nil {
		t.Fatalf("read merged file: %v", err)
	}
	for i, p := range saved {
		if p.ID != i+1 {
			t.Fatalf("expected sequential ids, got %d at %d", p.ID, i)
		}
	}

	// Deleting the file does not bring harvested sentences back.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	report, err = h.Into(context.Background(), srv.URL+"/article", path, hist)
	if err != nil {
		t.Fatalf("second Into failed: %v", err)
	}
	if len(report.Merge.Added) != 0 || report.Merge.Skipped != report.Drafted {
		t.Fatalf("expected every draft skipped by history, got %+v", report.Merge)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("nothing added, file should not be recreated: %v", err)
	}
}
