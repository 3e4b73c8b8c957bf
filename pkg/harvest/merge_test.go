package harvest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/japaniel/tatoebando/pkg/phrases"
)

func TestMergeAssignsIDsAndSkipsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.json")
	existing := []phrases.Phrase{
		{ID: 3, Japanese: "猫です。", Furigana: "ねこです。", Translation: "It is a cat.", Keywords: []string{"猫"}, Level: phrases.StringPtr("N5")},
		{ID: 7, Japanese: "犬です。", Furigana: "いぬです。", Translation: "It is a dog.", Keywords: []string{"犬"}},
	}
	if err := WriteFile(path, existing); err != nil {
		t.Fatalf("write: %v", err)
	}

	drafts := []phrases.Phrase{
		{Japanese: "猫です。"},
		{Japanese: "鳥です。"},
		{Japanese: "魚です。", Keywords: []string{"魚"}},
		{Japanese: "鳥です。"},
	}
	res, err := Merge(path, drafts, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(res.Added) != 2 || res.Skipped != 2 || res.Total != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Added[0].ID != 8 || res.Added[1].ID != 9 {
		t.Fatalf("expected ids 8 and 9, got %d and %d", res.Added[0].ID, res.Added[1].ID)
	}

	saved, err := phrases.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(saved) != 4 || saved[0].Level == nil || *saved[0].Level != "N5" || saved[1].Level != nil {
		t.Fatalf("existing records not preserved: %+v", saved)
	}
	if saved[2].Keywords == nil {
		t.Fatal("keywords should be written as an empty array")
	}
}

func TestMergeMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.json")
	res, err := Merge(path, []phrases.Phrase{{Japanese: "猫です。"}}, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(res.Added) != 1 || res.Added[0].ID != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "猫です。") {
		t.Fatalf("expected unescaped japanese in file, got %s", data)
	}
	if !strings.Contains(string(data), "\n  {") {
		t.Fatalf("expected indented output, got %s", data)
	}
}

func TestMergeRefusesMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.json")
	const broken = `[{"id": 1,`
	if err := os.WriteFile(path, []byte(broken), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Merge(path, []phrases.Phrase{{Japanese: "猫です。"}}, nil); err == nil {
		t.Fatal("expected error for malformed file")
	}
	data, _ := os.ReadFile(path)
	if string(data) != broken {
		t.Fatalf("malformed file was modified: %s", data)
	}
}

func TestMergeSeenCallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.json")
	seen := func(s string) (bool, error) { return s == "猫です。", nil }
	res, err := Merge(path, []phrases.Phrase{{Japanese: "猫です。"}, {Japanese: "犬です。"}}, seen)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(res.Added) != 1 || res.Added[0].Japanese != "犬です。" || res.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	boom := errors.New("boom")
	failing := func(string) (bool, error) { return false, boom }
	if _, err := Merge(path, []phrases.Phrase{{Japanese: "鳥です。"}}, failing); !errors.Is(err, boom) {
		t.Fatalf("expected history error, got %v", err)
	}
}
