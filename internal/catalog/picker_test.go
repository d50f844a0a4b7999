package catalog

import (
	"context"
	"testing"
)

type fakeSource struct {
	pool     []Question
	seen     map[string]bool
	accuracy float64
}

func (f *fakeSource) QuestionsForTopic(context.Context, string, int) ([]Question, error) {
	return f.pool, nil
}

func (f *fakeSource) SeenQuestionIDs(context.Context, string) (map[string]bool, error) {
	if f.seen == nil {
		return map[string]bool{}, nil
	}
	return f.seen, nil
}

func (f *fakeSource) RollingAccuracy(context.Context, string, int) (float64, error) {
	return f.accuracy, nil
}

func pooled(id, difficulty string) Question {
	return Question{ID: id, Difficulty: difficulty, Options: []string{"a", "b", "c", "d"}}
}

func pinnedPicker(src Source) *Picker {
	p := NewPicker(src, 20)
	p.seed = func() int64 { return 1 }
	return p
}

func TestPickPrefersUnseen(t *testing.T) {
	src := &fakeSource{
		pool: []Question{
			pooled("m1", "medium"), pooled("m2", "medium"), pooled("m3", "medium"),
			pooled("seen-e", "easy"),
		},
		seen:     map[string]bool{"seen-e": true},
		accuracy: 80,
	}
	got, err := pinnedPicker(src).Pick(context.Background(), "u1", "aux", 4, 3, "medium")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	for _, q := range got {
		if q.ID == "seen-e" {
			t.Fatal("seen question picked while unseen remained")
		}
	}
}

func TestPickDeterministicWithPinnedSeed(t *testing.T) {
	src := &fakeSource{
		pool:     []Question{pooled("a", "medium"), pooled("b", "medium"), pooled("c", "medium")},
		accuracy: 80,
	}
	p := pinnedPicker(src)
	first, err := p.Pick(context.Background(), "u1", "aux", 4, 2, "medium")
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Pick(context.Background(), "u1", "aux", 4, 2, "medium")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || len(second) != 2 || first[0].ID != second[0].ID || first[1].ID != second[1].ID {
		t.Fatalf("pinned seed produced %v then %v", first, second)
	}
}

func TestPickEmptyPool(t *testing.T) {
	got, err := pinnedPicker(&fakeSource{}).Pick(context.Background(), "u1", "aux", 4, 5, "medium")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("empty pool must yield nothing, got %v", got)
	}
}
