package weakness

import (
	"context"
	"testing"
	"time"
)

type fakeAttemptSource struct {
	attempts []Attempt
	infos    map[string]ArticleInfo
}

func (f *fakeAttemptSource) AttemptsByUser(context.Context, string, string) ([]Attempt, error) {
	return f.attempts, nil
}

func (f *fakeAttemptSource) ArticleInfos(_ context.Context, ids []string, _ string) (map[string]ArticleInfo, error) {
	out := map[string]ArticleInfo{}
	for _, id := range ids {
		if info, ok := f.infos[id]; ok {
			out[id] = info
		}
	}
	return out, nil
}

func attemptsFor(articleID string, correct, wrong int) []Attempt {
	var out []Attempt
	ts := time.Unix(1700000000, 0)
	for i := 0; i < correct; i++ {
		out = append(out, Attempt{ArticleID: articleID, IsCorrect: true, CreatedAt: ts})
	}
	for i := 0; i < wrong; i++ {
		out = append(out, Attempt{ArticleID: articleID, IsCorrect: false, CreatedAt: ts})
	}
	return out
}

func TestWeakArticlesThresholds(t *testing.T) {
	src := &fakeAttemptSource{
		infos: map[string]ArticleInfo{
			"A": {ArticleID: "A", LawID: "law-39", ArticleNumber: "13", TopicNumbers: []int{4}},
			"B": {ArticleID: "B", LawID: "law-39", ArticleNumber: "14", TopicNumbers: []int{4}},
			"C": {ArticleID: "C", LawID: "law-39", ArticleNumber: "15", TopicNumbers: []int{4}},
		},
	}
	// A: 1 attempt, wrong -> below MinAttempts, excluded
	// B: 3 attempts, 1 correct (33%) -> included
	// C: 5 attempts, 4 correct (80%) -> above threshold, excluded
	src.attempts = append(src.attempts, attemptsFor("A", 0, 1)...)
	src.attempts = append(src.attempts, attemptsFor("B", 1, 2)...)
	src.attempts = append(src.attempts, attemptsFor("C", 4, 1)...)

	got, err := NewDetector(src).WeakArticles(context.Background(), "u1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	list := got[4]
	if len(list) != 1 || list[0].ArticleID != "B" {
		t.Fatalf("weak articles = %+v, want only B", list)
	}
	if list[0].TotalAttempts != 3 || list[0].CorrectCount != 1 {
		t.Errorf("tally = %+v", list[0])
	}
	if pct := list[0].SuccessRatePct; pct < 33.3 || pct > 33.4 {
		t.Errorf("success rate = %v, want ~33.3", pct)
	}
}

func TestWeakArticlesNeverBelowMinAttempts(t *testing.T) {
	src := &fakeAttemptSource{
		infos: map[string]ArticleInfo{
			"A": {ArticleID: "A", TopicNumbers: []int{1}},
		},
		attempts: attemptsFor("A", 0, 1),
	}
	got, err := NewDetector(src).WeakArticles(context.Background(), "u1", Options{MinAttempts: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("single wrong answer must not flag an article, got %+v", got)
	}
}

func TestWeakArticlesSortedAndCapped(t *testing.T) {
	src := &fakeAttemptSource{infos: map[string]ArticleInfo{}}
	// seven qualifying articles with rates 0%,10%:ish ... worst first expected
	ids := []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6"}
	for i, id := range ids {
		src.infos[id] = ArticleInfo{ArticleID: id, TopicNumbers: []int{9}}
		src.attempts = append(src.attempts, attemptsFor(id, i, 10-i)...) // rate = i*10%
	}
	got, err := NewDetector(src).WeakArticles(context.Background(), "u1", Options{MaxPerTopic: 5})
	if err != nil {
		t.Fatal(err)
	}
	list := got[9]
	if len(list) != 5 {
		t.Fatalf("len = %d, want cap 5", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].SuccessRatePct > list[i].SuccessRatePct {
			t.Fatalf("not sorted worst-first: %+v", list)
		}
	}
	if list[0].ArticleID != "a0" {
		t.Errorf("worst article = %s, want a0", list[0].ArticleID)
	}
}

func TestWeakArticlesEmptyHistoryIsSuccess(t *testing.T) {
	got, err := NewDetector(&fakeAttemptSource{}).WeakArticles(context.Background(), "u1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil map, got %#v", got)
	}
}

func TestWeakArticlesSkipsUnattributedArticles(t *testing.T) {
	src := &fakeAttemptSource{
		infos:    map[string]ArticleInfo{}, // article deleted / out of scope
		attempts: attemptsFor("gone", 0, 3),
	}
	got, err := NewDetector(src).WeakArticles(context.Background(), "u1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("unattributed article must be skipped, got %+v", got)
	}
}

func TestWeakArticlesSharedTopicAttribution(t *testing.T) {
	src := &fakeAttemptSource{
		infos: map[string]ArticleInfo{
			"A": {ArticleID: "A", TopicNumbers: []int{4, 7}},
		},
		attempts: attemptsFor("A", 0, 2),
	}
	got, err := NewDetector(src).WeakArticles(context.Background(), "u1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got[4]) != 1 || len(got[7]) != 1 {
		t.Fatalf("article shared across topics must appear under both, got %+v", got)
	}
}
