package selector

import (
	"math/rand"
	"reflect"
	"testing"
)

func q(id string, d Difficulty) Question { return Question{ID: id, Difficulty: d} }

func newRand() *rand.Rand { return rand.New(rand.NewSource(42)) }

func TestSelectPrefersUnseenAtTarget(t *testing.T) {
	pool := []Question{
		q("m1", Medium), q("m2", Medium), q("m3", Medium), q("m4", Medium),
		q("e1", Easy), q("h1", Hard),
	}
	got := Select(pool, Opts{
		Count: 4, Seen: map[string]bool{}, TargetDifficulty: Medium,
		RollingAccuracy: 90, Rand: newRand(),
	})
	if len(got) != 4 {
		t.Fatalf("len = %d", len(got))
	}
	for _, picked := range got {
		if picked.Difficulty != Medium {
			t.Fatalf("with enough unseen at target, got difficulty %v", picked.Difficulty)
		}
	}
}

func TestSelectUnseenBeforeAnswered(t *testing.T) {
	// 3 unseen medium + 2 answered easy, count 4, accuracy healthy:
	// expect the 3 unseen medium plus 1 unseen of any difficulty before any repeat
	pool := []Question{
		q("m1", Medium), q("m2", Medium), q("m3", Medium),
		q("h1", Hard),
		q("seen-e1", Easy), q("seen-e2", Easy),
	}
	seen := map[string]bool{"seen-e1": true, "seen-e2": true}
	got := Select(pool, Opts{Count: 4, Seen: seen, TargetDifficulty: Medium, RollingAccuracy: 80, Rand: newRand()})
	if len(got) != 4 {
		t.Fatalf("len = %d", len(got))
	}
	for _, picked := range got {
		if seen[picked.ID] {
			t.Fatalf("answered question %s returned while unseen remained", picked.ID)
		}
	}
}

func TestSelectAdaptiveStepDown(t *testing.T) {
	pool := []Question{
		q("m1", Medium),
		q("e1", Easy), q("e2", Easy),
		q("h1", Hard),
	}
	got := Select(pool, Opts{Count: 3, Seen: map[string]bool{}, TargetDifficulty: Medium, RollingAccuracy: 40, Rand: newRand()})
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	// with accuracy under the floor, the easier bucket fills the remaining
	// slots before the hard question is ever considered
	for _, picked := range got {
		if picked.ID == "h1" {
			t.Fatalf("hard question selected while easier unseen remained: %v", ids(got))
		}
	}
}

func TestSelectFallsBackToAnsweredEasiestFirst(t *testing.T) {
	pool := []Question{
		q("m1", Medium),
		q("seen-h", Hard), q("seen-e", Easy), q("seen-m", Medium),
	}
	seen := map[string]bool{"seen-h": true, "seen-e": true, "seen-m": true}
	got := Select(pool, Opts{Count: 3, Seen: seen, TargetDifficulty: Medium, RollingAccuracy: 80, Rand: newRand()})
	want := []string{"m1", "seen-e", "seen-m"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("order = %v, want %v", ids(got), want)
	}
}

func TestSelectDeterministicUnderFixedSeed(t *testing.T) {
	pool := []Question{
		q("a", Medium), q("b", Medium), q("c", Medium), q("d", Medium), q("e", Medium),
	}
	first := Select(pool, Opts{Count: 3, Seen: map[string]bool{}, TargetDifficulty: Medium, RollingAccuracy: 80, Rand: rand.New(rand.NewSource(7))})
	second := Select(pool, Opts{Count: 3, Seen: map[string]bool{}, TargetDifficulty: Medium, RollingAccuracy: 80, Rand: rand.New(rand.NewSource(7))})
	if !reflect.DeepEqual(ids(first), ids(second)) {
		t.Fatalf("same seed produced %v then %v", ids(first), ids(second))
	}
}

func TestSelectNeverDuplicates(t *testing.T) {
	pool := []Question{q("a", Easy), q("b", Medium), q("c", Hard)}
	got := Select(pool, Opts{Count: 10, Seen: map[string]bool{"c": true}, TargetDifficulty: Medium, RollingAccuracy: 50, Rand: newRand()})
	if len(got) != 3 {
		t.Fatalf("len = %d, want whole pool once", len(got))
	}
	seen := map[string]bool{}
	for _, picked := range got {
		if seen[picked.ID] {
			t.Fatalf("duplicate %s in %v", picked.ID, ids(got))
		}
		seen[picked.ID] = true
	}
}

func TestParseDifficulty(t *testing.T) {
	if ParseDifficulty("fácil") != Easy || ParseDifficulty("dificil") != Hard {
		t.Error("spanish labels should map onto buckets")
	}
	if ParseDifficulty("???") != Medium {
		t.Error("unknown labels fall back to medium")
	}
}

func ids(qs []Question) []string {
	out := make([]string, len(qs))
	for i, picked := range qs {
		out[i] = picked.ID
	}
	return out
}
