package selector

import (
	"math/rand"
	"sort"
)

// Difficulty buckets, ordered easiest first.
type Difficulty int

const (
	Easy Difficulty = iota + 1
	Medium
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return "unknown"
}

// ParseDifficulty maps the catalog's difficulty labels onto a bucket; unknown
// labels land in Medium so a mistagged question is still selectable.
func ParseDifficulty(s string) Difficulty {
	switch s {
	case "easy", "facil", "fácil":
		return Easy
	case "hard", "dificil", "difícil":
		return Hard
	default:
		return Medium
	}
}

// Question is the selector's view of a catalog question.
type Question struct {
	ID         string
	Difficulty Difficulty
}

// accuracyFloor is the rolling-accuracy level under which the selector
// prefers one difficulty step down before mixing in other difficulties.
const accuracyFloor = 60.0

// Opts configure one selection. Seen holds the IDs of questions the user has
// any prior attempt for. RollingAccuracy is a percentage over the user's last
// answered window; pass a negative value when unknown. Rand must be non-nil;
// a fixed-seed Rand makes the selection reproducible.
type Opts struct {
	Count            int
	Seen             map[string]bool
	TargetDifficulty Difficulty
	RollingAccuracy  float64
	Rand             *rand.Rand
}

// Select picks up to Count questions for a new session. Tiers are exhausted
// strictly in order so a previously answered question never appears while an
// unseen one could still fill the slot:
//
//  1. unseen at the target difficulty
//  2. unseen one step easier, when rolling accuracy is under the floor
//  3. unseen at any difficulty
//  4. previously answered, easiest first
//
// Order within a tier is a uniform shuffle. The result never repeats an ID.
func Select(pool []Question, opts Opts) []Question {
	if opts.Count <= 0 || len(pool) == 0 {
		return nil
	}

	var unseen, answered []Question
	for _, q := range pool {
		if opts.Seen[q.ID] {
			answered = append(answered, q)
		} else {
			unseen = append(unseen, q)
		}
	}

	picked := make([]Question, 0, opts.Count)
	used := make(map[string]bool, opts.Count)

	take := func(candidates []Question) {
		if len(picked) >= opts.Count {
			return
		}
		shuffled := append([]Question(nil), candidates...)
		opts.Rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for _, q := range shuffled {
			if len(picked) >= opts.Count {
				return
			}
			if used[q.ID] {
				continue
			}
			used[q.ID] = true
			picked = append(picked, q)
		}
	}

	take(atDifficulty(unseen, opts.TargetDifficulty))
	if opts.RollingAccuracy >= 0 && opts.RollingAccuracy < accuracyFloor && opts.TargetDifficulty > Easy {
		take(atDifficulty(unseen, opts.TargetDifficulty-1))
	}
	take(unseen)

	if len(picked) < opts.Count {
		// repeats as a last resort, easiest first; shuffle only inside each
		// difficulty bucket so the easy-first ordering survives
		byBucket := append([]Question(nil), answered...)
		sort.SliceStable(byBucket, func(i, j int) bool {
			return byBucket[i].Difficulty < byBucket[j].Difficulty
		})
		for d := Easy; d <= Hard; d++ {
			take(atDifficulty(byBucket, d))
		}
	}
	return picked
}

func atDifficulty(qs []Question, d Difficulty) []Question {
	var out []Question
	for _, q := range qs {
		if q.Difficulty == d {
			out = append(out, q)
		}
	}
	return out
}
