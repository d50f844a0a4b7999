package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/opoprep/opoprep-engine/internal/selector"
)

// Picker assembles the question set for a new session: candidate pool from
// the catalog, seen-set and rolling accuracy from the attempt history, then
// the tiered selection policy on top.
type Picker struct {
	source Source
	window int // attempts counted toward rolling accuracy

	// seed hook so tests can pin the selection order
	seed func() int64
}

func NewPicker(source Source, accuracyWindow int) *Picker {
	if accuracyWindow <= 0 {
		accuracyWindow = 20
	}
	return &Picker{
		source: source,
		window: accuracyWindow,
		seed:   func() int64 { return time.Now().UnixNano() },
	}
}

// Pick selects up to count questions for the user on a topic. Previously
// answered questions only surface once every acceptable unseen question is
// exhausted.
func (p *Picker) Pick(ctx context.Context, userID, positionType string, topicNumber, count int, difficulty string) ([]Question, error) {
	pool, err := p.source.QuestionsForTopic(ctx, positionType, topicNumber)
	if err != nil {
		return nil, fmt.Errorf("catalog: pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, nil
	}
	seen, err := p.source.SeenQuestionIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("catalog: seen set: %w", err)
	}
	accuracy, err := p.source.RollingAccuracy(ctx, userID, p.window)
	if err != nil {
		return nil, fmt.Errorf("catalog: rolling accuracy: %w", err)
	}

	byID := make(map[string]Question, len(pool))
	cands := make([]selector.Question, 0, len(pool))
	for _, q := range pool {
		byID[q.ID] = q
		cands = append(cands, selector.Question{
			ID:         q.ID,
			Difficulty: selector.ParseDifficulty(q.Difficulty),
		})
	}

	picked := selector.Select(cands, selector.Opts{
		Count:            count,
		Seen:             seen,
		TargetDifficulty: selector.ParseDifficulty(difficulty),
		RollingAccuracy:  accuracy,
		Rand:             rand.New(rand.NewSource(p.seed())),
	})

	out := make([]Question, 0, len(picked))
	for _, sq := range picked {
		out = append(out, byID[sq.ID])
	}
	return out, nil
}
