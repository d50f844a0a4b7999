package weakness

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Attempt is one historical answer by the user to a question tied to an
// article. Rows come from an append-only store and are never written here.
type Attempt struct {
	ArticleID string
	IsCorrect bool
	CreatedAt time.Time
}

// ArticleInfo ties an article to its law and the syllabus topics that cover it
// for the requested position type.
type ArticleInfo struct {
	ArticleID     string
	LawID         string
	ArticleNumber string
	TopicNumbers  []int
}

// AttemptSource is the read-only view the detector needs: the user's attempt
// history and the article→topic attribution for a position type.
type AttemptSource interface {
	AttemptsByUser(ctx context.Context, userID, positionType string) ([]Attempt, error)
	ArticleInfos(ctx context.Context, articleIDs []string, positionType string) (map[string]ArticleInfo, error)
}

// Options tune the detector. Zero values fall back to the defaults below.
type Options struct {
	MinAttempts       int     // ignore articles with fewer attempts
	MaxSuccessRatePct float64 // keep articles at or below this success rate
	MaxPerTopic       int     // cap per topic, worst first
	PositionType      string
}

const (
	DefaultMinAttempts       = 2
	DefaultMaxSuccessRatePct = 60
	DefaultMaxPerTopic       = 5
)

func (o Options) withDefaults() Options {
	if o.MinAttempts <= 0 {
		o.MinAttempts = DefaultMinAttempts
	}
	if o.MaxSuccessRatePct <= 0 {
		o.MaxSuccessRatePct = DefaultMaxSuccessRatePct
	}
	if o.MaxPerTopic <= 0 {
		o.MaxPerTopic = DefaultMaxPerTopic
	}
	return o
}

// WeakArticle is one flagged article. SuccessRatePct is always the derived
// percentage, never a raw correct-count.
type WeakArticle struct {
	ArticleID      string  `json:"article_id"`
	LawID          string  `json:"law_id"`
	ArticleNumber  string  `json:"article_number"`
	TotalAttempts  int     `json:"total_attempts"`
	CorrectCount   int     `json:"correct_count"`
	SuccessRatePct float64 `json:"success_rate_pct"`
}

type Detector struct {
	attempts AttemptSource
}

func NewDetector(attempts AttemptSource) *Detector { return &Detector{attempts: attempts} }

// WeakArticles aggregates the user's attempt history per article and returns,
// grouped by topic number, the articles whose success rate sits at or below
// the threshold over at least MinAttempts tries. A user with no qualifying
// history gets an empty map, which is success.
func (d *Detector) WeakArticles(ctx context.Context, userID string, opts Options) (map[int][]WeakArticle, error) {
	opts = opts.withDefaults()

	attempts, err := d.attempts.AttemptsByUser(ctx, userID, opts.PositionType)
	if err != nil {
		return nil, fmt.Errorf("weakness: list attempts: %w", err)
	}
	if len(attempts) == 0 {
		return map[int][]WeakArticle{}, nil
	}

	type tally struct{ total, correct int }
	counts := map[string]*tally{}
	order := make([]string, 0, 16)
	for _, a := range attempts {
		c, ok := counts[a.ArticleID]
		if !ok {
			c = &tally{}
			counts[a.ArticleID] = c
			order = append(order, a.ArticleID)
		}
		c.total++
		if a.IsCorrect {
			c.correct++
		}
	}

	infos, err := d.attempts.ArticleInfos(ctx, order, opts.PositionType)
	if err != nil {
		return nil, fmt.Errorf("weakness: article infos: %w", err)
	}

	byTopic := map[int][]WeakArticle{}
	for _, articleID := range order {
		c := counts[articleID]
		if c.total < opts.MinAttempts {
			continue
		}
		rate := float64(c.correct) / float64(c.total) * 100
		if rate > opts.MaxSuccessRatePct {
			continue
		}
		info, ok := infos[articleID]
		if !ok || len(info.TopicNumbers) == 0 {
			// attempt references an article outside the position type's
			// scopes (or a deleted one): skip, never fail the batch
			continue
		}
		wa := WeakArticle{
			ArticleID:      articleID,
			LawID:          info.LawID,
			ArticleNumber:  info.ArticleNumber,
			TotalAttempts:  c.total,
			CorrectCount:   c.correct,
			SuccessRatePct: rate,
		}
		for _, topic := range info.TopicNumbers {
			byTopic[topic] = append(byTopic[topic], wa)
		}
	}

	for topic, list := range byTopic {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].SuccessRatePct != list[j].SuccessRatePct {
				return list[i].SuccessRatePct < list[j].SuccessRatePct
			}
			return list[i].TotalAttempts > list[j].TotalAttempts
		})
		if len(list) > opts.MaxPerTopic {
			list = list[:opts.MaxPerTopic]
		}
		byTopic[topic] = list
	}
	return byTopic, nil
}
