package syllabus

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Confidence qualifies a resolution result. "none" is a normal outcome, not an
// error: it means the article is simply uncategorized for the position type.
type Confidence string

const (
	ConfidenceExact Confidence = "exact"
	ConfidenceNone  Confidence = "none"
)

var ErrBadReference = errors.New("syllabus: reference needs articleID or law + articleNumber")

// Reference identifies the article to resolve. Exactly one of the three forms
// must be populated: ArticleID alone, LawID+ArticleNumber, or
// LawShortName+ArticleNumber.
type Reference struct {
	ArticleID     string
	LawID         string
	LawShortName  string
	ArticleNumber string
	// PositionType narrows the scope table to one oposición; empty means all.
	PositionType string
}

// Scope is one row of the topic scope table: a topic claims either a set of
// articles of a law or, when ArticleNumbers is empty, the whole law.
type Scope struct {
	PositionType   string
	TopicNumber    int
	LawID          string
	ArticleNumbers []string
}

// Resolution is the answer to "which topics cover this article". TopicNumbers
// may legitimately hold more than one entry: shared legal content belongs to
// several syllabus units for some position types.
type Resolution struct {
	TopicNumbers []int      `json:"topic_numbers"`
	Confidence   Confidence `json:"confidence"`
}

// ScopeSource is the read-only view of the scope and article reference tables.
type ScopeSource interface {
	ScopesForLaw(ctx context.Context, lawID, positionType string) ([]Scope, error)
	LawIDByShortName(ctx context.Context, shortName string) (string, error)
	ArticleRef(ctx context.Context, articleID string) (lawID, articleNumber string, err error)
}

type Resolver struct {
	scopes ScopeSource
}

func NewResolver(scopes ScopeSource) *Resolver { return &Resolver{scopes: scopes} }

// ResolveTopic returns every topic whose scope covers the referenced article.
// A scope row with no article numbers covers the whole law and always matches.
// Matching is done on canonical tokens, so textual variants of the same
// article number ("47 bis" vs "47bis") cannot split a match.
func (r *Resolver) ResolveTopic(ctx context.Context, ref Reference) (Resolution, error) {
	lawID, number, err := r.locate(ctx, ref)
	if err != nil {
		return Resolution{}, err
	}
	if lawID == "" {
		// unknown law or article: uncategorized, not an error
		return Resolution{TopicNumbers: []int{}, Confidence: ConfidenceNone}, nil
	}

	scopes, err := r.scopes.ScopesForLaw(ctx, lawID, ref.PositionType)
	if err != nil {
		return Resolution{}, fmt.Errorf("syllabus: list scopes: %w", err)
	}

	want := ParseArticleNumber(number).Canonical()
	seen := map[int]struct{}{}
	var topics []int
	for _, sc := range scopes {
		if !scopeMatches(sc, want) {
			continue
		}
		if _, dup := seen[sc.TopicNumber]; dup {
			continue
		}
		seen[sc.TopicNumber] = struct{}{}
		topics = append(topics, sc.TopicNumber)
	}
	if len(topics) == 0 {
		return Resolution{TopicNumbers: []int{}, Confidence: ConfidenceNone}, nil
	}
	sort.Ints(topics)
	return Resolution{TopicNumbers: topics, Confidence: ConfidenceExact}, nil
}

func scopeMatches(sc Scope, want string) bool {
	if len(sc.ArticleNumbers) == 0 {
		return true // whole law in scope
	}
	for _, num := range sc.ArticleNumbers {
		if ParseArticleNumber(num).Canonical() == want {
			return true
		}
	}
	return false
}

// locate turns any of the three reference forms into (lawID, articleNumber).
// An unknown law or article yields ("", "") so the caller can report
// confidence "none" instead of failing.
func (r *Resolver) locate(ctx context.Context, ref Reference) (string, string, error) {
	switch {
	case ref.ArticleID != "":
		lawID, number, err := r.scopes.ArticleRef(ctx, ref.ArticleID)
		if err != nil {
			if errors.Is(err, ErrUnknownArticle) {
				return "", "", nil
			}
			return "", "", fmt.Errorf("syllabus: article lookup: %w", err)
		}
		return lawID, number, nil
	case ref.LawID != "" && ref.ArticleNumber != "":
		return ref.LawID, ref.ArticleNumber, nil
	case ref.LawShortName != "" && ref.ArticleNumber != "":
		lawID, err := r.scopes.LawIDByShortName(ctx, ref.LawShortName)
		if err != nil {
			if errors.Is(err, ErrUnknownLaw) {
				return "", "", nil
			}
			return "", "", fmt.Errorf("syllabus: law lookup: %w", err)
		}
		return lawID, ref.ArticleNumber, nil
	default:
		return "", "", ErrBadReference
	}
}
