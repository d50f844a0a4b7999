package catalog

import (
	"context"
)

// Question is a catalog row. CorrectOption stays inside the engine; handlers
// translate to client-safe shapes before anything leaves the process.
type Question struct {
	ID               string
	Type             string // legislative|psychometric
	PrimaryArticleID string // empty for psychometric questions
	Category         string
	Prompt           string
	Options          []string
	CorrectOption    int
	Difficulty       string
	Active           bool
	Verified         bool
}

// Source is the read-only catalog view the picker consumes: the candidate
// pool for a topic, the user's seen-question set, and their recent accuracy.
type Source interface {
	QuestionsForTopic(ctx context.Context, positionType string, topicNumber int) ([]Question, error)
	SeenQuestionIDs(ctx context.Context, userID string) (map[string]bool, error)
	// RollingAccuracy returns the correct-percentage over the user's last
	// `window` attempts, or a negative value when there is no history.
	RollingAccuracy(ctx context.Context, userID string, window int) (float64, error)
}
