package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("session: not found")
	ErrDuplicate = errors.New("session: already exists for (user, exam date, part)")
	ErrForbidden = errors.New("session: caller does not own this session")
)

// Store persists sessions and their per-question rows. Create must enforce the
// one-session-per-(user, exam date, part) invariant atomically; SaveAnswer is a
// per-index upsert with last-write-wins semantics.
type Store interface {
	Create(ctx context.Context, s Session, questions []Question) error
	Get(ctx context.Context, testID string) (Session, error)
	FindByExamKey(ctx context.Context, userID, examDate, part string) (Session, error)
	Questions(ctx context.Context, testID string) ([]Question, error)
	SavedAnswers(ctx context.Context, testID string) (map[int]string, error)
	SaveAnswer(ctx context.Context, testID string, index int, answer string, at time.Time) error
	MarkCompleted(ctx context.Context, testID string, scorePct float64, at time.Time) error
	MarkAbandoned(ctx context.Context, testID string, at time.Time) error
	// SweepAbandoned transitions in_progress/created sessions untouched since
	// the cutoff to abandoned, returning how many rows moved.
	SweepAbandoned(ctx context.Context, cutoff time.Time) (int, error)
}

// EventSink receives the session audit trail. Appends are best-effort from the
// service's point of view.
type EventSink interface {
	Append(ctx context.Context, typ, key string, payload any) error
}
