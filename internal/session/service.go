package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidID  = errors.New("session: malformed test id")
	ErrValidation = errors.New("session: invalid input")
	ErrFinished   = errors.New("session: already in a terminal state")
	ErrIncomplete = errors.New("session: unanswered questions remain")
)

// answer letters map onto option indexes 0-3
var letterIndex = map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}

// DefaultAbandonTTL is how long an unfinished session may sit idle before the
// sweep marks it abandoned. The source system never pinned this down; 24h
// pending product input.
const DefaultAbandonTTL = 24 * time.Hour

type Service struct {
	store      Store
	events     EventSink
	abandonTTL time.Duration
	now        func() time.Time
}

func NewService(store Store, events EventSink, abandonTTL time.Duration) *Service {
	if abandonTTL <= 0 {
		abandonTTL = DefaultAbandonTTL
	}
	return &Service{store: store, events: events, abandonTTL: abandonTTL, now: time.Now}
}

// Init creates the session for (userID, examDate, part) and persists each
// question's correct option server-side. It is idempotent on that key: a
// second call returns the already-existing session with created=false so the
// caller can route to resume instead of duplicating.
func (s *Service) Init(ctx context.Context, userID, examDate, part string, questions []Question) (Session, bool, error) {
	if userID == "" || part == "" {
		return Session{}, false, fmt.Errorf("%w: user id and part are required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", examDate); err != nil {
		return Session{}, false, fmt.Errorf("%w: exam date must be YYYY-MM-DD", ErrValidation)
	}
	if len(questions) == 0 {
		return Session{}, false, fmt.Errorf("%w: at least one question is required", ErrValidation)
	}
	for i := range questions {
		q := &questions[i]
		q.Index = i
		if q.QuestionID == "" || len(q.Options) != 4 {
			return Session{}, false, fmt.Errorf("%w: question %d needs an id and exactly 4 options", ErrValidation, i)
		}
		if q.CorrectOption < 0 || q.CorrectOption > 3 {
			return Session{}, false, fmt.Errorf("%w: question %d correct option out of range", ErrValidation, i)
		}
	}

	if existing, err := s.store.FindByExamKey(ctx, userID, examDate, part); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Session{}, false, err
	}

	now := s.now().UTC()
	sess := Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		ExamDate:       examDate,
		Part:           part,
		TotalQuestions: len(questions),
		Status:         StatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, sess, questions); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// lost the race against a concurrent init for the same key
			existing, ferr := s.store.FindByExamKey(ctx, userID, examDate, part)
			if ferr != nil {
				return Session{}, false, err
			}
			return existing, false, nil
		}
		return Session{}, false, err
	}
	s.emit(ctx, "session_initialized", sess.ID, map[string]any{
		"user_id": userID, "exam_date": examDate, "part": part, "total": len(questions),
	})
	return sess, true, nil
}

// Resume returns the owner's snapshot: questions with correct options
// stripped plus the answers saved so far. Ownership is checked before any
// question row is read.
func (s *Service) Resume(ctx context.Context, testID, userID string) (Snapshot, error) {
	sess, err := s.owned(ctx, testID, userID)
	if err != nil {
		return Snapshot{}, err
	}
	questions, err := s.store.Questions(ctx, testID)
	if err != nil {
		return Snapshot{}, err
	}
	saved, err := s.store.SavedAnswers(ctx, testID)
	if err != nil {
		return Snapshot{}, err
	}
	client := make([]ClientQuestion, len(questions))
	for i, q := range questions {
		client[i] = q.ClientView()
	}
	return Snapshot{Session: sess, Questions: client, SavedAnswers: saved}, nil
}

// Answer upserts one answer. Concurrent writes to the same index resolve to
// last-write-wins in the store; correctness is never revealed here.
func (s *Service) Answer(ctx context.Context, testID, userID string, index int, answer string) error {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if _, ok := letterIndex[answer]; !ok {
		return fmt.Errorf("%w: answer must be one of a, b, c, d", ErrValidation)
	}
	sess, err := s.owned(ctx, testID, userID)
	if err != nil {
		return err
	}
	if sess.Status == StatusCompleted || sess.Status == StatusAbandoned {
		return ErrFinished
	}
	if index < 0 || index >= sess.TotalQuestions {
		return fmt.Errorf("%w: question index %d out of range", ErrValidation, index)
	}
	if err := s.store.SaveAnswer(ctx, testID, index, answer, s.now().UTC()); err != nil {
		return err
	}
	s.emit(ctx, "answer_saved", testID, map[string]any{"index": index})
	return nil
}

// Complete marks the session terminal and records the score as a percentage
// derived from (correct/total)*100. It refuses while answers are missing;
// Abandon is the explicit way out of a partial session.
func (s *Service) Complete(ctx context.Context, testID, userID string) (Session, error) {
	sess, err := s.owned(ctx, testID, userID)
	if err != nil {
		return Session{}, err
	}
	if sess.Status == StatusCompleted || sess.Status == StatusAbandoned {
		return Session{}, ErrFinished
	}
	questions, err := s.store.Questions(ctx, testID)
	if err != nil {
		return Session{}, err
	}
	saved, err := s.store.SavedAnswers(ctx, testID)
	if err != nil {
		return Session{}, err
	}
	if len(saved) < sess.TotalQuestions {
		return Session{}, fmt.Errorf("%w: %d of %d answered", ErrIncomplete, len(saved), sess.TotalQuestions)
	}
	correct := 0
	for _, q := range questions {
		if idx, ok := letterIndex[saved[q.Index]]; ok && idx == q.CorrectOption {
			correct++
		}
	}
	scorePct := float64(correct) / float64(sess.TotalQuestions) * 100
	now := s.now().UTC()
	if err := s.store.MarkCompleted(ctx, testID, scorePct, now); err != nil {
		return Session{}, err
	}
	s.emit(ctx, "session_completed", testID, map[string]any{"score_pct": scorePct})
	sess.Status = StatusCompleted
	sess.ScorePct = &scorePct
	sess.UpdatedAt = now
	sess.CompletedAt = &now
	return sess, nil
}

// Abandon explicitly closes a partial session.
func (s *Service) Abandon(ctx context.Context, testID, userID string) error {
	sess, err := s.owned(ctx, testID, userID)
	if err != nil {
		return err
	}
	if sess.Status == StatusCompleted || sess.Status == StatusAbandoned {
		return ErrFinished
	}
	if err := s.store.MarkAbandoned(ctx, testID, s.now().UTC()); err != nil {
		return err
	}
	s.emit(ctx, "session_abandoned", testID, map[string]any{"explicit": true})
	return nil
}

// SweepAbandoned moves sessions idle past the TTL into the abandoned state,
// making the source system's implicit staleness an explicit transition.
func (s *Service) SweepAbandoned(ctx context.Context) (int, error) {
	n, err := s.store.SweepAbandoned(ctx, s.now().UTC().Add(-s.abandonTTL))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.emit(ctx, "sessions_swept", "sweep", map[string]any{"count": n})
	}
	return n, nil
}

// owned validates the id, loads the session and enforces ownership. The id
// format is checked before the store is touched.
func (s *Service) owned(ctx context.Context, testID, userID string) (Session, error) {
	if _, err := uuid.Parse(testID); err != nil {
		return Session{}, ErrInvalidID
	}
	sess, err := s.store.Get(ctx, testID)
	if err != nil {
		return Session{}, err
	}
	if sess.UserID != userID {
		return Session{}, ErrForbidden
	}
	return sess, nil
}

// emit appends to the audit trail; a failed append never fails the operation.
func (s *Service) emit(ctx context.Context, typ, key string, payload any) {
	if s.events == nil {
		return
	}
	_ = s.events.Append(ctx, typ, key, payload)
}
