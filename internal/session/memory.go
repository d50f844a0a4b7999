package session

import (
	"context"
	"sync"
	"time"
)

// memoryStore is the offline/dev Store, also used as the test double.
// Semantics mirror SQLStore, including the duplicate-key check on Create.
type memoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]Session
	questions map[string][]Question
	answers   map[string]map[int]string
}

func NewInMemoryStore() Store {
	return &memoryStore{
		sessions:  map[string]Session{},
		questions: map[string][]Question{},
		answers:   map[string]map[int]string{},
	}
}

func (m *memoryStore) Create(_ context.Context, sess Session, questions []Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.UserID == sess.UserID && existing.ExamDate == sess.ExamDate && existing.Part == sess.Part {
			return ErrDuplicate
		}
	}
	m.sessions[sess.ID] = sess
	m.questions[sess.ID] = append([]Question(nil), questions...)
	m.answers[sess.ID] = map[int]string{}
	return nil
}

func (m *memoryStore) Get(_ context.Context, testID string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[testID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *memoryStore) FindByExamKey(_ context.Context, userID, examDate, part string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sess := range m.sessions {
		if sess.UserID == userID && sess.ExamDate == examDate && sess.Part == part {
			return sess, nil
		}
	}
	return Session{}, ErrNotFound
}

func (m *memoryStore) Questions(_ context.Context, testID string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qs, ok := m.questions[testID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]Question(nil), qs...), nil
}

func (m *memoryStore) SavedAnswers(_ context.Context, testID string) (map[int]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	saved, ok := m.answers[testID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make(map[int]string, len(saved))
	for k, v := range saved {
		out[k] = v
	}
	return out, nil
}

func (m *memoryStore) SaveAnswer(_ context.Context, testID string, index int, answer string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[testID]
	if !ok {
		return ErrNotFound
	}
	m.answers[testID][index] = answer // last write wins
	if sess.Status == StatusCreated {
		sess.Status = StatusInProgress
	}
	sess.UpdatedAt = at
	m.sessions[testID] = sess
	return nil
}

func (m *memoryStore) MarkCompleted(_ context.Context, testID string, scorePct float64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[testID]
	if !ok {
		return ErrNotFound
	}
	sess.Status = StatusCompleted
	sess.ScorePct = &scorePct
	sess.UpdatedAt = at
	sess.CompletedAt = &at
	m.sessions[testID] = sess
	return nil
}

func (m *memoryStore) MarkAbandoned(_ context.Context, testID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[testID]
	if !ok {
		return ErrNotFound
	}
	sess.Status = StatusAbandoned
	sess.UpdatedAt = at
	m.sessions[testID] = sess
	return nil
}

func (m *memoryStore) SweepAbandoned(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, sess := range m.sessions {
		if (sess.Status == StatusCreated || sess.Status == StatusInProgress) && sess.UpdatedAt.Before(cutoff) {
			sess.Status = StatusAbandoned
			m.sessions[id] = sess
			n++
		}
	}
	return n, nil
}
