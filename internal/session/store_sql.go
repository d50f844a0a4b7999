package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLStore persists sessions in the tests / test_questions tables. Option
// lists are stored as JSON arrays in a TEXT column so the same statements run
// on sqlite and postgres; $n placeholders are accepted by both drivers.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, sess Session, questions []Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tests (id, user_id, exam_date, part, total_questions, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		sess.ID, sess.UserID, sess.ExamDate, sess.Part, sess.TotalQuestions,
		string(sess.Status), sess.CreatedAt.Unix(), sess.UpdatedAt.Unix())
	if err != nil {
		// the unique (user_id, exam_date, part) constraint is the enforcement
		// point for concurrent inits; surface any hit as a duplicate
		var exists int
		if qerr := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM tests WHERE user_id=$1 AND exam_date=$2 AND part=$3`,
			sess.UserID, sess.ExamDate, sess.Part).Scan(&exists); qerr == nil {
			return ErrDuplicate
		}
		return err
	}

	for _, q := range questions {
		opts, merr := json.Marshal(q.Options)
		if merr != nil {
			return merr
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO test_questions (test_id, question_index, question_id, prompt, options_json, correct_option)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			sess.ID, q.Index, q.QuestionID, q.Prompt, string(opts), q.CorrectOption); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Get(ctx context.Context, testID string) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, exam_date, part, total_questions, status, score_pct, created_at, updated_at, completed_at
		 FROM tests WHERE id=$1`, testID)
	var sess Session
	var status string
	var scorePct sql.NullFloat64
	var createdAt, updatedAt int64
	var completedAt sql.NullInt64
	err := row.Scan(&sess.ID, &sess.UserID, &sess.ExamDate, &sess.Part, &sess.TotalQuestions,
		&status, &scorePct, &createdAt, &updatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	sess.Status = Status(status)
	sess.CreatedAt = time.Unix(createdAt, 0).UTC()
	sess.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	if scorePct.Valid {
		sess.ScorePct = &scorePct.Float64
	}
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0).UTC()
		sess.CompletedAt = &t
	}
	return sess, nil
}

func (s *SQLStore) FindByExamKey(ctx context.Context, userID, examDate, part string) (Session, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM tests WHERE user_id=$1 AND exam_date=$2 AND part=$3`,
		userID, examDate, part).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Questions(ctx context.Context, testID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_index, question_id, prompt, options_json, correct_option
		 FROM test_questions WHERE test_id=$1 ORDER BY question_index`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		var opts string
		if err := rows.Scan(&q.Index, &q.QuestionID, &q.Prompt, &opts, &q.CorrectOption); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) SavedAnswers(ctx context.Context, testID string) (map[int]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_index, saved_answer FROM test_questions
		 WHERE test_id=$1 AND saved_answer IS NOT NULL`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int]string{}
	for rows.Next() {
		var idx int
		var ans string
		if err := rows.Scan(&idx, &ans); err != nil {
			return nil, err
		}
		out[idx] = ans
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveAnswer(ctx context.Context, testID string, index int, answer string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE test_questions SET saved_answer=$1, answered_at=$2
		 WHERE test_id=$3 AND question_index=$4`,
		answer, at.Unix(), testID, index)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	// first answer moves the session into in_progress; every answer bumps
	// the activity clock the abandon sweep keys off
	_, err = s.db.ExecContext(ctx,
		`UPDATE tests SET
		   status = CASE WHEN status=$1 THEN $2 ELSE status END,
		   updated_at=$3
		 WHERE id=$4`,
		string(StatusCreated), string(StatusInProgress), at.Unix(), testID)
	return err
}

func (s *SQLStore) MarkCompleted(ctx context.Context, testID string, scorePct float64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tests SET status=$1, score_pct=$2, updated_at=$3, completed_at=$3 WHERE id=$4`,
		string(StatusCompleted), scorePct, at.Unix(), testID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) MarkAbandoned(ctx context.Context, testID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tests SET status=$1, updated_at=$2 WHERE id=$3`,
		string(StatusAbandoned), at.Unix(), testID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) SweepAbandoned(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tests SET status=$1 WHERE status IN ($2,$3) AND updated_at < $4`,
		string(StatusAbandoned), string(StatusCreated), string(StatusInProgress), cutoff.Unix())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
