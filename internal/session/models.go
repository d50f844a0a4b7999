package session

import "time"

type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// Question is one slot of a session's fixed question order. CorrectOption is
// persisted server-side only and must never be serialized toward the client;
// ClientView is the only shape handlers are allowed to return.
type Question struct {
	Index         int
	QuestionID    string
	Prompt        string
	Options       []string
	CorrectOption int // 0-3
}

// ClientQuestion is the answer-free projection of a Question.
type ClientQuestion struct {
	Index      int      `json:"index"`
	QuestionID string   `json:"question_id"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
}

func (q Question) ClientView() ClientQuestion {
	return ClientQuestion{Index: q.Index, QuestionID: q.QuestionID, Prompt: q.Prompt, Options: q.Options}
}

// Session is one official-exam sitting, pinned to (user, exam date, part).
type Session struct {
	ID             string     `json:"test_id"`
	UserID         string     `json:"-"`
	ExamDate       string     `json:"exam_date"` // YYYY-MM-DD
	Part           string     `json:"part"`      // oposición part identifier
	TotalQuestions int        `json:"total_questions"`
	Status         Status     `json:"status"`
	ScorePct       *float64   `json:"score_pct,omitempty"` // set at completion, always a percentage
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Snapshot is what resume hands back: metadata, answer-free questions, and
// the answers saved so far keyed by 0-based question index.
type Snapshot struct {
	Session      Session          `json:"session"`
	Questions    []ClientQuestion `json:"questions"`
	SavedAnswers map[int]string   `json:"saved_answers"`
}
