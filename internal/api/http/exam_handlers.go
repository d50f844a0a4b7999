package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	auth "github.com/opoprep/opoprep-engine/internal/auth/middleware"
	"github.com/opoprep/opoprep-engine/internal/catalog"
	"github.com/opoprep/opoprep-engine/internal/session"
)

// authedUser returns the caller's user id, answering 401 when the request
// carries no authenticated subject. Unreachable behind JWTMiddleware, but
// every handler guards uniformly so direct wiring cannot misreport 403.
func authedUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return "", false
	}
	return userID, true
}

type initExamRequest struct {
	ExamDate  string `json:"exam_date"` // YYYY-MM-DD
	Oposicion string `json:"oposicion"` // exam part identifier
	Questions []struct {
		QuestionID    string   `json:"question_id"`
		Prompt        string   `json:"prompt"`
		Options       []string `json:"options"`
		CorrectOption int      `json:"correct_option"`
	} `json:"questions"`
}

// POST /exam/init
//
// Creates the session and stores correct options server-side; the response
// never echoes them. Re-initializing the same (user, date, part) returns the
// existing session instead of duplicating it.
func InitExamHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authedUser(w, r)
		if !ok {
			return
		}
		var req initExamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		questions := make([]session.Question, len(req.Questions))
		for i, q := range req.Questions {
			questions[i] = session.Question{
				QuestionID:    q.QuestionID,
				Prompt:        q.Prompt,
				Options:       q.Options,
				CorrectOption: q.CorrectOption,
			}
		}
		sess, created, err := svc.Init(r.Context(), userID, req.ExamDate, req.Oposicion, questions)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, struct {
			Success    bool   `json:"success"`
			TestID     string `json:"testId"`
			SavedCount int    `json:"savedCount"`
			Resumed    bool   `json:"resumed"`
		}{true, sess.ID, sess.TotalQuestions, !created})
	}
}

// GET /exam/resume?testId=...
//
// Returns the question list without correct options plus the saved-answer
// map; only the owning user may call it.
func ResumeExamHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authedUser(w, r)
		if !ok {
			return
		}
		snap, err := svc.Resume(r.Context(), r.URL.Query().Get("testId"), userID)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success      bool                     `json:"success"`
			Questions    []session.ClientQuestion `json:"questions"`
			SavedAnswers map[int]string           `json:"savedAnswers"`
			Metadata     session.Session          `json:"metadata"`
		}{true, snap.Questions, snap.SavedAnswers, snap.Session})
	}
}

type answerRequest struct {
	TestID        string `json:"test_id"`
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"` // a|b|c|d
}

// POST /exam/answer — per-index upsert; correctness is not revealed here.
func AnswerHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authedUser(w, r)
		if !ok {
			return
		}
		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := svc.Answer(r.Context(), req.TestID, userID, req.QuestionIndex, req.Answer); err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
		}{true})
	}
}

type terminalRequest struct {
	TestID string `json:"test_id"`
}

// POST /exam/complete — terminal once every question has a saved answer.
func CompleteExamHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authedUser(w, r)
		if !ok {
			return
		}
		var req terminalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		sess, err := svc.Complete(r.Context(), req.TestID, userID)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success  bool    `json:"success"`
			ScorePct float64 `json:"scorePct"`
		}{true, *sess.ScorePct})
	}
}

// POST /exam/abandon — the explicit way out of a partial session.
func AbandonExamHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authedUser(w, r)
		if !ok {
			return
		}
		var req terminalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := svc.Abandon(r.Context(), req.TestID, userID); err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
		}{true})
	}
}

// GET /exam/suggest?positionType=&topic=&count=&difficulty=
//
// Runs the adaptive selector over the topic's catalog pool for the calling
// user. Correct options are stripped; the client feeds the picks into
// /exam/init through the server-side flow.
func SuggestQuestionsHandler(picker *catalog.Picker) http.HandlerFunc {
	type suggested struct {
		QuestionID string   `json:"question_id"`
		Prompt     string   `json:"prompt"`
		Options    []string `json:"options"`
		Difficulty string   `json:"difficulty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authedUser(w, r)
		if !ok {
			return
		}
		q := r.URL.Query()
		if q.Get("positionType") == "" {
			writeError(w, http.StatusBadRequest, "positionType is required")
			return
		}
		topic, err := strconv.Atoi(q.Get("topic"))
		if err != nil || topic <= 0 {
			writeError(w, http.StatusBadRequest, "topic must be a positive integer")
			return
		}
		count, err := intParam(q.Get("count"), 10)
		if err != nil || count == 0 || count > 100 {
			writeError(w, http.StatusBadRequest, "count must be between 1 and 100")
			return
		}
		picks, err := picker.Pick(r.Context(), userID, q.Get("positionType"), topic, count, q.Get("difficulty"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		out := make([]suggested, len(picks))
		for i, p := range picks {
			out[i] = suggested{QuestionID: p.ID, Prompt: p.Prompt, Options: p.Options, Difficulty: p.Difficulty}
		}
		writeJSON(w, http.StatusOK, struct {
			Success   bool        `json:"success"`
			Questions []suggested `json:"questions"`
		}{true, out})
	}
}
