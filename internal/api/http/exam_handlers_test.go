package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	auth "github.com/opoprep/opoprep-engine/internal/auth/middleware"
	"github.com/opoprep/opoprep-engine/internal/session"
)

func newSessionService() *session.Service {
	return session.NewService(session.NewInMemoryStore(), nil, 0)
}

func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.WithUserID(r.Context(), userID))
}

func initBody() []byte {
	body := map[string]any{
		"exam_date": "2024-11-16",
		"oposicion": "parte-1",
		"questions": []map[string]any{
			{"question_id": "q1", "prompt": "p1", "options": []string{"a", "b", "c", "d"}, "correct_option": 2},
			{"question_id": "q2", "prompt": "p2", "options": []string{"a", "b", "c", "d"}, "correct_option": 0},
		},
	}
	raw, _ := json.Marshal(body)
	return raw
}

func doInit(t *testing.T, svc *session.Service, userID string) string {
	t.Helper()
	req := asUser(httptest.NewRequest("POST", "/exam/init", bytes.NewReader(initBody())), userID)
	rec := httptest.NewRecorder()
	InitExamHandler(svc)(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("init status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Success bool   `json:"success"`
		TestID  string `json:"testId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || !resp.Success {
		t.Fatalf("init response %s: %v", rec.Body, err)
	}
	return resp.TestID
}

func TestInitThenResumeHidesAnswers(t *testing.T) {
	svc := newSessionService()
	testID := doInit(t, svc, "u1")

	req := asUser(httptest.NewRequest("GET", "/exam/resume?testId="+testID, nil), "u1")
	rec := httptest.NewRecorder()
	ResumeExamHandler(svc)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("resume status = %d, body %s", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "correct") {
		t.Fatalf("resume payload leaks correctness data: %s", rec.Body)
	}
}

func TestInitIdempotentOverHTTP(t *testing.T) {
	svc := newSessionService()
	first := doInit(t, svc, "u1")

	req := asUser(httptest.NewRequest("POST", "/exam/init", bytes.NewReader(initBody())), "u1")
	rec := httptest.NewRecorder()
	InitExamHandler(svc)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("second init status = %d, want 200 resume-style", rec.Code)
	}
	var resp struct {
		TestID  string `json:"testId"`
		Resumed bool   `json:"resumed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TestID != first || !resp.Resumed {
		t.Fatalf("second init = %+v, want existing %s", resp, first)
	}
}

func TestResumeErrorClasses(t *testing.T) {
	svc := newSessionService()
	testID := doInit(t, svc, "u1")

	cases := []struct {
		name   string
		target string
		user   string
		want   int
	}{
		{"malformed id", "/exam/resume?testId=oops", "u1", http.StatusBadRequest},
		{"other user", "/exam/resume?testId=" + testID, "u2", http.StatusForbidden},
		{"missing", "/exam/resume?testId=aeab7e24-67a4-4d1f-9d0c-24a5537e59ff", "u1", http.StatusNotFound},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		ResumeExamHandler(svc)(rec, asUser(httptest.NewRequest("GET", c.target, nil), c.user))
		if rec.Code != c.want {
			t.Errorf("%s: status = %d, want %d", c.name, rec.Code, c.want)
		}
		var env struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil || env.Success || env.Error == "" {
			t.Errorf("%s: body not an error envelope: %s", c.name, rec.Body)
		}
	}
}

func TestAnswerThenCompleteFlow(t *testing.T) {
	svc := newSessionService()
	testID := doInit(t, svc, "u1")

	answer := func(index int, letter string) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(map[string]any{"test_id": testID, "question_index": index, "answer": letter})
		rec := httptest.NewRecorder()
		AnswerHandler(svc)(rec, asUser(httptest.NewRequest("POST", "/exam/answer", bytes.NewReader(raw)), "u1"))
		return rec
	}

	if rec := answer(0, "c"); rec.Code != http.StatusOK {
		t.Fatalf("answer 0: %d %s", rec.Code, rec.Body)
	}

	// complete refuses while question 1 is unanswered
	raw, _ := json.Marshal(map[string]string{"test_id": testID})
	rec := httptest.NewRecorder()
	CompleteExamHandler(svc)(rec, asUser(httptest.NewRequest("POST", "/exam/complete", bytes.NewReader(raw)), "u1"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("premature complete: %d %s", rec.Code, rec.Body)
	}

	if rec := answer(1, "b"); rec.Code != http.StatusOK {
		t.Fatalf("answer 1: %d %s", rec.Code, rec.Body)
	}
	rec = httptest.NewRecorder()
	CompleteExamHandler(svc)(rec, asUser(httptest.NewRequest("POST", "/exam/complete", bytes.NewReader(raw)), "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: %d %s", rec.Code, rec.Body)
	}
	var resp struct {
		ScorePct float64 `json:"scorePct"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// q1 correct (c), q2 wrong (b vs a): 50%
	if resp.ScorePct != 50 {
		t.Errorf("scorePct = %v, want 50", resp.ScorePct)
	}
}

// Requests that never went through the JWT middleware carry no user in the
// context; every session route must answer 401, not 403 or a panic.
func TestExamHandlersRejectAnonymous(t *testing.T) {
	svc := newSessionService()
	cases := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		target  string
	}{
		{"init", InitExamHandler(svc), "POST", "/exam/init"},
		{"resume", ResumeExamHandler(svc), "GET", "/exam/resume?testId=x"},
		{"answer", AnswerHandler(svc), "POST", "/exam/answer"},
		{"complete", CompleteExamHandler(svc), "POST", "/exam/complete"},
		{"abandon", AbandonExamHandler(svc), "POST", "/exam/abandon"},
		{"suggest", SuggestQuestionsHandler(nil), "GET", "/exam/suggest"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		c.handler(rec, httptest.NewRequest(c.method, c.target, strings.NewReader("{}")))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", c.name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"success":false`) {
			t.Errorf("%s: body not an error envelope: %s", c.name, rec.Body)
		}
	}
}
