package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/db"
	"github.com/quizforge/quizforge/internal/eventlog"
	"github.com/quizforge/quizforge/internal/infra/redis"
	"github.com/quizforge/quizforge/internal/quiz"
)

type testAPI struct {
	handler http.Handler
	db      *sql.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	store := quiz.NewSQLStore(dbh)
	cache := redis.NewQuestionCache(nil, store, time.Minute)
	h := NewRouter(Deps{
		DB:        dbh,
		Store:     store,
		Questions: cache,
		Cache:     cache,
		Auth:      auth.NewService("test-secret"),
		Events:    eventlog.NewRepo(dbh),
	})
	return &testAPI{handler: h, db: dbh}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// signup registers an account, optionally promotes it, and returns a token.
func (a *testAPI) signup(t *testing.T, name, email, role string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/register", "",
		map[string]string{"name": name, "email": email, "password": "hunter22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: %d %s", email, rec.Code, rec.Body)
	}
	if role != "user" {
		if _, err := a.db.Exec(`UPDATE users SET role=$1 WHERE email=$2`, role, email); err != nil {
			t.Fatal(err)
		}
	}
	rec = a.do(t, http.MethodPost, "/api/login", "",
		map[string]string{"email": email, "password": "hunter22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	return out.Token
}

func (a *testAPI) createQuiz(t *testing.T, token, name string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/quizzes", token,
		map[string]any{"quiz_name": name, "time_limit": 10, "difficulty": "Medium"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create quiz: %d %s", rec.Code, rec.Body)
	}
	var out struct {
		QuizID string `json:"quiz_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	return out.QuizID
}

func (a *testAPI) addQuestion(t *testing.T, token, quizID string, correct int) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/questions", token, map[string]any{
		"quiz_id": quizID, "question_text": "pick one",
		"option1": "a", "option2": "b", "option3": "c", "option4": "d",
		"correct_option": correct,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add question: %d %s", rec.Code, rec.Body)
	}
}

func TestQuizCreationRequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup(t, "Admin", "admin@example.com", "admin")
	user := api.signup(t, "User", "user@example.com", "user")

	rec := api.do(t, http.MethodPost, "/api/quizzes", user,
		map[string]any{"quiz_name": "Nope", "time_limit": 5})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user create status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Admin access required") {
		t.Fatalf("body = %s", rec.Body)
	}

	rec = api.do(t, http.MethodPost, "/api/quizzes", "",
		map[string]any{"quiz_name": "Nope", "time_limit": 5})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create status = %d, want 401", rec.Code)
	}

	api.createQuiz(t, admin, "Allowed")
}

func TestQuizValidation(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup(t, "Admin", "admin@example.com", "admin")

	for _, body := range []map[string]any{
		{"time_limit": 10},                                          // no name
		{"quiz_name": "X", "time_limit": 0},                         // bad limit
		{"quiz_name": "X", "time_limit": 500},                       // over the cap
		{"quiz_name": "X", "time_limit": 10, "difficulty": "Brutal"}, // unknown tier
	} {
		rec := api.do(t, http.MethodPost, "/api/quizzes", admin, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestQuestionValidation(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup(t, "Admin", "admin@example.com", "admin")
	quizID := api.createQuiz(t, admin, "Quiz")

	rec := api.do(t, http.MethodPost, "/api/questions", admin, map[string]any{
		"quiz_id": quizID, "question_text": "q",
		"option1": "a", "option2": "b", "option3": "c", "option4": "d",
		"correct_option": 5,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Correct option must be between 1 and 4") {
		t.Fatalf("body = %s", rec.Body)
	}

	rec = api.do(t, http.MethodPost, "/api/questions", admin, map[string]any{
		"quiz_id": quizID, "correct_option": 2,
	})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "All fields are required") {
		t.Fatalf("missing fields: %d %s", rec.Code, rec.Body)
	}
}

func TestAnswerKeyHiddenFromNonAdmins(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup(t, "Admin", "admin@example.com", "admin")
	quizID := api.createQuiz(t, admin, "Quiz")
	api.addQuestion(t, admin, quizID, 3)

	decode := func(rec *httptest.ResponseRecorder) []map[string]any {
		t.Helper()
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body)
		}
		var out []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatal(err)
		}
		return out
	}

	// Anonymous listing carries no answer key.
	qs := decode(api.do(t, http.MethodGet, "/api/quizzes/"+quizID+"/questions", "", nil))
	if _, leaked := qs[0]["correct_option"]; leaked {
		t.Fatalf("answer key leaked to anonymous caller: %v", qs[0])
	}

	// Standard user likewise.
	user := api.signup(t, "User", "user@example.com", "user")
	qs = decode(api.do(t, http.MethodGet, "/api/quizzes/"+quizID+"/questions", user, nil))
	if _, leaked := qs[0]["correct_option"]; leaked {
		t.Fatalf("answer key leaked to user: %v", qs[0])
	}

	// Admin gets the key.
	qs = decode(api.do(t, http.MethodGet, "/api/quizzes/"+quizID+"/questions", admin, nil))
	if got, _ := qs[0]["correct_option"].(float64); got != 3 {
		t.Fatalf("admin correct_option = %v, want 3", qs[0]["correct_option"])
	}
}

func TestSubmitQuizFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup(t, "Admin", "admin@example.com", "admin")
	user := api.signup(t, "User", "user@example.com", "user")
	quizID := api.createQuiz(t, admin, "Scored Quiz")
	api.addQuestion(t, admin, quizID, 2)
	api.addQuestion(t, admin, quizID, 2)

	// Fetch as the user to learn the question ids.
	rec := api.do(t, http.MethodGet, "/api/quizzes/"+quizID+"/questions", user, nil)
	var questions []quiz.Question
	if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
		t.Fatal(err)
	}

	answers := map[string]any{}
	for i, q := range questions {
		if i == 0 {
			answers[q.ID] = "2" // string-typed options must still grade
		} else {
			answers[q.ID] = 1
		}
	}
	rec = api.do(t, http.MethodPost, "/api/submit-quiz", user,
		map[string]any{"quiz_id": quizID, "answers": answers})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", rec.Code, rec.Body)
	}
	var resp submitQuizResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalQuestions != 2 || len(resp.Results) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	correct := 0
	for _, qr := range resp.Results {
		if qr.IsCorrect {
			correct++
		}
	}
	if correct != 1 || resp.Score != 1 {
		t.Fatalf("score = %d (correct=%d), want 1", resp.Score, correct)
	}

	// The result is persisted and scoped to the submitting user.
	rec = api.do(t, http.MethodGet, "/api/results", user, nil)
	var own []quiz.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &own); err != nil {
		t.Fatal(err)
	}
	if len(own) != 1 || own[0].Score != 1 || own[0].QuizName != "Scored Quiz" {
		t.Fatalf("own results = %+v", own)
	}
}

func TestSubmitEmptyQuizRejected(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup(t, "Admin", "admin@example.com", "admin")
	user := api.signup(t, "User", "user@example.com", "user")
	quizID := api.createQuiz(t, admin, "Hollow Quiz")

	rec := api.do(t, http.MethodPost, "/api/submit-quiz", user,
		map[string]any{"quiz_id": quizID, "answers": map[string]any{}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "This quiz has no questions yet") {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestResultsScopedByRole(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup(t, "Admin", "admin@example.com", "admin")
	u1 := api.signup(t, "One", "one@example.com", "user")
	u2 := api.signup(t, "Two", "two@example.com", "user")
	quizID := api.createQuiz(t, admin, "Shared Quiz")
	api.addQuestion(t, admin, quizID, 1)

	rec := api.do(t, http.MethodGet, "/api/quizzes/"+quizID+"/questions", u1, nil)
	var questions []quiz.Question
	if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
		t.Fatal(err)
	}
	for _, tok := range []string{u1, u2} {
		rec = api.do(t, http.MethodPost, "/api/submit-quiz", tok,
			map[string]any{"quiz_id": quizID, "answers": map[string]any{questions[0].ID: 1}})
		if rec.Code != http.StatusOK {
			t.Fatalf("submit: %d %s", rec.Code, rec.Body)
		}
	}

	var results []quiz.Result
	rec = api.do(t, http.MethodGet, "/api/results", u1, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("user sees %d results, want 1", len(results))
	}

	rec = api.do(t, http.MethodGet, "/api/results", admin, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("admin sees %d results, want 2", len(results))
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup(t, "Admin", "admin@example.com", "admin")
	user := api.signup(t, "Player", "player@example.com", "user")
	quizID := api.createQuiz(t, admin, "Ranked Quiz")
	api.addQuestion(t, admin, quizID, 1)

	rec := api.do(t, http.MethodGet, "/api/quizzes/"+quizID+"/questions", user, nil)
	var questions []quiz.Question
	if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
		t.Fatal(err)
	}
	rec = api.do(t, http.MethodPost, "/api/submit-quiz", user,
		map[string]any{"quiz_id": quizID, "answers": map[string]any{questions[0].ID: 1}})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body)
	}

	rec = api.do(t, http.MethodGet, "/api/leaderboard", user, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard status = %d: %s", rec.Code, rec.Body)
	}
	var entries []struct {
		Name    string  `json:"name"`
		Average float64 `json:"average_score"`
		Rank    int     `json:"rank"`
		Tier    string  `json:"tier"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "Player" || entries[0].Average != 100 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Rank != 1 || entries[0].Tier != "gold" {
		t.Fatalf("rank/tier = %+v", entries[0])
	}
}

func TestDeleteQuizAndQuestions(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup(t, "Admin", "admin@example.com", "admin")
	user := api.signup(t, "User", "user@example.com", "user")
	quizID := api.createQuiz(t, admin, "Doomed")
	api.addQuestion(t, admin, quizID, 1)

	rec := api.do(t, http.MethodDelete, "/api/quizzes/"+quizID, user, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user delete status = %d, want 403", rec.Code)
	}

	rec = api.do(t, http.MethodDelete, "/api/quizzes/"+quizID, admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rec.Code, rec.Body)
	}
	rec = api.do(t, http.MethodDelete, "/api/quizzes/"+quizID, admin, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
	rec = api.do(t, http.MethodGet, "/api/quizzes/"+quizID+"/questions", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("questions for deleted quiz status = %d, want 404", rec.Code)
	}
}

func TestExportResultsCSV(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup(t, "Admin", "admin@example.com", "admin")
	user := api.signup(t, "Exported", "exp@example.com", "user")
	quizID := api.createQuiz(t, admin, "CSV Quiz")
	api.addQuestion(t, admin, quizID, 1)

	rec := api.do(t, http.MethodGet, "/api/quizzes/"+quizID+"/questions", user, nil)
	var questions []quiz.Question
	if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
		t.Fatal(err)
	}
	rec = api.do(t, http.MethodPost, "/api/submit-quiz", user,
		map[string]any{"quiz_id": quizID, "answers": map[string]any{questions[0].ID: 1}})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body)
	}

	// Export is admin-only.
	rec = api.do(t, http.MethodGet, "/api/results/export", user, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user export status = %d, want 403", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/api/results/export", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "quiz_results.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Name,Quiz,Score,Total Questions,Percentage,Date") {
		t.Fatalf("csv header missing: %s", body)
	}
	if !strings.Contains(body, "Exported,CSV Quiz,1,1,100%") {
		t.Fatalf("csv row missing: %s", body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)
	if rec := api.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz = %d", rec.Code)
	}
}
