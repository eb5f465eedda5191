package http

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/eventlog"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/rbac"
)

// QuestionProvider serves the full question set (answer keys included) for
// grading, typically through the redis cache.
type QuestionProvider interface {
	Questions(ctx context.Context, quizID string) ([]quiz.Question, error)
}

type submitQuizReq struct {
	QuizID  string         `json:"quiz_id" validate:"required"`
	Answers map[string]any `json:"answers"`
}

type submitQuizResp struct {
	Score          int                   `json:"score"`
	TotalQuestions int                   `json:"total_questions"`
	Results        []quiz.QuestionResult `json:"results"`
}

// SubmitQuizHandler grades a submitted answer map and records the result. This
// is the authoritative scoring path; anything a client computes locally is
// display-only.
func SubmitQuizHandler(questions QuestionProvider, store quiz.Store, events *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitQuizReq
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "quiz_id is required")
			return
		}
		answers, err := quiz.NormalizeAnswers(req.Answers)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		qs, err := questions.Questions(r.Context(), req.QuizID)
		if err != nil {
			if errors.Is(err, quiz.ErrQuizNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(qs) == 0 {
			writeError(w, http.StatusBadRequest, "This quiz has no questions yet")
			return
		}

		score, breakdown := quiz.Score(qs, answers)
		res, err := store.CreateResult(r.Context(), quiz.Result{
			UserID:         auth.SubjectFromContext(r.Context()),
			QuizID:         req.QuizID,
			Score:          score,
			TotalQuestions: len(qs),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		logEvent(r.Context(), events, "ResultCreated", res.ID, map[string]any{
			"user_id": res.UserID, "quiz_id": res.QuizID, "score": score,
		})

		writeJSON(w, http.StatusOK, submitQuizResp{
			Score:          score,
			TotalQuestions: len(qs),
			Results:        breakdown,
		})
	}
}

// ListResultsHandler scopes output by role: administrators see everything,
// standard users only their own rows.
func ListResultsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		if rbac.IsAdmin(r.Context()) {
			userID = ""
		}
		results, err := store.ListResults(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

// ExportResultsHandler streams all results as CSV.
func ExportResultsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := store.ListResults(r.Context(), "")
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="quiz_results.csv"`)
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"Name", "Quiz", "Score", "Total Questions", "Percentage", "Date"})
		for _, res := range results {
			pct := 0
			if res.TotalQuestions > 0 {
				pct = int(float64(res.Score)/float64(res.TotalQuestions)*100 + 0.5)
			}
			_ = cw.Write([]string{
				res.Name,
				res.QuizName,
				strconv.Itoa(res.Score),
				strconv.Itoa(res.TotalQuestions),
				strconv.Itoa(pct) + "%",
				time.Unix(res.CreatedAt, 0).UTC().Format("2006-01-02"),
			})
		}
		cw.Flush()
	}
}
