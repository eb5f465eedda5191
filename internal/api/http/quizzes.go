package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/eventlog"
	"github.com/quizforge/quizforge/internal/quiz"
)

func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.ListQuizzes(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

type createQuizReq struct {
	QuizName       string `json:"quiz_name" validate:"required"`
	Category       string `json:"category"`
	Difficulty     string `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	TimeLimit      int    `json:"time_limit" validate:"required,min=1,max=180"`
	TotalMarks     int    `json:"total_marks" validate:"min=0"`
	PassingScore   int    `json:"passing_score" validate:"min=0"`
	Description    string `json:"description"`
	RandomizeOrder bool   `json:"randomize_order"`
	ShowResults    bool   `json:"show_results"`
	AllowRetake    bool   `json:"allow_retake"`
}

func CreateQuizHandler(store quiz.Store, events *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createQuizReq
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "quiz_name and a time_limit between 1 and 180 minutes are required")
			return
		}

		q, err := store.CreateQuiz(r.Context(), quiz.Quiz{
			QuizName:       req.QuizName,
			Category:       req.Category,
			Difficulty:     req.Difficulty,
			TimeLimit:      req.TimeLimit,
			TotalMarks:     req.TotalMarks,
			PassingScore:   req.PassingScore,
			Description:    req.Description,
			RandomizeOrder: req.RandomizeOrder,
			ShowResults:    req.ShowResults,
			AllowRetake:    req.AllowRetake,
			CreatedBy:      auth.SubjectFromContext(r.Context()),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		logEvent(r.Context(), events, "QuizCreated", q.ID, map[string]any{"quiz_name": q.QuizName, "created_by": q.CreatedBy})
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Quiz created successfully",
			"quiz_id": q.ID,
		})
	}
}

// Invalidator drops cached question sets after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, quizID string)
}

func DeleteQuizHandler(store quiz.Store, events *eventlog.Repo, cache Invalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.DeleteQuiz(r.Context(), id); err != nil {
			if errors.Is(err, quiz.ErrQuizNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		cache.Invalidate(r.Context(), id)
		logEvent(r.Context(), events, "QuizDeleted", id, nil)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz deleted successfully"})
	}
}

// logEvent is best-effort; an audit failure never fails the request.
func logEvent(ctx context.Context, events *eventlog.Repo, typ, key string, data map[string]any) {
	if events == nil {
		return
	}
	buf, _ := json.Marshal(data)
	if err := events.Append(ctx, typ, key, string(buf)); err != nil {
		log.Printf("eventlog append %s/%s: %v", typ, key, err)
	}
}
