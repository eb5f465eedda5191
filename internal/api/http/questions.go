package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/rbac"
)

// ListQuestionsHandler serves a quiz's questions. The correct option is only
// included for administrators; learners must never receive the answer key.
func ListQuestionsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "id")
		qs, err := store.ListQuestions(r.Context(), quizID, rbac.IsAdmin(r.Context()))
		if err != nil {
			if errors.Is(err, quiz.ErrQuizNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

type createQuestionReq struct {
	QuizID        string `json:"quiz_id" validate:"required"`
	QuestionText  string `json:"question_text" validate:"required"`
	Option1       string `json:"option1" validate:"required"`
	Option2       string `json:"option2" validate:"required"`
	Option3       string `json:"option3" validate:"required"`
	Option4       string `json:"option4" validate:"required"`
	CorrectOption int    `json:"correct_option" validate:"required,min=1,max=4"`
	Marks         int    `json:"marks" validate:"omitempty,min=1"`
}

func CreateQuestionHandler(store quiz.Store, cache Invalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createQuestionReq
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := validate.Struct(req); err != nil {
			if req.CorrectOption < 1 || req.CorrectOption > 4 {
				writeError(w, http.StatusBadRequest, "Correct option must be between 1 and 4")
				return
			}
			writeError(w, http.StatusBadRequest, "All fields are required")
			return
		}

		_, err := store.AddQuestion(r.Context(), quiz.Question{
			QuizID:        req.QuizID,
			QuestionText:  req.QuestionText,
			Option1:       req.Option1,
			Option2:       req.Option2,
			Option3:       req.Option3,
			Option4:       req.Option4,
			CorrectOption: req.CorrectOption,
			Marks:         req.Marks,
		})
		if err != nil {
			switch {
			case errors.Is(err, quiz.ErrQuizNotFound):
				writeError(w, http.StatusNotFound, err.Error())
			case errors.Is(err, quiz.ErrTooManyQuestions):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		cache.Invalidate(r.Context(), req.QuizID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Question added successfully"})
	}
}

func DeleteQuestionHandler(store quiz.Store, cache Invalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		quizID, err := store.DeleteQuestion(r.Context(), id)
		if err != nil {
			if errors.Is(err, quiz.ErrQuestionNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		cache.Invalidate(r.Context(), quizID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Question deleted successfully"})
	}
}
