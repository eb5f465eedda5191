package quiz

import "errors"

var (
	// ErrQuizNotFound is returned when the quiz id matches no row.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound is returned when the question id matches no row.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrTooManyQuestions is returned when a quiz already holds MaxQuestionsPerQuiz.
	ErrTooManyQuestions = errors.New("quiz already has the maximum number of questions")
)
