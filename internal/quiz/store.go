package quiz

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence surface the HTTP layer talks to.
type Store interface {
	CreateQuiz(ctx context.Context, q Quiz) (Quiz, error)
	ListQuizzes(ctx context.Context) ([]Quiz, error)
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error

	AddQuestion(ctx context.Context, q Question) (Question, error)
	DeleteQuestion(ctx context.Context, id string) (quizID string, err error)
	ListQuestions(ctx context.Context, quizID string, includeAnswers bool) ([]Question, error)

	CreateResult(ctx context.Context, r Result) (Result, error)
	// ListResults returns all results when userID is empty (admin view),
	// otherwise only the given user's. Newest first either way.
	ListResults(ctx context.Context, userID string) ([]Result, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Difficulty == "" {
		q.Difficulty = "Easy"
	}
	q.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO quizzes
		(id,quiz_name,category,difficulty,time_limit,total_marks,passing_score,description,
		 randomize_order,show_results,allow_retake,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		q.ID, q.QuizName, q.Category, q.Difficulty, q.TimeLimit, q.TotalMarks, q.PassingScore,
		q.Description, q.RandomizeOrder, q.ShowResults, q.AllowRetake, q.CreatedBy, q.CreatedAt)
	if err != nil {
		return Quiz{}, err
	}
	return q, nil
}

const quizCols = `id,quiz_name,category,difficulty,time_limit,total_marks,passing_score,description,
	randomize_order,show_results,allow_retake,created_by,created_at`

func scanQuiz(row interface{ Scan(...any) error }) (Quiz, error) {
	var q Quiz
	err := row.Scan(&q.ID, &q.QuizName, &q.Category, &q.Difficulty, &q.TimeLimit, &q.TotalMarks,
		&q.PassingScore, &q.Description, &q.RandomizeOrder, &q.ShowResults, &q.AllowRetake,
		&q.CreatedBy, &q.CreatedAt)
	return q, err
}

func (s *SQLStore) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+quizCols+` FROM quizzes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := scanQuiz(s.db.QueryRowContext(ctx, `SELECT `+quizCols+` FROM quizzes WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, ErrQuizNotFound
	}
	return q, err
}

// DeleteQuiz removes the quiz and its questions. Questions are deleted
// explicitly so behavior does not depend on per-connection FK pragmas.
// Results are intentionally left behind.
func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE quiz_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuizNotFound
	}
	return tx.Commit()
}

func (s *SQLStore) AddQuestion(ctx context.Context, q Question) (Question, error) {
	if _, err := s.GetQuiz(ctx, q.QuizID); err != nil {
		return Question{}, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE quiz_id=$1`, q.QuizID).Scan(&count); err != nil {
		return Question{}, err
	}
	if count >= MaxQuestionsPerQuiz {
		return Question{}, ErrTooManyQuestions
	}

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Marks <= 0 {
		q.Marks = 1
	}
	q.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO questions
		(id,quiz_id,question_text,option1,option2,option3,option4,correct_option,marks,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		q.ID, q.QuizID, q.QuestionText, q.Option1, q.Option2, q.Option3, q.Option4,
		q.CorrectOption, q.Marks, q.CreatedAt)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) (string, error) {
	var quizID string
	err := s.db.QueryRowContext(ctx, `SELECT quiz_id FROM questions WHERE id=$1`, id).Scan(&quizID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrQuestionNotFound
	}
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	return quizID, err
}

func (s *SQLStore) ListQuestions(ctx context.Context, quizID string, includeAnswers bool) ([]Question, error) {
	if _, err := s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id,quiz_id,question_text,option1,option2,option3,option4,correct_option,marks,created_at
		FROM questions WHERE quiz_id=$1 ORDER BY created_at, id`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.QuestionText, &q.Option1, &q.Option2, &q.Option3,
			&q.Option4, &q.CorrectOption, &q.Marks, &q.CreatedAt); err != nil {
			return nil, err
		}
		if !includeAnswers {
			q.CorrectOption = 0
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateResult(ctx context.Context, r Result) (Result, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO results
		(id,user_id,quiz_id,score,total_questions,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		r.ID, r.UserID, r.QuizID, r.Score, r.TotalQuestions, r.CreatedAt)
	if err != nil {
		return Result{}, err
	}
	return r, nil
}

func (s *SQLStore) ListResults(ctx context.Context, userID string) ([]Result, error) {
	// Results carry no FK to quizzes, so deleted quizzes show up as "Unknown Quiz".
	q := `SELECT r.id, r.user_id, r.quiz_id, r.score, r.total_questions, r.created_at,
		COALESCE(u.name, 'Unknown'), COALESCE(z.quiz_name, 'Unknown Quiz')
		FROM results r
		LEFT JOIN users u ON u.id = r.user_id
		LEFT JOIN quizzes z ON z.id = r.quiz_id`
	args := []any{}
	if userID != "" {
		q += ` WHERE r.user_id=$1`
		args = append(args, userID)
	}
	q += ` ORDER BY r.created_at DESC, r.id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.UserID, &r.QuizID, &r.Score, &r.TotalQuestions,
			&r.CreatedAt, &r.Name, &r.QuizName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
