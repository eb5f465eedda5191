package quiz

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Answers maps a question id to the chosen option (1-4). A missing key means
// the question was left unanswered.
type Answers map[string]int

// QuestionResult is the per-question breakdown returned with a graded
// submission. UserAnswer is nil when the question was unanswered.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	QuestionText  string `json:"question_text"`
	UserAnswer    *int   `json:"user_answer"`
	CorrectAnswer int    `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// Score grades an answer map against the quiz's question set. Correctness is
// binary: a question contributes its marks only on an exact option match, so
// the aggregate can never exceed the sum of marks. Pure function, no side
// effects; callers persist or display the outcome themselves.
func Score(questions []Question, answers Answers) (int, []QuestionResult) {
	total := 0
	breakdown := make([]QuestionResult, 0, len(questions))
	for _, q := range questions {
		qr := QuestionResult{
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			CorrectAnswer: q.CorrectOption,
		}
		if chosen, ok := answers[q.ID]; ok {
			c := chosen
			qr.UserAnswer = &c
			if chosen == q.CorrectOption {
				qr.IsCorrect = true
				total += marksOrDefault(q.Marks)
			}
		}
		breakdown = append(breakdown, qr)
	}
	return total, breakdown
}

func marksOrDefault(m int) int {
	if m <= 0 {
		return 1
	}
	return m
}

// NormalizeAnswers coerces a freshly JSON-decoded answer map to integer
// options. Browser clients historically submitted option values as strings,
// which made loose comparison against the stored integer unreliable; the
// coercion happens exactly once here and everything downstream compares ints.
func NormalizeAnswers(raw map[string]any) (Answers, error) {
	out := make(Answers, len(raw))
	for id, v := range raw {
		switch t := v.(type) {
		case float64:
			out[id] = int(t)
		case json.Number:
			n, err := t.Int64()
			if err != nil {
				return nil, fmt.Errorf("answer for question %s: %w", id, err)
			}
			out[id] = int(n)
		case string:
			n, err := strconv.Atoi(t)
			if err != nil {
				return nil, fmt.Errorf("answer for question %s is not a number", id)
			}
			out[id] = n
		case int:
			out[id] = t
		default:
			return nil, fmt.Errorf("answer for question %s has unsupported type", id)
		}
	}
	return out, nil
}
