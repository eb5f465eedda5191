package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/quizforge/quizforge/internal/quiz"
)

type countingSource struct {
	calls     int
	questions []quiz.Question
}

func (s *countingSource) ListQuestions(_ context.Context, quizID string, includeAnswers bool) ([]quiz.Question, error) {
	if !includeAnswers {
		panic("cache must always load with answer keys")
	}
	s.calls++
	return s.questions, nil
}

func testClient(t *testing.T) *goredis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
}

func sampleQuestions() []quiz.Question {
	return []quiz.Question{
		{ID: "q1", QuizID: "quiz-1", QuestionText: "first", CorrectOption: 2, Marks: 1},
		{ID: "q2", QuizID: "quiz-1", QuestionText: "second", CorrectOption: 4, Marks: 2},
	}
}

func TestQuestionsCachedAfterFirstLoad(t *testing.T) {
	src := &countingSource{questions: sampleQuestions()}
	c := NewQuestionCache(testClient(t), src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		qs, err := c.Questions(ctx, "quiz-1")
		if err != nil {
			t.Fatal(err)
		}
		if len(qs) != 2 || qs[0].CorrectOption != 2 {
			t.Fatalf("round %d: questions = %+v", i, qs)
		}
	}
	if src.calls != 1 {
		t.Fatalf("source calls = %d, want 1", src.calls)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	src := &countingSource{questions: sampleQuestions()}
	c := NewQuestionCache(testClient(t), src, time.Minute)
	ctx := context.Background()

	if _, err := c.Questions(ctx, "quiz-1"); err != nil {
		t.Fatal(err)
	}
	c.Invalidate(ctx, "quiz-1")
	if _, err := c.Questions(ctx, "quiz-1"); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Fatalf("source calls = %d, want 2 after invalidation", src.calls)
	}
}

func TestEmptySetNotCached(t *testing.T) {
	src := &countingSource{} // quiz exists but has no questions yet
	c := NewQuestionCache(testClient(t), src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		qs, err := c.Questions(ctx, "quiz-1")
		if err != nil {
			t.Fatal(err)
		}
		if len(qs) != 0 {
			t.Fatalf("questions = %+v", qs)
		}
	}
	if src.calls != 2 {
		t.Fatalf("source calls = %d, want 2 (empty sets bypass the cache)", src.calls)
	}
}

func TestNilClientPassesThrough(t *testing.T) {
	src := &countingSource{questions: sampleQuestions()}
	c := NewQuestionCache(nil, src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.Questions(ctx, "quiz-1"); err != nil {
			t.Fatal(err)
		}
	}
	if src.calls != 2 {
		t.Fatalf("source calls = %d, want 2 without redis", src.calls)
	}
	c.Invalidate(ctx, "quiz-1") // must not panic
}
