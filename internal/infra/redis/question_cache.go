// Package redis caches per-quiz question sets (answer keys included) in front
// of the SQL store so the submit path does not hit the database on every
// graded attempt.
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/quizforge/quizforge/internal/quiz"
)

// QuestionSource loads the authoritative question set on cache miss.
type QuestionSource interface {
	ListQuestions(ctx context.Context, quizID string, includeAnswers bool) ([]quiz.Question, error)
}

// QuestionCache stores the full question set for a quiz as a JSON value with a
// jittered TTL. A nil client degrades to a pass-through on the source, so
// callers never branch on whether redis is configured.
type QuestionCache struct {
	client *redis.Client
	source QuestionSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, source QuestionSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Questions returns the quiz's questions with answer keys. Grading only; never
// serve this to non-admin callers.
func (c *QuestionCache) Questions(ctx context.Context, quizID string) ([]quiz.Question, error) {
	if c.client == nil {
		return c.source.ListQuestions(ctx, quizID, true)
	}

	key := c.key(quizID)
	if qs, ok := c.fromCache(ctx, key); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if qs, ok := c.fromCache(ctx, key); ok {
			return qs, nil
		}
		qs, err := c.source.ListQuestions(ctx, quizID, true)
		if err != nil {
			return nil, err
		}
		if len(qs) > 0 {
			if buf, err := json.Marshal(qs); err == nil {
				_ = c.client.Set(ctx, key, buf, c.ttlWithJitter()).Err()
			}
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]quiz.Question), nil
}

// Invalidate drops the cached set after a question or quiz mutation.
func (c *QuestionCache) Invalidate(ctx context.Context, quizID string) {
	if c.client == nil {
		return
	}
	_ = c.client.Del(ctx, c.key(quizID)).Err()
}

func (c *QuestionCache) fromCache(ctx context.Context, key string) ([]quiz.Question, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var qs []quiz.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, false
	}
	return qs, true
}

func (c *QuestionCache) key(quizID string) string {
	return "quiz:" + quizID + ":questions"
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
