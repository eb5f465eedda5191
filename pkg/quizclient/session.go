package quizclient

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Submitter sends the finished answer map for authoritative grading. *Client
// satisfies it; tests plug in fakes.
type Submitter interface {
	SubmitQuiz(ctx context.Context, quizID string, answers map[string]int) (SubmitResponse, error)
}

var (
	// ErrNoQuestions means the quiz cannot be started.
	ErrNoQuestions = errors.New("this quiz has no questions yet")
	// ErrInvalidOption is returned for a selection outside 1-4.
	ErrInvalidOption = errors.New("option must be between 1 and 4")
)

type State int

const (
	StateActive State = iota
	StateCompleted
)

// Session drives one quiz attempt: question pointer, answer cache, flagged
// set and the countdown. It replaces the DOM-coupled controller with a typed
// state machine; rendering reads View() and never touches internals.
//
// A session belongs to a single attempt on a single goroutine (the UI event
// loop); it is not safe for concurrent use.
type Session struct {
	quiz      Quiz
	questions []Question
	submitter Submitter

	idx       int
	answers   map[string]int
	flags     map[string]struct{}
	remaining int
	state     State
	// Set once the countdown has been cancelled; never re-armed, so at most
	// one submission is ever triggered by the timer.
	timerStopped bool
	lastResult   *SubmitResponse
}

// NewSession starts an attempt: pointer at the first question, empty answer
// cache and flag set, countdown primed from the quiz's time limit.
func NewSession(q Quiz, questions []Question, submitter Submitter) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	qs := make([]Question, len(questions))
	copy(qs, questions)
	if q.RandomizeOrder {
		rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
	}
	return &Session{
		quiz:      q,
		questions: qs,
		submitter: submitter,
		answers:   map[string]int{},
		flags:     map[string]struct{}{},
		remaining: q.TimeLimit * 60,
	}, nil
}

func (s *Session) State() State       { return s.state }
func (s *Session) Remaining() int     { return s.remaining }
func (s *Session) Index() int         { return s.idx }
func (s *Session) current() *Question { return &s.questions[s.idx] }

// Select records the chosen option for the current question. The cache is
// written eagerly, so navigation never loses a selection.
func (s *Session) Select(option int) error {
	if s.state == StateCompleted {
		return nil
	}
	if option < 1 || option > 4 {
		return ErrInvalidOption
	}
	s.answers[s.current().ID] = option
	return nil
}

// Navigate moves the question pointer by delta, clamped to the valid range.
// Stepping past either end is a no-op on the index.
func (s *Session) Navigate(delta int) {
	s.JumpTo(s.idx + delta)
}

// JumpTo moves directly to a question, as the number-grid overview does.
func (s *Session) JumpTo(i int) {
	if s.state == StateCompleted {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(s.questions)-1 {
		i = len(s.questions) - 1
	}
	s.idx = i
}

// ToggleFlag marks or unmarks the current question for review. Flags are a
// review aid only; they never affect scoring.
func (s *Session) ToggleFlag() {
	if s.state == StateCompleted {
		return
	}
	id := s.current().ID
	if _, ok := s.flags[id]; ok {
		delete(s.flags, id)
	} else {
		s.flags[id] = struct{}{}
	}
}

func (s *Session) Flagged(questionID string) bool {
	_, ok := s.flags[questionID]
	return ok
}

// Tick advances the countdown by one second. Hitting zero forces a single
// submission regardless of UI state. After completion or once the timer has
// been stopped, Tick is a no-op.
func (s *Session) Tick(ctx context.Context) (*SubmitResponse, error) {
	if s.state == StateCompleted || s.timerStopped {
		return nil, nil
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		return s.Submit(ctx)
	}
	return nil, nil
}

// Submit cancels the countdown, then sends the answer cache for grading.
// Cancelling first makes manual submission and timer expiry idempotent:
// whichever fires first wins and the loser becomes a no-op. On failure the
// session stays active with its answers intact so the caller can retry; the
// countdown is not re-armed.
func (s *Session) Submit(ctx context.Context) (*SubmitResponse, error) {
	if s.state == StateCompleted {
		return s.lastResult, nil
	}
	s.timerStopped = true

	resp, err := s.submitter.SubmitQuiz(ctx, s.quiz.ID, s.answers)
	if err != nil {
		return nil, err
	}
	s.state = StateCompleted
	s.lastResult = &resp
	return &resp, nil
}

// Run drives the countdown on a one-second cadence until the attempt
// completes or ctx is cancelled (the "navigated away" teardown). It returns
// the grading response when the timer forced a submission.
func (s *Session) Run(ctx context.Context) (*SubmitResponse, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.timerStopped = true
			return nil, ctx.Err()
		case <-ticker.C:
			resp, err := s.Tick(ctx)
			if err != nil {
				return nil, err
			}
			if resp != nil || s.state == StateCompleted || s.timerStopped {
				return resp, nil
			}
		}
	}
}

// Marker is one cell of the question-number overview.
type Marker struct {
	Index    int
	Current  bool
	Answered bool
	Flagged  bool
}

// ViewModel is everything a presentation layer needs to render the attempt.
type ViewModel struct {
	QuizName         string
	Index            int
	Total            int
	Question         Question
	Chosen           int // 0 = nothing selected
	Flagged          bool
	RemainingSeconds int
	RemainingClock   string // MM:SS
	Progress         float64
	Markers          []Marker
}

func (s *Session) View() ViewModel {
	cur := *s.current()
	markers := make([]Marker, len(s.questions))
	for i, q := range s.questions {
		_, answered := s.answers[q.ID]
		markers[i] = Marker{
			Index:    i,
			Current:  i == s.idx,
			Answered: answered,
			Flagged:  s.Flagged(q.ID),
		}
	}
	return ViewModel{
		QuizName:         s.quiz.QuizName,
		Index:            s.idx,
		Total:            len(s.questions),
		Question:         cur,
		Chosen:           s.answers[cur.ID],
		Flagged:          s.Flagged(cur.ID),
		RemainingSeconds: s.remaining,
		RemainingClock:   fmt.Sprintf("%02d:%02d", s.remaining/60, s.remaining%60),
		Progress:         float64(s.idx+1) / float64(len(s.questions)) * 100,
		Markers:          markers,
	}
}
