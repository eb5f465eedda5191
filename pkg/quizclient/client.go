// Package quizclient is the programmatic counterpart of the browser UI: a
// transport client for the quiz API plus a session controller that drives one
// timed attempt.
package quizclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// Notifier receives exactly one user-visible message per failed call. The
// transport reports each failure once; callers must not report it again.
type Notifier interface {
	Notify(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// TokenSource supplies the bearer credential, typically read from wherever the
// embedding app keeps its session. An empty string means unauthenticated.
type TokenSource func() string

// APIError is a non-2xx response carrying the service's error message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

type Client struct {
	base     string
	http     *http.Client
	token    TokenSource
	notifier Notifier
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}
func WithNotifier(n Notifier) Option { return func(c *Client) { c.notifier = n } }

func New(base string, opts ...Option) *Client {
	c := &Client{
		base:     strings.TrimSuffix(base, "/"),
		http:     http.DefaultClient,
		token:    func() string { return "" },
		notifier: NotifierFunc(func(msg string) { log.Printf("quizclient: %s", msg) }),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Call performs one JSON request. body and out may be nil. On any failure the
// notifier fires exactly once and the error is returned; success never
// notifies. No retries: the user retries the action, not the transport.
func (c *Client) Call(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.notifier.Notify("request failed: " + err.Error())
		return err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		msg := "Something went wrong"
		var payload struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(res.Body).Decode(&payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		c.notifier.Notify(msg)
		return &APIError{Status: res.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			c.notifier.Notify("invalid response from server")
			return err
		}
	}
	return nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.Call(ctx, http.MethodPost, "/api/register", body, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	err := c.Call(ctx, http.MethodPost, "/api/login", body, &out)
	return out, err
}

func (c *Client) Quizzes(ctx context.Context) ([]Quiz, error) {
	var out []Quiz
	err := c.Call(ctx, http.MethodGet, "/api/quizzes", nil, &out)
	return out, err
}

func (c *Client) Questions(ctx context.Context, quizID string) ([]Question, error) {
	var out []Question
	err := c.Call(ctx, http.MethodGet, "/api/quizzes/"+quizID+"/questions", nil, &out)
	return out, err
}

// SubmitQuiz sends the collected answer map for authoritative grading.
func (c *Client) SubmitQuiz(ctx context.Context, quizID string, answers map[string]int) (SubmitResponse, error) {
	var out SubmitResponse
	body := map[string]any{"quiz_id": quizID, "answers": answers}
	err := c.Call(ctx, http.MethodPost, "/api/submit-quiz", body, &out)
	return out, err
}

func (c *Client) Results(ctx context.Context) ([]Result, error) {
	var out []Result
	err := c.Call(ctx, http.MethodGet, "/api/results", nil, &out)
	return out, err
}
