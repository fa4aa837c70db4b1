package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gundriai/merovote-app/internal/credstore"
	"github.com/gundriai/merovote-app/internal/domain"
	"github.com/gundriai/merovote-app/internal/logging"
	"github.com/gundriai/merovote-app/internal/metrics"
)

// Client talks to the remote poll API. Every request carries a bearer token
// when the credential store holds one; responses are classified into the
// domain error taxonomy so callers never see raw HTTP details.
type Client struct {
	baseURL string
	http    *http.Client
	creds   credstore.Store
	logger  *logging.Logger
}

func NewClient(baseURL string, timeout time.Duration, creds credstore.Store, logger *logging.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		creds:  creds,
		logger: logger,
	}
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	token, err := c.creds.AccessToken()
	if err != nil {
		c.logger.Warn("failed to read access token, sending request unauthenticated",
			zap.Error(err),
			zap.String("operation", op),
		)
	} else if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(op, "transport_error", time.Since(start))
		return fmt.Errorf("%w: %s: %v", domain.ErrNetwork, op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	metrics.RecordAPIRequest(op, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode >= 400 {
		return c.classify(op, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode %s response: %v", domain.ErrNetwork, op, err)
		}
	}
	return nil
}

// classify maps an error response to exactly one domain error. 401 always
// means authentication is required; 404 is not-found; everything else is a
// domain rejection carrying the server's message, substring-matched against
// the known reasons.
func (c *Client) classify(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	message := serverMessage(raw, resp.Status)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrAuthenticationRequired
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, message)
	}

	rej := domain.MapRejection(message)
	c.logger.Debug("request rejected by server",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
		zap.String("reason", string(rej.Reason)),
	)
	return rej
}

func serverMessage(raw []byte, fallback string) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if len(raw) > 0 {
		return string(raw)
	}
	return fallback
}

// Polls fetches the full aggregated feed.
func (c *Client) Polls(ctx context.Context) (*domain.FeedSnapshot, error) {
	var snapshot domain.FeedSnapshot
	if err := c.do(ctx, "get_polls", http.MethodGet, "/api/aggregated-polls", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// PollByID fetches a single aggregated poll including its comments.
func (c *Client) PollByID(ctx context.Context, id string) (*domain.Poll, error) {
	var poll domain.Poll
	path := "/api/aggregated-polls/" + url.PathEscape(id)
	if err := c.do(ctx, "get_poll", http.MethodGet, path, nil, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

// SubmitVote issues one vote intent. A single round trip, no retry.
func (c *Client) SubmitVote(ctx context.Context, sub domain.VoteSubmission) error {
	return c.do(ctx, "submit_vote", http.MethodPost, "/api/votes", sub, nil)
}

// PostComment submits a comment on a poll.
func (c *Client) PostComment(ctx context.Context, sub domain.CommentSubmission) error {
	return c.do(ctx, "post_comment", http.MethodPost, "/api/comments", sub, nil)
}

// ReactToComment submits a single reaction; the server increments exactly
// one counter.
func (c *Client) ReactToComment(ctx context.Context, sub domain.ReactionSubmission) error {
	return c.do(ctx, "react_to_comment", http.MethodPost, "/api/comments/reactions", sub, nil)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	User         domain.User `json:"user"`
}

// Login exchanges credentials for an access token and user record.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the server-side session. Local credentials are cleared
// by the caller regardless of the result.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/api/auth/logout", nil, nil)
}

// TogglePollVisibility flips a poll's hidden flag through the admin API.
func (c *Client) TogglePollVisibility(ctx context.Context, pollID string) error {
	path := "/api/admin/polls/" + url.PathEscape(pollID) + "/toggle-visibility"
	return c.do(ctx, "toggle_poll_visibility", http.MethodPatch, path, nil, nil)
}

// DeletePoll removes a poll through the admin API.
func (c *Client) DeletePoll(ctx context.Context, pollID string) error {
	path := "/api/admin/polls/" + url.PathEscape(pollID)
	return c.do(ctx, "delete_poll", http.MethodDelete, path, nil, nil)
}
