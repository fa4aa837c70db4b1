package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gundriai/merovote-app/internal/domain"
)

type MockFeed struct {
	mock.Mock
}

func (m *MockFeed) Feed(ctx context.Context, category domain.PollCategory) (*domain.FeedSnapshot, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedSnapshot), args.Error(1)
}

func (m *MockFeed) Poll(ctx context.Context, pollID string) (*domain.Poll, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Poll), args.Error(1)
}

func (m *MockFeed) Stats(ctx context.Context) (*domain.PollStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PollStats), args.Error(1)
}

type MockAdmin struct {
	mock.Mock
}

func (m *MockAdmin) TogglePollVisibility(ctx context.Context, pollID string) error {
	args := m.Called(ctx, pollID)
	return args.Error(0)
}

func (m *MockAdmin) DeletePoll(ctx context.Context, pollID string) error {
	args := m.Called(ctx, pollID)
	return args.Error(0)
}

func setupRouter(feed *MockFeed, admin *MockAdmin) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(feed, admin, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestGetStats(t *testing.T) {
	feed := new(MockFeed)
	admin := new(MockAdmin)
	r := setupRouter(feed, admin)

	feed.On("Stats", mock.Anything).Return(&domain.PollStats{
		TotalPolls:    5,
		ActivePolls:   4,
		TotalVotes:    120,
		TotalComments: 33,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string           `json:"status"`
		Stats  domain.PollStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 5, body.Stats.TotalPolls)
	assert.Equal(t, 4, body.Stats.ActivePolls)
}

func TestGetPolls(t *testing.T) {
	feed := new(MockFeed)
	admin := new(MockAdmin)
	r := setupRouter(feed, admin)

	feed.On("Feed", mock.Anything, domain.PollCategory{ID: domain.CategoryAll}).
		Return(&domain.FeedSnapshot{
			Polls:      []domain.Poll{{ID: "p1"}, {ID: "p2", IsHidden: true}},
			TotalPolls: 2,
		}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/polls", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string        `json:"status"`
		Polls  []domain.Poll `json:"polls"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	// The dashboard sees hidden polls too.
	assert.Len(t, body.Polls, 2)
}

func TestGetPollsByCategory(t *testing.T) {
	feed := new(MockFeed)
	admin := new(MockAdmin)
	r := setupRouter(feed, admin)

	feed.On("Feed", mock.Anything, domain.PollCategory{ID: "politics", Label: "Politics"}).
		Return(&domain.FeedSnapshot{Polls: []domain.Poll{{ID: "p1"}}}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/polls?category=politics&label=Politics", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	feed.AssertExpectations(t)
}

func TestGetPollNotFound(t *testing.T) {
	feed := new(MockFeed)
	admin := new(MockAdmin)
	r := setupRouter(feed, admin)

	feed.On("Poll", mock.Anything, "missing").
		Return(nil, fmt.Errorf("%w: poll missing", domain.ErrNotFound))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/polls/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleVisibility(t *testing.T) {
	feed := new(MockFeed)
	admin := new(MockAdmin)
	r := setupRouter(feed, admin)

	admin.On("TogglePollVisibility", mock.Anything, "p1").Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/dashboard/polls/p1/toggle-visibility", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	admin.AssertExpectations(t)
}

func TestToggleVisibilityRequiresAuth(t *testing.T) {
	feed := new(MockFeed)
	admin := new(MockAdmin)
	r := setupRouter(feed, admin)

	admin.On("TogglePollVisibility", mock.Anything, "p1").
		Return(fmt.Errorf("%w", domain.ErrAuthenticationRequired))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/dashboard/polls/p1/toggle-visibility", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeletePoll(t *testing.T) {
	feed := new(MockFeed)
	admin := new(MockAdmin)
	r := setupRouter(feed, admin)

	admin.On("DeletePoll", mock.Anything, "p1").Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/dashboard/polls/p1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	admin.AssertExpectations(t)
}

func TestDeletePollUpstreamDown(t *testing.T) {
	feed := new(MockFeed)
	admin := new(MockAdmin)
	r := setupRouter(feed, admin)

	admin.On("DeletePoll", mock.Anything, "p1").
		Return(fmt.Errorf("%w: connection refused", domain.ErrNetwork))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/dashboard/polls/p1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHealthz(t *testing.T) {
	feed := new(MockFeed)
	admin := new(MockAdmin)
	r := setupRouter(feed, admin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
