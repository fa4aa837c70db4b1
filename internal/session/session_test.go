package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gundriai/merovote-app/internal/domain"
	"github.com/gundriai/merovote-app/internal/events"
	"github.com/gundriai/merovote-app/internal/logging"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Polls(ctx context.Context) (*domain.FeedSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedSnapshot), args.Error(1)
}

func (m *MockAPI) PollByID(ctx context.Context, id string) (*domain.Poll, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Poll), args.Error(1)
}

func (m *MockAPI) SubmitVote(ctx context.Context, sub domain.VoteSubmission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockAPI) PostComment(ctx context.Context, sub domain.CommentSubmission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockAPI) ReactToComment(ctx context.Context, sub domain.ReactionSubmission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Poll), args.Error(1)
}

func (m *MockCache) SetPoll(ctx context.Context, poll *domain.Poll) error {
	args := m.Called(ctx, poll)
	return args.Error(0)
}

func (m *MockCache) InvalidatePoll(ctx context.Context, pollID string) error {
	args := m.Called(ctx, pollID)
	return args.Error(0)
}

func (m *MockCache) GetFeed(ctx context.Context) (*domain.FeedSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedSnapshot), args.Error(1)
}

func (m *MockCache) SetFeed(ctx context.Context, snapshot *domain.FeedSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockCache) InvalidateFeed(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishVoteCast(ctx context.Context, event events.VoteCastEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishCommentPosted(ctx context.Context, event events.CommentPostedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishCommentReacted(ctx context.Context, event events.CommentReactedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestSession(api *MockAPI, cache *MockCache, publisher *MockPublisher) *Session {
	s := New(api, cache, publisher, func() string { return "user-1" }, logging.NewNop())
	s.now = func() time.Time { return testNow }
	return s
}

func reactionPoll() *domain.Poll {
	return &domain.Poll{
		ID:       "poll-1",
		Title:    "How is the new budget?",
		Type:     domain.PollTypeReaction,
		Category: "Politics",
		EndDate:  testNow.Add(24 * time.Hour),
		PollOptions: []domain.PollOption{
			{ID: "opt-1", Label: "Gajjab", Type: "gajjab", VoteCount: 10},
			{ID: "opt-2", Label: "Bekar", Type: "bekar", VoteCount: 5},
		},
	}
}

func comparisonPoll() *domain.Poll {
	return &domain.Poll{
		ID:      "poll-2",
		Title:   "Mayor race",
		Type:    domain.PollTypeOneVsOne,
		EndDate: testNow.Add(24 * time.Hour),
		Candidates: []domain.Candidate{
			{ID: "cand-1", Name: "A", VoteCount: 7},
			{ID: "cand-2", Name: "B", VoteCount: 3},
		},
		PollOptions: []domain.PollOption{
			{ID: "opt-a", CandidateID: "cand-1", VoteCount: 7},
			{ID: "opt-b", CandidateID: "cand-2", VoteCount: 3},
		},
	}
}

func expectInvalidate(cache *MockCache, pollID string) {
	cache.On("InvalidatePoll", mock.Anything, pollID).Return(nil)
	cache.On("InvalidateFeed", mock.Anything).Return(nil)
}

func TestCastVoteSuccess(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)
	poll := reactionPoll()

	api.On("SubmitVote", mock.Anything, domain.VoteSubmission{
		PollID:   "poll-1",
		OptionID: "opt-1",
		UserID:   "user-1",
	}).Return(nil).Once()
	expectInvalidate(cache, "poll-1")
	publisher.On("PublishVoteCast", mock.Anything, mock.MatchedBy(func(e events.VoteCastEvent) bool {
		return e.PollID == "poll-1" && e.OptionID == "opt-1" && e.UserID == "user-1"
	})).Return(nil).Once()

	result := s.CastVote(context.Background(), poll, Choice{VoteType: "gajjab"})

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "opt-1", result.OptionID)
	require.NotNil(t, poll.VotedDetails)
	assert.True(t, poll.VotedDetails.AlreadyVoted)
	assert.Equal(t, "opt-1", poll.VotedDetails.OptionChosen)
	api.AssertExpectations(t)
	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCastVoteSecondAttemptStaysLocal(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)
	poll := reactionPoll()

	api.On("SubmitVote", mock.Anything, mock.Anything).Return(nil).Once()
	expectInvalidate(cache, "poll-1")
	publisher.On("PublishVoteCast", mock.Anything, mock.Anything).Return(nil).Once()

	first := s.CastVote(context.Background(), poll, Choice{VoteType: "gajjab"})
	require.Equal(t, OutcomeSuccess, first.Outcome)

	second := s.CastVote(context.Background(), poll, Choice{VoteType: "bekar"})
	assert.Equal(t, OutcomeAlreadyVoted, second.Outcome)
	assert.ErrorIs(t, second.Err(), domain.ErrAlreadyVoted)

	// The voted state survives through a fresh snapshot of the same poll.
	fresh := reactionPoll()
	third := s.CastVote(context.Background(), fresh, Choice{VoteType: "bekar"})
	assert.Equal(t, OutcomeAlreadyVoted, third.Outcome)

	api.AssertNumberOfCalls(t, "SubmitVote", 1)
}

func TestCastVoteAlreadyVotedServerState(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	poll := reactionPoll()
	poll.VotedDetails = &domain.VotedDetails{AlreadyVoted: true, OptionChosen: "opt-2"}

	result := s.CastVote(context.Background(), poll, Choice{VoteType: "gajjab"})

	assert.Equal(t, OutcomeAlreadyVoted, result.Outcome)
	api.AssertNotCalled(t, "SubmitVote", mock.Anything, mock.Anything)
}

func TestCastVoteExpired(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	poll := reactionPoll()
	poll.EndDate = testNow.Add(-time.Minute)

	result := s.CastVote(context.Background(), poll, Choice{VoteType: "gajjab"})

	assert.Equal(t, OutcomePollExpired, result.Outcome)
	api.AssertNotCalled(t, "SubmitVote", mock.Anything, mock.Anything)
}

func TestCastVoteOptionNotFound(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	tests := []struct {
		name   string
		poll   *domain.Poll
		choice Choice
	}{
		{"unknown vote type", reactionPoll(), Choice{VoteType: "meh"}},
		{"unknown candidate", comparisonPoll(), Choice{CandidateID: "cand-9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.CastVote(context.Background(), tt.poll, tt.choice)
			assert.Equal(t, OutcomeOptionMissing, result.Outcome)
		})
	}
	api.AssertNotCalled(t, "SubmitVote", mock.Anything, mock.Anything)
}

func TestCastVoteByCandidate(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)
	poll := comparisonPoll()

	api.On("SubmitVote", mock.Anything, domain.VoteSubmission{
		PollID:   "poll-2",
		OptionID: "opt-b",
		UserID:   "user-1",
	}).Return(nil).Once()
	expectInvalidate(cache, "poll-2")
	publisher.On("PublishVoteCast", mock.Anything, mock.Anything).Return(nil).Once()

	result := s.CastVote(context.Background(), poll, Choice{CandidateID: "cand-2"})

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "opt-b", result.OptionID)
	api.AssertExpectations(t)
}

func TestCastVoteErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantOutcome Outcome
		wantReason  domain.RejectionReason
	}{
		{
			name:        "authentication required",
			err:         fmt.Errorf("%w: session expired", domain.ErrAuthenticationRequired),
			wantOutcome: OutcomeAuthRequired,
		},
		{
			name:        "server says already voted",
			err:         domain.MapRejection("User has already voted on this poll"),
			wantOutcome: OutcomeRejected,
			wantReason:  domain.ReasonAlreadyVoted,
		},
		{
			name:        "server says not active",
			err:         domain.MapRejection("Poll is not active"),
			wantOutcome: OutcomeRejected,
			wantReason:  domain.ReasonPollNotActive,
		},
		{
			name:        "unrecognized rejection",
			err:         domain.MapRejection("quota reached"),
			wantOutcome: OutcomeRejected,
			wantReason:  domain.ReasonGeneric,
		},
		{
			name:        "transport failure",
			err:         fmt.Errorf("%w: connection refused", domain.ErrNetwork),
			wantOutcome: OutcomeNetwork,
		},
		{
			name:        "unexpected error",
			err:         errors.New("boom"),
			wantOutcome: OutcomeNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			cache := new(MockCache)
			publisher := new(MockPublisher)
			s := newTestSession(api, cache, publisher)
			poll := reactionPoll()

			api.On("SubmitVote", mock.Anything, mock.Anything).Return(tt.err).Once()

			result := s.CastVote(context.Background(), poll, Choice{VoteType: "gajjab"})

			assert.Equal(t, tt.wantOutcome, result.Outcome)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, result.Reason)
			}
			// Failed votes leave the local voted state untouched.
			assert.Nil(t, poll.VotedDetails)
			cache.AssertNotCalled(t, "InvalidatePoll", mock.Anything, mock.Anything)
			publisher.AssertNotCalled(t, "PublishVoteCast", mock.Anything, mock.Anything)
		})
	}
}

func TestCastVoteInFlightGate(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)
	poll := reactionPoll()

	release := make(chan struct{})
	started := make(chan struct{})
	api.On("SubmitVote", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(fmt.Errorf("%w: timeout", domain.ErrNetwork)).Once()

	done := make(chan VoteResult, 1)
	go func() {
		done <- s.CastVote(context.Background(), poll, Choice{VoteType: "gajjab"})
	}()

	<-started
	concurrent := s.CastVote(context.Background(), reactionPoll(), Choice{VoteType: "gajjab"})
	assert.Equal(t, OutcomeInFlight, concurrent.Outcome)

	close(release)
	first := <-done
	assert.Equal(t, OutcomeNetwork, first.Outcome)
	api.AssertNumberOfCalls(t, "SubmitVote", 1)
}

func TestFeedFetchesOnCacheMiss(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	snapshot := &domain.FeedSnapshot{
		Polls: []domain.Poll{
			{ID: "p1", Category: "Politics / Local"},
			{ID: "p2", Category: "Sports"},
			{ID: "p3", Category: ""},
		},
		TotalPolls: 3,
		TotalVotes: 42,
	}
	cache.On("GetFeed", mock.Anything).Return(nil, nil).Once()
	api.On("Polls", mock.Anything).Return(snapshot, nil).Once()
	cache.On("SetFeed", mock.Anything, snapshot).Return(nil).Once()

	feed, err := s.Feed(context.Background(), domain.PollCategory{ID: "politics", Label: "Politics"})

	require.NoError(t, err)
	require.Len(t, feed.Polls, 1)
	assert.Equal(t, "p1", feed.Polls[0].ID)
	assert.Equal(t, 3, feed.TotalPolls)
	assert.Equal(t, 42, feed.TotalVotes)
	api.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestFeedServedFromCache(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	snapshot := &domain.FeedSnapshot{Polls: []domain.Poll{{ID: "p1", Category: "Sports"}}}
	cache.On("GetFeed", mock.Anything).Return(snapshot, nil).Once()

	feed, err := s.Feed(context.Background(), domain.PollCategory{ID: domain.CategoryAll})

	require.NoError(t, err)
	assert.Len(t, feed.Polls, 1)
	api.AssertNotCalled(t, "Polls", mock.Anything)
}

func TestFeedOverlaysLocalVotedState(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)
	poll := reactionPoll()

	api.On("SubmitVote", mock.Anything, mock.Anything).Return(nil).Once()
	expectInvalidate(cache, "poll-1")
	publisher.On("PublishVoteCast", mock.Anything, mock.Anything).Return(nil).Once()
	require.Equal(t, OutcomeSuccess, s.CastVote(context.Background(), poll, Choice{VoteType: "gajjab"}).Outcome)

	// A later refresh without server voted details still shows the vote.
	snapshot := &domain.FeedSnapshot{Polls: []domain.Poll{*reactionPoll()}}
	cache.On("GetFeed", mock.Anything).Return(snapshot, nil).Once()

	feed, err := s.Feed(context.Background(), domain.PollCategory{ID: domain.CategoryAll})

	require.NoError(t, err)
	require.NotNil(t, feed.Polls[0].VotedDetails)
	assert.True(t, feed.Polls[0].VotedDetails.AlreadyVoted)
	assert.Equal(t, "opt-1", feed.Polls[0].VotedDetails.OptionChosen)
	// The cached snapshot itself stays clean.
	assert.Nil(t, snapshot.Polls[0].VotedDetails)
}

func TestPollFetchesOnCacheMiss(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)
	poll := reactionPoll()

	cache.On("GetPoll", mock.Anything, "poll-1").Return(nil, nil).Once()
	api.On("PollByID", mock.Anything, "poll-1").Return(poll, nil).Once()
	cache.On("SetPoll", mock.Anything, poll).Return(nil).Once()

	got, err := s.Poll(context.Background(), "poll-1")

	require.NoError(t, err)
	assert.Equal(t, "poll-1", got.ID)
	api.AssertExpectations(t)
}

func TestPollOverlayLeavesCachedSnapshotClean(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	api.On("SubmitVote", mock.Anything, mock.Anything).Return(nil).Once()
	expectInvalidate(cache, "poll-1")
	publisher.On("PublishVoteCast", mock.Anything, mock.Anything).Return(nil).Once()
	require.Equal(t, OutcomeSuccess, s.CastVote(context.Background(), reactionPoll(), Choice{VoteType: "gajjab"}).Outcome)

	// A later cache hit for a clean snapshot gets the overlay on a copy;
	// the instance the cache holds is never written to.
	cached := reactionPoll()
	cache.On("GetPoll", mock.Anything, "poll-1").Return(cached, nil).Once()

	got, err := s.Poll(context.Background(), "poll-1")

	require.NoError(t, err)
	require.NotNil(t, got.VotedDetails)
	assert.True(t, got.VotedDetails.AlreadyVoted)
	assert.NotSame(t, cached, got)
	assert.Nil(t, cached.VotedDetails)
}

func TestPostComment(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	poll := reactionPoll()
	cache.On("GetPoll", mock.Anything, "poll-1").Return(poll, nil)
	api.On("PostComment", mock.Anything, domain.CommentSubmission{
		PollID:  "poll-1",
		Content: "good move",
		Author:  "Anonymous",
	}).Return(nil).Once()
	expectInvalidate(cache, "poll-1")
	publisher.On("PublishCommentPosted", mock.Anything, mock.MatchedBy(func(e events.CommentPostedEvent) bool {
		return e.PollID == "poll-1" && e.Author == "Anonymous"
	})).Return(nil).Once()

	err := s.PostComment(context.Background(), "poll-1", "good move", "")

	require.NoError(t, err)
	api.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestPostCommentWordLimit(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	poll := reactionPoll()
	poll.IsCommentLimited = true
	cache.On("GetPoll", mock.Anything, "poll-1").Return(poll, nil)

	atLimit := strings.Repeat("word ", domain.CommentWordLimit)
	overLimit := atLimit + "extra"

	api.On("PostComment", mock.Anything, mock.Anything).Return(nil).Once()
	expectInvalidate(cache, "poll-1")
	publisher.On("PublishCommentPosted", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, s.PostComment(context.Background(), "poll-1", atLimit, "Sita"))

	err := s.PostComment(context.Background(), "poll-1", overLimit, "Sita")
	assert.ErrorIs(t, err, domain.ErrWordLimitExceeded)
	api.AssertNumberOfCalls(t, "PostComment", 1)
}

func TestPostCommentEmptyContent(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	cache.On("GetPoll", mock.Anything, "poll-1").Return(reactionPoll(), nil)

	err := s.PostComment(context.Background(), "poll-1", "   ", "Sita")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	api.AssertNotCalled(t, "PostComment", mock.Anything, mock.Anything)
}

func TestReact(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	api.On("ReactToComment", mock.Anything, domain.ReactionSubmission{
		PollID:       "poll-1",
		CommentID:    "comment-1",
		ReactionType: domain.ReactionGajjab,
	}).Return(nil).Once()
	expectInvalidate(cache, "poll-1")
	publisher.On("PublishCommentReacted", mock.Anything, mock.MatchedBy(func(e events.CommentReactedEvent) bool {
		return e.CommentID == "comment-1" && e.ReactionType == domain.ReactionGajjab
	})).Return(nil).Once()

	err := s.React(context.Background(), "poll-1", "comment-1", domain.ReactionGajjab)

	require.NoError(t, err)
	api.AssertExpectations(t)
	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestReactInvalidKind(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	err := s.React(context.Background(), "poll-1", "comment-1", domain.ReactionKind("love"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	api.AssertNotCalled(t, "ReactToComment", mock.Anything, mock.Anything)
}

func TestReactAuthRequired(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	api.On("ReactToComment", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w", domain.ErrAuthenticationRequired)).Once()

	err := s.React(context.Background(), "poll-1", "comment-1", domain.ReactionBekar)

	assert.ErrorIs(t, err, domain.ErrAuthenticationRequired)
	cache.AssertNotCalled(t, "InvalidatePoll", mock.Anything, mock.Anything)
}

func TestStats(t *testing.T) {
	api := new(MockAPI)
	cache := new(MockCache)
	publisher := new(MockPublisher)
	s := newTestSession(api, cache, publisher)

	snapshot := &domain.FeedSnapshot{
		Polls: []domain.Poll{
			{ID: "p1"},
			{ID: "p2", IsHidden: true},
			{ID: "p3"},
		},
		TotalPolls:    3,
		TotalVotes:    100,
		TotalComments: 12,
	}
	cache.On("GetFeed", mock.Anything).Return(snapshot, nil).Once()

	stats, err := s.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPolls)
	assert.Equal(t, 2, stats.ActivePolls)
	assert.Equal(t, 100, stats.TotalVotes)
	assert.Equal(t, 12, stats.TotalComments)
}
