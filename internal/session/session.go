package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gundriai/merovote-app/internal/domain"
	"github.com/gundriai/merovote-app/internal/events"
	"github.com/gundriai/merovote-app/internal/logging"
	"github.com/gundriai/merovote-app/internal/querycache"
)

// API is the slice of the remote poll API the session consumes.
type API interface {
	Polls(ctx context.Context) (*domain.FeedSnapshot, error)
	PollByID(ctx context.Context, id string) (*domain.Poll, error)
	SubmitVote(ctx context.Context, sub domain.VoteSubmission) error
	PostComment(ctx context.Context, sub domain.CommentSubmission) error
	ReactToComment(ctx context.Context, sub domain.ReactionSubmission) error
}

// Session is the single source of truth for poll state on this device. It
// serves snapshots through the query cache, applies the locally cached
// optimistic voted state, and notifies the publisher after every successful
// mutation. The server remains authoritative: mutations invalidate cached
// snapshots instead of patching them.
type Session struct {
	api       API
	cache     querycache.Cache
	publisher events.Publisher
	logger    *logging.Logger

	// userID yields the current user's identifier, or "" when anonymous.
	userID func() string
	now    func() time.Time

	mu       sync.Mutex
	voted    map[string]domain.VotedDetails
	inFlight map[string]bool
}

func New(api API, cache querycache.Cache, publisher events.Publisher, userID func() string, logger *logging.Logger) *Session {
	if userID == nil {
		userID = func() string { return "" }
	}
	return &Session{
		api:       api,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		userID:    userID,
		now:       time.Now,
		voted:     make(map[string]domain.VotedDetails),
		inFlight:  make(map[string]bool),
	}
}

// overlayVoted applies the local optimistic voted state to a snapshot. The
// server's own voted details win once a refresh carries them.
func (s *Session) overlayVoted(poll *domain.Poll) {
	if poll.AlreadyVoted() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if details, ok := s.voted[poll.ID]; ok {
		copied := details
		poll.VotedDetails = &copied
	}
}

// Feed returns the poll feed for the selected category, served from the
// query cache when fresh. Filtering is local and pure; the ALL category
// passes the fetched list through unchanged.
func (s *Session) Feed(ctx context.Context, category domain.PollCategory) (*domain.FeedSnapshot, error) {
	snapshot, err := s.cache.GetFeed(ctx)
	if err != nil {
		s.logger.Warn("feed cache read failed, fetching from server", zap.Error(err))
	}
	if snapshot == nil {
		snapshot, err = s.api.Polls(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetFeed(ctx, snapshot); err != nil {
			s.logger.Warn("failed to cache feed snapshot", zap.Error(err))
		}
	}

	// Copy before overlaying so cached snapshots stay untouched.
	polls := make([]domain.Poll, len(snapshot.Polls))
	copy(polls, snapshot.Polls)
	polls = domain.FilterByCategory(polls, category)
	for i := range polls {
		s.overlayVoted(&polls[i])
	}

	return &domain.FeedSnapshot{
		Polls:         polls,
		TotalPolls:    snapshot.TotalPolls,
		TotalVotes:    snapshot.TotalVotes,
		TotalComments: snapshot.TotalComments,
	}, nil
}

// Poll returns a single poll snapshot including comments.
func (s *Session) Poll(ctx context.Context, pollID string) (*domain.Poll, error) {
	poll, err := s.cache.GetPoll(ctx, pollID)
	if err != nil {
		s.logger.Warn("poll cache read failed, fetching from server",
			zap.Error(err),
			zap.String("poll_id", pollID),
		)
	}
	if poll == nil {
		poll, err = s.api.PollByID(ctx, pollID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetPoll(ctx, poll); err != nil {
			s.logger.Warn("failed to cache poll snapshot",
				zap.Error(err),
				zap.String("poll_id", poll.ID),
			)
		}
	}
	// Copy before overlaying so the cached snapshot stays untouched.
	copied := *poll
	s.overlayVoted(&copied)
	return &copied, nil
}

// Stats derives the admin dashboard stats from the aggregated feed.
func (s *Session) Stats(ctx context.Context) (*domain.PollStats, error) {
	snapshot, err := s.Feed(ctx, domain.PollCategory{ID: domain.CategoryAll})
	if err != nil {
		return nil, err
	}
	active := 0
	for i := range snapshot.Polls {
		if !snapshot.Polls[i].IsHidden {
			active++
		}
	}
	return &domain.PollStats{
		TotalPolls:    snapshot.TotalPolls,
		ActivePolls:   active,
		TotalVotes:    snapshot.TotalVotes,
		TotalComments: snapshot.TotalComments,
	}, nil
}
