package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gundriai/merovote-app/internal/domain"
	"github.com/gundriai/merovote-app/internal/events"
	"github.com/gundriai/merovote-app/internal/metrics"
)

// Outcome classifies the result of a vote attempt. Every code path through
// CastVote produces exactly one of these.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeAlreadyVoted  Outcome = "already_voted"
	OutcomePollExpired   Outcome = "poll_expired"
	OutcomeOptionMissing Outcome = "option_not_found"
	OutcomeAuthRequired  Outcome = "authentication_required"
	OutcomeRejected      Outcome = "rejected"
	OutcomeInFlight      Outcome = "in_flight"
	OutcomeNetwork       Outcome = "network_error"
)

// Choice selects an option on a poll. Reaction polls are addressed by the
// option's vote type token, comparison polls by candidate id. Exactly one
// field should be set.
type Choice struct {
	VoteType    string
	CandidateID string
}

// VoteResult reports how a vote attempt concluded. Reason and Message are
// populated for server rejections, OptionID for successes.
type VoteResult struct {
	Outcome  Outcome
	Reason   domain.RejectionReason
	Message  string
	OptionID string
}

// Err maps the result back onto the domain error taxonomy, nil on success.
func (r VoteResult) Err() error {
	switch r.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeAlreadyVoted:
		return domain.ErrAlreadyVoted
	case OutcomePollExpired:
		return domain.ErrPollExpired
	case OutcomeOptionMissing:
		return domain.ErrOptionNotFound
	case OutcomeAuthRequired:
		return domain.ErrAuthenticationRequired
	case OutcomeInFlight:
		return domain.ErrVoteInFlight
	case OutcomeRejected:
		return &domain.RejectionError{Reason: r.Reason, Message: r.Message}
	default:
		return domain.ErrNetwork
	}
}

func (s *Session) resolveOption(poll *domain.Poll, choice Choice) (*domain.PollOption, bool) {
	if choice.CandidateID != "" {
		return poll.OptionByCandidate(choice.CandidateID)
	}
	return poll.OptionByVoteType(choice.VoteType)
}

// beginVote reserves the per-poll submission slot. It reports false when a
// submission for the poll is already on the wire.
func (s *Session) beginVote(pollID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[pollID] {
		return false
	}
	s.inFlight[pollID] = true
	return true
}

func (s *Session) endVote(pollID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, pollID)
}

// CastVote submits a vote for the chosen option. Eligibility is checked
// before any network traffic: a poll already voted on or past its end date
// never reaches the server. At most one submission per poll is on the wire
// at a time; the vote itself is a single round trip.
func (s *Session) CastVote(ctx context.Context, poll *domain.Poll, choice Choice) VoteResult {
	result := s.castVote(ctx, poll, choice)
	metrics.RecordVoteOutcome(string(result.Outcome))
	return result
}

func (s *Session) castVote(ctx context.Context, poll *domain.Poll, choice Choice) VoteResult {
	s.overlayVoted(poll)
	if poll.AlreadyVoted() {
		return VoteResult{Outcome: OutcomeAlreadyVoted}
	}
	if poll.Expired(s.now()) {
		return VoteResult{Outcome: OutcomePollExpired}
	}
	option, ok := s.resolveOption(poll, choice)
	if !ok {
		return VoteResult{Outcome: OutcomeOptionMissing}
	}
	if !s.beginVote(poll.ID) {
		return VoteResult{Outcome: OutcomeInFlight}
	}
	defer s.endVote(poll.ID)

	err := s.api.SubmitVote(ctx, domain.VoteSubmission{
		PollID:   poll.ID,
		OptionID: option.ID,
		UserID:   s.userID(),
	})
	if err != nil {
		return s.classifyVoteError(poll.ID, err)
	}

	s.recordVoted(poll, option.ID)
	s.invalidate(ctx, poll.ID)
	if err := s.publisher.PublishVoteCast(ctx, events.VoteCastEvent{
		PollID:   poll.ID,
		OptionID: option.ID,
		UserID:   s.userID(),
		At:       s.now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to publish vote event", zap.Error(err), zap.String("poll_id", poll.ID))
	}
	return VoteResult{Outcome: OutcomeSuccess, OptionID: option.ID}
}

func (s *Session) classifyVoteError(pollID string, err error) VoteResult {
	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired):
		// Expected for anonymous users on restricted polls, not a fault.
		s.logger.Info("vote requires authentication", zap.String("poll_id", pollID))
		return VoteResult{Outcome: OutcomeAuthRequired}
	case errors.Is(err, domain.ErrNetwork):
		s.logger.Error("vote submission failed", err, zap.String("poll_id", pollID))
		return VoteResult{Outcome: OutcomeNetwork, Message: err.Error()}
	}
	var rejection *domain.RejectionError
	if errors.As(err, &rejection) {
		s.logger.Warn("vote rejected by server",
			zap.String("poll_id", pollID),
			zap.String("reason", string(rejection.Reason)),
		)
		return VoteResult{Outcome: OutcomeRejected, Reason: rejection.Reason, Message: rejection.Message}
	}
	s.logger.Error("vote submission failed", err, zap.String("poll_id", pollID))
	return VoteResult{Outcome: OutcomeNetwork, Message: err.Error()}
}

// recordVoted flips the local optimistic voted state so the feed reflects
// the vote before the next server refresh.
func (s *Session) recordVoted(poll *domain.Poll, optionID string) {
	s.mu.Lock()
	s.voted[poll.ID] = domain.VotedDetails{AlreadyVoted: true, OptionChosen: optionID}
	s.mu.Unlock()
	details := domain.VotedDetails{AlreadyVoted: true, OptionChosen: optionID}
	poll.VotedDetails = &details
}

func (s *Session) invalidate(ctx context.Context, pollID string) {
	if err := s.cache.InvalidatePoll(ctx, pollID); err != nil {
		s.logger.Warn("failed to invalidate poll cache", zap.Error(err), zap.String("poll_id", pollID))
	}
	if err := s.cache.InvalidateFeed(ctx); err != nil {
		s.logger.Warn("failed to invalidate feed cache", zap.Error(err))
	}
}

// PostComment validates and submits a comment on a poll. Comments on word
// limited polls are rejected locally past the configured word count. The
// author defaults to Anonymous when blank.
func (s *Session) PostComment(ctx context.Context, pollID, content, author string) error {
	poll, err := s.Poll(ctx, pollID)
	if err != nil {
		return err
	}
	if err := domain.ValidateComment(content, poll.IsCommentLimited); err != nil {
		return err
	}
	if author == "" {
		author = domain.DefaultAuthor
	}

	err = s.api.PostComment(ctx, domain.CommentSubmission{
		PollID:  pollID,
		Content: content,
		Author:  author,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticationRequired) {
			s.logger.Info("comment requires authentication", zap.String("poll_id", pollID))
		} else {
			s.logger.Error("comment submission failed", err, zap.String("poll_id", pollID))
		}
		metrics.RecordCommentOperation("post", "error")
		return err
	}

	s.invalidate(ctx, pollID)
	if err := s.publisher.PublishCommentPosted(ctx, events.CommentPostedEvent{
		PollID: pollID,
		Author: author,
		At:     s.now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to publish comment event", zap.Error(err), zap.String("poll_id", pollID))
	}
	metrics.RecordCommentOperation("post", "success")
	return nil
}

// React submits a reaction on a comment. Counters are never incremented
// locally; the refreshed snapshot after invalidation carries the
// reconciled counts.
func (s *Session) React(ctx context.Context, pollID, commentID string, kind domain.ReactionKind) error {
	if !kind.Valid() {
		return domain.ErrInvalidInput
	}

	err := s.api.ReactToComment(ctx, domain.ReactionSubmission{
		PollID:       pollID,
		CommentID:    commentID,
		ReactionType: kind,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticationRequired) {
			s.logger.Info("reaction requires authentication",
				zap.String("poll_id", pollID),
				zap.String("comment_id", commentID),
			)
		} else {
			s.logger.Error("reaction submission failed", err,
				zap.String("poll_id", pollID),
				zap.String("comment_id", commentID),
			)
		}
		metrics.RecordCommentOperation("react", "error")
		return err
	}

	s.invalidate(ctx, pollID)
	if err := s.publisher.PublishCommentReacted(ctx, events.CommentReactedEvent{
		PollID:       pollID,
		CommentID:    commentID,
		ReactionType: kind,
		At:           s.now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to publish reaction event",
			zap.Error(err),
			zap.String("poll_id", pollID),
			zap.String("comment_id", commentID),
		)
	}
	metrics.RecordCommentOperation("react", "success")
	return nil
}
