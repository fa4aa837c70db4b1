package domain

import (
	"errors"
	"strings"
)

var (
	ErrAlreadyVoted           = errors.New("user has already voted on this poll")
	ErrPollExpired            = errors.New("poll has ended")
	ErrOptionNotFound         = errors.New("poll option not found")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrWordLimitExceeded      = errors.New("comment exceeds word limit")
	ErrNetwork                = errors.New("network error")
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("resource not found")
	ErrVoteInFlight           = errors.New("vote submission already in flight")
)

// RejectionReason is a fixed user-facing reason derived from a server
// rejection message.
type RejectionReason string

const (
	ReasonAlreadyVoted  RejectionReason = "already_voted"
	ReasonPollNotActive RejectionReason = "poll_not_active"
	ReasonPollNotFound  RejectionReason = "poll_not_found"
	ReasonGeneric       RejectionReason = "rejected"
)

// RejectionError is a domain rejection reported by the server, carrying the
// mapped reason and the server's literal message.
type RejectionError struct {
	Reason  RejectionReason
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return string(e.Reason) + ": " + e.Message
}

// MapRejection classifies a server rejection message into one of the fixed
// reasons by substring match. Unrecognized messages fall back to the generic
// reason; the mapping is total.
func MapRejection(message string) *RejectionError {
	reason := ReasonGeneric
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "already voted"):
		reason = ReasonAlreadyVoted
	case strings.Contains(lower, "not active"), strings.Contains(lower, "ended"), strings.Contains(lower, "expired"):
		reason = ReasonPollNotActive
	case strings.Contains(lower, "not found"):
		reason = ReasonPollNotFound
	}
	return &RejectionError{Reason: reason, Message: message}
}
