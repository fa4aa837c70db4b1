package domain

import (
	"time"
)

type PollType string

const (
	PollTypeReaction PollType = "REACTION_BASED"
	PollTypeOneVsOne PollType = "ONE_VS_ONE"
)

// ReactionKind is one of the three comment reaction counters. A single
// reaction increments exactly one of them; counters are never decremented.
type ReactionKind string

const (
	ReactionGajjab  ReactionKind = "gajjab"
	ReactionBekar   ReactionKind = "bekar"
	ReactionFurious ReactionKind = "furious"
)

func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionGajjab, ReactionBekar, ReactionFurious:
		return true
	}
	return false
}

type PollOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Type        string `json:"type,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	VoteCount   int    `json:"voteCount"`
	CandidateID string `json:"candidateId,omitempty"`
}

type Candidate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	VoteCount   int    `json:"voteCount"`
}

// VotedDetails records whether the current user has voted on a poll.
// OptionChosen is set iff AlreadyVoted is true.
type VotedDetails struct {
	AlreadyVoted bool   `json:"alreadyVoted"`
	OptionChosen string `json:"optionChosen,omitempty"`
}

type Comment struct {
	ID           string    `json:"id"`
	PollID       string    `json:"pollId,omitempty"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
	GajjabCount  int       `json:"gajjabCount"`
	BekarCount   int       `json:"bekarCount"`
	FuriousCount int       `json:"furiousCount"`
}

// ReactionCount returns the counter for the given kind.
func (c *Comment) ReactionCount(kind ReactionKind) int {
	switch kind {
	case ReactionGajjab:
		return c.GajjabCount
	case ReactionBekar:
		return c.BekarCount
	case ReactionFurious:
		return c.FuriousCount
	}
	return 0
}

// Poll is the aggregated poll record as served by the backend. It is a
// read-mostly snapshot: the client never mutates vote counts, it submits
// vote intents and refetches authoritative counts.
type Poll struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description,omitempty"`
	Type             PollType      `json:"type"`
	Category         string        `json:"category"`
	StartDate        time.Time     `json:"startDate"`
	EndDate          time.Time     `json:"endDate"`
	IsHidden         bool          `json:"isHidden"`
	IsCommentLimited bool          `json:"isCommentLimited,omitempty"`
	TotalVotes       int           `json:"totalVotes"`
	TotalComments    int           `json:"totalComments"`
	CreatedAt        time.Time     `json:"createdAt"`
	MediaURL         string        `json:"mediaUrl,omitempty"`
	PollOptions      []PollOption  `json:"pollOptions,omitempty"`
	Candidates       []Candidate   `json:"candidates,omitempty"`
	Comments         []Comment     `json:"comments,omitempty"`
	VotedDetails     *VotedDetails `json:"votedDetails,omitempty"`
}

// Expired reports whether the poll's voting window has closed.
func (p *Poll) Expired(now time.Time) bool {
	return now.After(p.EndDate)
}

// AlreadyVoted reports the locally known voted state for the current user.
func (p *Poll) AlreadyVoted() bool {
	return p.VotedDetails != nil && p.VotedDetails.AlreadyVoted
}

// OptionByVoteType resolves a reaction-style choice (a semantic vote-type
// token such as "gajjab") to the matching poll option.
func (p *Poll) OptionByVoteType(voteType string) (*PollOption, bool) {
	for i := range p.PollOptions {
		if p.PollOptions[i].Type == voteType {
			return &p.PollOptions[i], true
		}
	}
	return nil, false
}

// OptionByCandidate resolves a comparison-style choice (a candidate ID) to
// the poll option linked to that candidate.
func (p *Poll) OptionByCandidate(candidateID string) (*PollOption, bool) {
	for i := range p.PollOptions {
		if p.PollOptions[i].CandidateID == candidateID {
			return &p.PollOptions[i], true
		}
	}
	return nil, false
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Photo string `json:"photo,omitempty"`
	Role  string `json:"role,omitempty"`
}

// FeedSnapshot is the response of the aggregated polls endpoint: the poll
// list enriched with computed totals.
type FeedSnapshot struct {
	Polls         []Poll `json:"polls"`
	TotalPolls    int    `json:"totalPolls"`
	TotalVotes    int    `json:"totalVotes"`
	TotalComments int    `json:"totalComments"`
}

type PollStats struct {
	TotalPolls    int `json:"totalPolls"`
	ActivePolls   int `json:"activePolls"`
	TotalVotes    int `json:"totalVotes"`
	TotalComments int `json:"totalComments"`
}

type PollCategory struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Order int    `json:"order"`
}

// CategoryAll is the sentinel category that passes the full feed through
// unfiltered.
const CategoryAll = "ALL"

type VoteSubmission struct {
	PollID   string `json:"pollId"`
	OptionID string `json:"optionId"`
	UserID   string `json:"userId,omitempty"`
}

type CommentSubmission struct {
	PollID  string `json:"pollId"`
	Content string `json:"content"`
	Author  string `json:"author,omitempty"`
}

type ReactionSubmission struct {
	PollID       string       `json:"pollId"`
	CommentID    string       `json:"commentId"`
	ReactionType ReactionKind `json:"reactionType"`
}

const (
	// CommentWordLimit applies to contexts that opt into limited comments.
	CommentWordLimit = 20

	DefaultAuthor = "Anonymous"
)
