package forum

import (
	"time"

	"github.com/google/uuid"
)

// TargetKind selects which collection a votable lives in.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

func (k TargetKind) Valid() bool {
	return k == TargetPost || k == TargetComment
}

type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

func (v VoteType) Valid() bool {
	return v == Upvote || v == Downvote
}

// Vote is one user's current vote on one votable. At most one vote
// exists per (target, user), enforced by a unique index.
type Vote struct {
	ID         uuid.UUID
	TargetKind TargetKind
	TargetID   uuid.UUID
	UserID     uuid.UUID
	Type       VoteType
	CreatedAt  time.Time
}

// Votable is the common view of a post or comment that the vote ledger
// operates on. Upvotes and Downvotes are denormalized counters that
// must always match the vote rows.
type Votable struct {
	Kind      TargetKind
	ID        uuid.UUID
	AuthorID  uuid.UUID
	Upvotes   int
	Downvotes int
}

type VoteCounts struct {
	Upvotes   int
	Downvotes int
}

// UserActivity is the per-user accumulator behind reputation. The
// reputation score is a running ledger fed by vote transitions, not a
// figure recomputed from scratch.
type UserActivity struct {
	UserID            uuid.UUID
	UpvotesGiven      int
	DownvotesGiven    int
	UpvotesReceived   int
	DownvotesReceived int
	ReputationScore   int
	PostsCreated      int
	CommentsCreated   int
	LastPostAt        *time.Time
	LastVoteAt        *time.Time
}
