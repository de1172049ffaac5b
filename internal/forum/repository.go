package forum

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrVoteNotFound    = errors.New("vote not found")
)

// Repository contains all DB interactions needed by the vote ledger.
type Repository interface {
	// GetVotable loads a post or comment as the ledger's common view.
	GetVotable(ctx context.Context, kind TargetKind, id uuid.UUID) (*Votable, error)

	// GetVote returns the voter's current vote on a target, or
	// ErrVoteNotFound.
	GetVote(ctx context.Context, kind TargetKind, targetID, userID uuid.UUID) (*Vote, error)

	// ApplyVote executes one transition atomically: the vote row
	// mutation, the target's counters, the voter's given counters, and
	// the author's received counters plus reputation, all in one
	// transaction. Returns the target's counters after the change.
	ApplyVote(ctx context.Context, target *Votable, voterID uuid.UUID, voteType VoteType, ch Change) (VoteCounts, error)

	GetUserActivity(ctx context.Context, userID uuid.UUID) (*UserActivity, error)

	// RecountVotes rewrites any denormalized counter that drifted from
	// the vote rows and reports how many targets were repaired.
	RecountVotes(ctx context.Context) (int, error)
}
