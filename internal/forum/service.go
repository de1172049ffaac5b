package forum

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CastVote applies toggle vote semantics for one (target, voter) pair:
// a first vote lands, the same vote cast again removes it, the opposite
// vote switches it in place. Posts and comments share this path; only
// the target lookup differs.
func (s *Service) CastVote(ctx context.Context, kind TargetKind, targetID, voterID uuid.UUID, voteType VoteType) (VoteCounts, error) {
	if !voteType.Valid() {
		return VoteCounts{}, ErrInvalidVoteType
	}

	target, err := s.repo.GetVotable(ctx, kind, targetID)
	if err != nil {
		return VoteCounts{}, err
	}

	var prev *VoteType
	existing, err := s.repo.GetVote(ctx, kind, targetID, voterID)
	if err != nil && !errors.Is(err, ErrVoteNotFound) {
		return VoteCounts{}, fmt.Errorf("load existing vote: %w", err)
	}
	if existing != nil {
		prev = &existing.Type
	}

	ch, err := Transition(prev, voteType)
	if err != nil {
		return VoteCounts{}, err
	}

	return s.repo.ApplyVote(ctx, target, voterID, voteType, ch)
}

func (s *Service) Activity(ctx context.Context, userID uuid.UUID) (*UserActivity, error) {
	return s.repo.GetUserActivity(ctx, userID)
}

// Reconcile repairs denormalized vote counters that drifted from the
// vote rows, returning how many posts and comments were touched.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	return s.repo.RecountVotes(ctx)
}
