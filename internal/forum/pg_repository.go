package forum

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func targetTable(kind TargetKind) (table string, notFound error) {
	if kind == TargetPost {
		return "forum_posts", ErrPostNotFound
	}
	return "forum_comments", ErrCommentNotFound
}

func (r *PgRepository) GetVotable(ctx context.Context, kind TargetKind, id uuid.UUID) (*Votable, error) {
	table, notFound := targetTable(kind)

	v := Votable{Kind: kind, ID: id}
	err := r.pool.QueryRow(ctx, `
		SELECT author_id, upvote_count, downvote_count
		FROM `+table+`
		WHERE id = $1
	`, id).Scan(&v.AuthorID, &v.Upvotes, &v.Downvotes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, err
	}

	return &v, nil
}

func (r *PgRepository) GetVote(ctx context.Context, kind TargetKind, targetID, userID uuid.UUID) (*Vote, error) {
	var v Vote
	err := r.pool.QueryRow(ctx, `
		SELECT id, target_type, target_id, user_id, vote_type, created_at
		FROM forum_votes
		WHERE target_type = $1 AND target_id = $2 AND user_id = $3
	`, kind, targetID, userID).Scan(&v.ID, &v.TargetKind, &v.TargetID, &v.UserID, &v.Type, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVoteNotFound
		}
		return nil, err
	}

	return &v, nil
}

// ApplyVote runs the whole transition in one transaction so a crash can
// never leave the counters inconsistent with the vote rows.
func (r *PgRepository) ApplyVote(ctx context.Context, target *Votable, voterID uuid.UUID, voteType VoteType, ch Change) (VoteCounts, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return VoteCounts{}, err
	}
	defer tx.Rollback(ctx)

	switch ch.Op {
	case OpAdd:
		_, err = tx.Exec(ctx, `
			INSERT INTO forum_votes (id, target_type, target_id, user_id, vote_type, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
		`, uuid.New(), target.Kind, target.ID, voterID, voteType)
	case OpRemove:
		_, err = tx.Exec(ctx, `
			DELETE FROM forum_votes
			WHERE target_type = $1 AND target_id = $2 AND user_id = $3
		`, target.Kind, target.ID, voterID)
	case OpSwitch:
		_, err = tx.Exec(ctx, `
			UPDATE forum_votes
			SET vote_type = $4, created_at = now()
			WHERE target_type = $1 AND target_id = $2 AND user_id = $3
		`, target.Kind, target.ID, voterID, voteType)
	}
	if err != nil {
		return VoteCounts{}, fmt.Errorf("apply vote row: %w", err)
	}

	table, notFound := targetTable(target.Kind)

	// Relative updates so concurrent votes from different users both
	// land; voting is not a content edit and touches neither updated_at
	// nor a post's last_activity_at.
	var counts VoteCounts
	err = tx.QueryRow(ctx, `
		UPDATE `+table+`
		SET upvote_count = upvote_count + $2,
		    downvote_count = downvote_count + $3
		WHERE id = $1
		RETURNING upvote_count, downvote_count
	`, target.ID, ch.Up, ch.Down).Scan(&counts.Upvotes, &counts.Downvotes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VoteCounts{}, notFound
		}
		return VoteCounts{}, fmt.Errorf("update vote counters: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO forum_user_activity (user_id, upvotes_given, downvotes_given, last_vote_at)
		VALUES ($1, GREATEST($2, 0), GREATEST($3, 0), now())
		ON CONFLICT (user_id) DO UPDATE
		SET upvotes_given = forum_user_activity.upvotes_given + $2,
		    downvotes_given = forum_user_activity.downvotes_given + $3,
		    last_vote_at = now()
	`, voterID, ch.Up, ch.Down)
	if err != nil {
		return VoteCounts{}, fmt.Errorf("update voter activity: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO forum_user_activity (user_id, upvotes_received, downvotes_received, reputation_score)
		VALUES ($1, GREATEST($2, 0), GREATEST($3, 0), $4)
		ON CONFLICT (user_id) DO UPDATE
		SET upvotes_received = forum_user_activity.upvotes_received + $2,
		    downvotes_received = forum_user_activity.downvotes_received + $3,
		    reputation_score = forum_user_activity.reputation_score + $4
	`, target.AuthorID, ch.Up, ch.Down, ch.Reputation)
	if err != nil {
		return VoteCounts{}, fmt.Errorf("update author activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return VoteCounts{}, err
	}

	return counts, nil
}

func (r *PgRepository) GetUserActivity(ctx context.Context, userID uuid.UUID) (*UserActivity, error) {
	a := UserActivity{UserID: userID}
	err := r.pool.QueryRow(ctx, `
		SELECT upvotes_given, downvotes_given, upvotes_received, downvotes_received,
		       reputation_score, posts_created, comments_created, last_post_at, last_vote_at
		FROM forum_user_activity
		WHERE user_id = $1
	`, userID).Scan(
		&a.UpvotesGiven, &a.DownvotesGiven, &a.UpvotesReceived, &a.DownvotesReceived,
		&a.ReputationScore, &a.PostsCreated, &a.CommentsCreated, &a.LastPostAt, &a.LastVoteAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Activity records are created lazily on the first action;
			// a user without one simply has an empty ledger.
			return &a, nil
		}
		return nil, err
	}

	return &a, nil
}

func (r *PgRepository) RecountVotes(ctx context.Context) (int, error) {
	repaired := 0

	for _, kind := range []TargetKind{TargetPost, TargetComment} {
		table, _ := targetTable(kind)

		tag, err := r.pool.Exec(ctx, `
			UPDATE `+table+` t
			SET upvote_count = c.ups,
			    downvote_count = c.downs
			FROM (
				SELECT t2.id,
				       COUNT(v.id) FILTER (WHERE v.vote_type = 'upvote') AS ups,
				       COUNT(v.id) FILTER (WHERE v.vote_type = 'downvote') AS downs
				FROM `+table+` t2
				LEFT JOIN forum_votes v
				  ON v.target_type = $1 AND v.target_id = t2.id
				GROUP BY t2.id
			) c
			WHERE c.id = t.id
			  AND (t.upvote_count <> c.ups OR t.downvote_count <> c.downs)
		`, kind)
		if err != nil {
			return repaired, fmt.Errorf("recount %s votes: %w", kind, err)
		}
		repaired += int(tag.RowsAffected())
	}

	return repaired, nil
}
