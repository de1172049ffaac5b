package forum

import "errors"

var ErrInvalidVoteType = errors.New("voteType must be upvote or downvote")

// VoteOp says what happens to the vote row itself.
type VoteOp int

const (
	// OpAdd inserts a new vote row.
	OpAdd VoteOp = iota
	// OpRemove deletes the existing row (same type cast twice).
	OpRemove
	// OpSwitch flips the existing row to the opposite type in place.
	OpSwitch
)

// Change is the full effect of one vote transition. Up and Down apply
// three ways with the same values: to the target's counters, to the
// voter's given counters, and to the author's received counters.
// Reputation applies to the author only.
type Change struct {
	Op         VoteOp
	Up         int
	Down       int
	Reputation int
}

// Transition maps (previous vote state, cast vote) to its Change.
// prev is nil when the user has not voted on the target yet.
//
//	none     + upvote   -> add,    up +1,          rep +1
//	none     + downvote -> add,    down +1,        rep -1
//	upvote   + upvote   -> remove, up -1,          rep -1
//	downvote + downvote -> remove, down -1,        rep +1
//	downvote + upvote   -> switch, up +1, down -1, rep +2
//	upvote   + downvote -> switch, up -1, down +1, rep -2
func Transition(prev *VoteType, next VoteType) (Change, error) {
	if !next.Valid() {
		return Change{}, ErrInvalidVoteType
	}

	sign := func(v VoteType) int {
		if v == Upvote {
			return 1
		}
		return -1
	}

	switch {
	case prev == nil:
		ch := Change{Op: OpAdd, Reputation: sign(next)}
		if next == Upvote {
			ch.Up = 1
		} else {
			ch.Down = 1
		}
		return ch, nil

	case *prev == next:
		ch := Change{Op: OpRemove, Reputation: -sign(next)}
		if next == Upvote {
			ch.Up = -1
		} else {
			ch.Down = -1
		}
		return ch, nil

	default:
		ch := Change{Op: OpSwitch, Reputation: 2 * sign(next)}
		if next == Upvote {
			ch.Up, ch.Down = 1, -1
		} else {
			ch.Up, ch.Down = -1, 1
		}
		return ch, nil
	}
}
