package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pawmates/pawmates-api/internal/forum"
)

func voteHandler(svc *forum.Service, kind forum.TargetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		voterID, ok := actorID(w, r)
		if !ok {
			return
		}

		targetID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_target_id", "id must be a valid UUID")
			return
		}

		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		counts, err := svc.CastVote(r.Context(), kind, targetID, voterID, forum.VoteType(req.VoteType))
		if err != nil {
			handleForumError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, VoteResponse{
			UpvoteCount:   counts.Upvotes,
			DownvoteCount: counts.Downvotes,
		})
	}
}

func activityHandler(svc *forum.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "userID must be a valid UUID")
			return
		}

		a, err := svc.Activity(r.Context(), userID)
		if err != nil {
			handleForumError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ActivityResponse{
			UserID:            a.UserID,
			UpvotesGiven:      a.UpvotesGiven,
			DownvotesGiven:    a.DownvotesGiven,
			UpvotesReceived:   a.UpvotesReceived,
			DownvotesReceived: a.DownvotesReceived,
			ReputationScore:   a.ReputationScore,
			PostsCreated:      a.PostsCreated,
			CommentsCreated:   a.CommentsCreated,
			LastPostAt:        a.LastPostAt,
			LastVoteAt:        a.LastVoteAt,
		})
	}
}

func handleForumError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, forum.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "post_not_found", err.Error())
	case errors.Is(err, forum.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, "comment_not_found", err.Error())
	case errors.Is(err, forum.ErrInvalidVoteType):
		writeError(w, http.StatusBadRequest, "invalid_vote_type", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
