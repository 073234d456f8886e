package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"perch/core/follow"

	"github.com/gorilla/mux"
)

// FollowHandler adds a follow edge from the authenticated user to the user
// in the path. The actor id comes from the session, never the request body.
// POST /user/{id}/follow (guarded by RequireAuth)
func (h *WebHandler) FollowHandler(w http.ResponseWriter, r *http.Request) {
	h.handleFollowOp(w, r, h.follows.Follow)
}

// UnfollowHandler removes the follow edge.
// POST /user/{id}/unfollow (guarded by RequireAuth)
func (h *WebHandler) UnfollowHandler(w http.ResponseWriter, r *http.Request) {
	h.handleFollowOp(w, r, h.follows.Unfollow)
}

func (h *WebHandler) handleFollowOp(w http.ResponseWriter, r *http.Request, op func(context.Context, int64, int64) error) {
	targetID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	actor := ViewContextFrom(r.Context()).User

	err = op(r.Context(), actor.ID, targetID)
	switch {
	case err == nil:
		w.Write([]byte("success"))
	case errors.Is(err, follow.ErrNotFound):
		http.Error(w, "no user", http.StatusNotFound)
	case errors.Is(err, follow.ErrInvalidTarget):
		http.Error(w, "cannot follow yourself", http.StatusBadRequest)
	default:
		serverError(w, "follow operation failed", err)
	}
}
