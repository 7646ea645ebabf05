package api

import (
	"net/http"

	"github.com/mohdshuhaib/community-voice-53/internal/engine"
)

// UsersHandler serves per-user views. Users themselves are managed by the
// identity provider; {id} is the opaque user id from the token, or "me".
type UsersHandler struct {
	Engine *engine.Engine
}

func userID(r *http.Request) string {
	id := r.PathValue("id")
	if id == "me" {
		return caller(r).UserID
	}
	return id
}

// Items handles GET /api/users/{id}/items.
func (h *UsersHandler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := h.Engine.ListAuthorItems(r.Context(), caller(r), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Upvotes handles GET /api/users/{id}/upvotes.
func (h *UsersHandler) Upvotes(w http.ResponseWriter, r *http.Request) {
	n, err := limit(r.URL.Query(), "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	upvotes, err := h.Engine.UpvoteHistory(r.Context(), caller(r), userID(r), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, upvotes)
}

// Activity handles GET /api/users/{id}/activity.
func (h *UsersHandler) Activity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.Engine.UserActivity(r.Context(), caller(r), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, activity)
}
