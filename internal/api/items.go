package api

import (
	"net/http"

	"github.com/mohdshuhaib/community-voice-53/internal/engine"
	"github.com/mohdshuhaib/community-voice-53/internal/model"
)

// ItemsHandler handles the item board endpoints.
type ItemsHandler struct {
	Engine *engine.Engine
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := itemFilter(r.URL.Query(), h.Engine.Location())
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.Engine.QueryItems(r.Context(), caller(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req engine.Submission
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Engine.SubmitItem(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Similar handles GET /api/items/similar.
func (h *ItemsHandler) Similar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := limit(q, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.Engine.FindSimilar(r.Context(), caller(r), q.Get("title"), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Engine.GetItem(r.Context(), caller(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PATCH /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ItemUpdate
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Engine.UpdateItem(r.Context(), caller(r), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Upvote handles POST /api/items/{id}/upvote.
func (h *ItemsHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	result, err := h.Engine.ToggleUpvote(r.Context(), caller(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}
