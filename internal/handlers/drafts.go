package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/relist-app/relist/internal/api"
	"github.com/relist-app/relist/internal/bulk"
	"github.com/relist-app/relist/internal/drafts"
	"github.com/relist-app/relist/internal/models"
)

// HandleDrafts lists the draft collection with the view filters applied.
// Filters arrive as query parameters and are evaluated client-side over the
// freshly loaded cache; only the status filter reaches the server.
func (h *Handler) HandleDrafts(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := models.DraftStatus(r.URL.Query().Get("status"))
	if err := h.draftStore.Load(r.Context(), status); err != nil {
		h.writeError(w, "Failed to load drafts: "+err.Error(), http.StatusBadGateway)
		return
	}

	spec := filterSpecFromQuery(r)
	h.draftStore.SetFilter(spec)

	h.writeJSON(w, map[string]any{
		"drafts": h.draftStore.View(),
		"total":  len(h.draftStore.Drafts()),
	})
}

// HandleDraftDetail supports publishing and deleting a single draft.
func (h *Handler) HandleDraftDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/drafts/")

	if r.Method == "POST" && strings.HasSuffix(path, "/publish") {
		h.handlePublish(w, r, strings.TrimSuffix(path, "/publish"))
		return
	}

	switch r.Method {
	case "DELETE":
		if err := h.client.DeleteDraft(r.Context(), path); err != nil {
			h.writeError(w, "Failed to delete draft: "+err.Error(), http.StatusBadGateway)
			return
		}
		h.writeJSON(w, map[string]any{"deleted": path})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePublish is the single-item publish path: unlike the bulk path it
// surfaces the classified failure kind and guidance to the caller.
func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request, draftID string) {
	result, err := h.client.PublishDraft(r.Context(), draftID)
	if err != nil {
		var pubErr *api.PublishError
		if errors.As(err, &pubErr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			if encErr := json.NewEncoder(w).Encode(map[string]any{
				"kind":     pubErr.Kind,
				"detail":   pubErr.Detail,
				"guidance": pubErr.Guidance(),
			}); encErr != nil {
				h.writeError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}
		h.writeError(w, "Failed to publish draft: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, result)
}

// HandleBulk applies one action to every id in the request, with per-item
// isolation, and reports the tallies.
func (h *Handler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Action string   `json:"action"`
		IDs    []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.executor.Execute(r.Context(), bulk.Action(request.Action), request.IDs)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, map[string]any{
		"action":    result.Action,
		"succeeded": result.SuccessCount,
		"failed":    result.ErrorCount,
	})
}

func filterSpecFromQuery(r *http.Request) drafts.FilterSpec {
	q := r.URL.Query()
	spec := drafts.FilterSpec{
		Status:   models.DraftStatus(q.Get("status")),
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Sort:     drafts.SortKey(q.Get("sort")),
	}
	if v := q.Get("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			spec.MinPrice = &f
		}
	}
	if v := q.Get("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			spec.MaxPrice = &f
		}
	}
	return spec
}
