package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/relist-app/relist/internal/api"
	"github.com/relist-app/relist/internal/bulk"
	"github.com/relist-app/relist/internal/config"
	"github.com/relist-app/relist/internal/drafts"
	"github.com/relist-app/relist/internal/storage"
)

// Handler serves the local review API: upload proxying, batch/job status,
// and draft listing with bulk actions.
type Handler struct {
	cfg        config.Config
	client     *api.Client
	batchStore *storage.BatchStore
	draftStore *drafts.Store
	executor   *bulk.Executor
}

func New(cfg config.Config) *Handler {
	client := api.NewClient(cfg.BaseURL, cfg.SessionCookie)
	draftStore := drafts.NewStore(client)
	return &Handler{
		cfg:        cfg,
		client:     client,
		batchStore: storage.New(),
		draftStore: draftStore,
		executor:   bulk.NewExecutor(client, draftStore, cfg.BulkConcurrency, cfg.BulkRatePerSec),
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) getBatchOrError(w http.ResponseWriter, batchID string) (*storage.BatchRecord, bool) {
	batch, exists := h.batchStore.Get(batchID)
	if !exists {
		h.writeError(w, "Batch not found", http.StatusNotFound)
		return nil, false
	}
	return batch, true
}
