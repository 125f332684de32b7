package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/relist-app/relist/internal/storage"
	"github.com/relist-app/relist/internal/upload"
)

func (h *Handler) HandleBatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.batchStore.GetAll())
	case "POST":
		h.handleBatchSubmit(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleBatchSubmit reads the multipart upload, validates every file through
// the batch constraints, and forwards the whole thing to the job service as
// one submission.
func (h *Handler) handleBatchSubmit(w http.ResponseWriter, r *http.Request) {
	// Bound the whole request at the batch ceiling plus form overhead.
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		h.writeError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	batch := upload.NewBatch()
	rejected := make([]string, 0)
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			rejected = append(rejected, header.Filename+": "+err.Error())
			continue
		}
		data, err := io.ReadAll(io.LimitReader(file, upload.MaxFileSize+1))
		file.Close()
		if err != nil {
			rejected = append(rejected, header.Filename+": "+err.Error())
			continue
		}
		if err := batch.Add(header.Filename, data); err != nil {
			if errors.Is(err, upload.ErrBatchFull) {
				h.writeError(w, err.Error(), http.StatusBadRequest)
				return
			}
			rejected = append(rejected, err.Error())
		}
	}

	if batch.Len() == 0 {
		h.writeError(w, "All files were rejected: "+strings.Join(rejected, "; "), http.StatusBadRequest)
		return
	}

	jobID, err := batch.Submit(r.Context(), h.client, h.cfg.PhotosPerListing)
	if err != nil {
		h.writeError(w, "Failed to submit batch: "+err.Error(), http.StatusBadGateway)
		return
	}

	record := &storage.BatchRecord{
		ID:        uuid.NewString(),
		JobID:     jobID,
		FileCount: batch.Len(),
		CreatedAt: time.Now(),
	}
	h.batchStore.Set(record.ID, record)

	response := map[string]any{
		"batch_id": record.ID,
		"job_id":   jobID,
		"files":    record.FileCount,
	}
	if len(rejected) > 0 {
		response["rejected"] = rejected
	}

	h.writeJSON(w, response)
}

// HandleBatchDetail reports a tracked batch together with the live status of
// its analysis job.
func (h *Handler) HandleBatchDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	batchID := strings.TrimPrefix(r.URL.Path, "/api/batches/")
	batch, ok := h.getBatchOrError(w, batchID)
	if !ok {
		return
	}

	job, err := h.client.GetJob(r.Context(), batch.JobID)
	if err != nil {
		h.writeError(w, "Failed to fetch job status: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, map[string]any{
		"batch": batch,
		"job":   job,
	})
}
