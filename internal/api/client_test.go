package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/relist-app/relist/internal/models"
)

func TestSubmitBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/listings/batch" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Cookie"); got != "session=abc123" {
			t.Errorf("Expected session cookie on the request, got %q", got)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
		}
		if got := r.FormValue("photos_per_item"); got != "3" {
			t.Errorf("Expected photos_per_item=3, got %q", got)
		}
		if got := len(r.MultipartForm.File["files"]); got != 2 {
			t.Errorf("Expected 2 files, got %d", got)
		}
		if err := json.NewEncoder(w).Encode(map[string]string{"job_id": "J42"}); err != nil {
			t.Errorf("Failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "session=abc123")
	files := []models.UploadFile{
		{Name: "a.jpg", Data: []byte("aaa")},
		{Name: "b.jpg", Data: []byte("bbb")},
	}

	jobID, err := client.SubmitBatch(context.Background(), files, 3)
	if err != nil {
		t.Fatalf("SubmitBatch failed: %v", err)
	}
	if jobID != "J42" {
		t.Errorf("Expected J42, got %q", jobID)
	}
}

func TestSubmitBatchMissingJobID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(map[string]string{}); err != nil {
			t.Errorf("Failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	files := []models.UploadFile{{Name: "a.jpg", Data: []byte("aaa")}}
	if _, err := client.SubmitBatch(context.Background(), files, 1); err == nil {
		t.Fatal("Expected error when the service returns no job id")
	}
}

func TestGetJob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/jobs/J1" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewEncoder(w).Encode(map[string]any{
			"status":           "processing",
			"progress_percent": 40,
		}); err != nil {
			t.Errorf("Failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	job, err := client.GetJob(context.Background(), "J1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job.Status != models.JobStatusProcessing || job.ProgressPercent != 40 {
		t.Errorf("Unexpected job: %+v", job)
	}
	if job.ID != "J1" {
		t.Errorf("Job id should default to the requested id, got %q", job.ID)
	}
}

func TestListDrafts(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "ready" {
			t.Errorf("Expected status=ready query param, got %q", got)
		}
		if err := json.NewEncoder(w).Encode(map[string]any{
			"drafts": []models.Draft{
				{ID: "d1", Status: models.DraftStatusReady, Title: "Jacket", Price: 50, CreatedAt: created},
			},
		}); err != nil {
			t.Errorf("Failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	drafts, err := client.ListDrafts(context.Background(), models.DraftStatusReady)
	if err != nil {
		t.Fatalf("ListDrafts failed: %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != "d1" {
		t.Errorf("Unexpected drafts: %+v", drafts)
	}
}

func TestPublishDraft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/drafts/d1/publish" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewEncoder(w).Encode(map[string]string{
			"message":     "listed",
			"listing_url": "https://market.example/items/99",
		}); err != nil {
			t.Errorf("Failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	result, err := client.PublishDraft(context.Background(), "d1")
	if err != nil {
		t.Fatalf("PublishDraft failed: %v", err)
	}
	if result.ListingURL != "https://market.example/items/99" {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestPublishDraftFailureIsClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		if err := json.NewEncoder(w).Encode(map[string]string{
			"detail": "Your session has expired, please log in again",
		}); err != nil {
			t.Errorf("Failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.PublishDraft(context.Background(), "d1")
	if err == nil {
		t.Fatal("Expected publish error")
	}

	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("Expected *PublishError, got %T", err)
	}
	if pubErr.Kind != ErrorKindSessionExpired {
		t.Errorf("Expected session_expired, got %s", pubErr.Kind)
	}
}

func TestDeleteDraft(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{name: "ok", statusCode: http.StatusOK},
		{name: "no content", statusCode: http.StatusNoContent},
		{name: "not found", statusCode: http.StatusNotFound, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != "DELETE" || r.URL.Path != "/api/drafts/d1" {
					t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := NewClient(server.URL, "")
			err := client.DeleteDraft(context.Background(), "d1")
			if tt.wantErr && err == nil {
				t.Fatal("Expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("DeleteDraft failed: %v", err)
			}
		})
	}
}
