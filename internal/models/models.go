package models

import "time"

// DraftStatus is the client-visible lifecycle of a draft listing.
// A draft only ever moves forward: draft -> ready -> published.
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "draft"
	DraftStatusReady     DraftStatus = "ready"
	DraftStatusPublished DraftStatus = "published"
)

// Draft represents a listing awaiting or having undergone publication.
// Drafts are owned by the remote service; the client holds a read-mostly
// cache that is refetched wholesale after any mutation.
type Draft struct {
	ID          string      `json:"id"`
	Status      DraftStatus `json:"status"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Category    string      `json:"category"`
	Brand       string      `json:"brand"`
	Confidence  float64     `json:"confidence"`
	CreatedAt   time.Time   `json:"created_at"`
}

// JobStatus is the status label reported by the remote job service.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further status transition will be observed.
// Any label other than completed/failed is treated as non-terminal, so new
// intermediate labels on the server side do not break the client.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job represents a server-tracked unit of asynchronous batch work
// (photo analysis) identified by an opaque id. Jobs are mutated exclusively
// by the remote service and only observed here.
type Job struct {
	ID              string    `json:"job_id"`
	Status          JobStatus `json:"status"`
	ProgressPercent int       `json:"progress_percent"`
	Errors          []string  `json:"errors,omitempty"`
}

// UploadFile is one candidate photo in a pending upload batch.
type UploadFile struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
	Data      []byte `json:"-"`
	// Preview is a data URI rendered from the file bytes. Best effort,
	// display only; empty when preview generation failed.
	Preview string `json:"preview,omitempty"`
}
