package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/relist-app/relist/internal/api"
	"github.com/relist-app/relist/internal/models"
)

const (
	// MaxFiles is the most photos one batch may carry.
	MaxFiles = 500
	// MaxFileSize is the per-photo size cap in bytes.
	MaxFileSize = 15 * 1024 * 1024
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the 15 MB limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrBatchFull       = errors.New("batch already holds the maximum number of files")
	ErrBatchEmpty      = errors.New("no files selected")
	ErrSubmitting      = errors.New("batch already submitted")
)

// allowedMediaTypes is the image allow-list for batch uploads.
var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/heic": true,
	"image/heif": true,
}

// Batch collects candidate photos for one submission to the analysis service.
// Files are validated whole at the point of selection; once submitted the
// pending list is frozen until Reset.
type Batch struct {
	mu        sync.Mutex
	files     []models.UploadFile
	submitted bool
	jobID     string
}

// NewBatch creates an empty upload batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Add validates one file and appends it to the pending list. A rejected file
// is never partially accepted. A preview data URI is generated for every
// accepted file; preview generation is best effort and display only.
func (b *Batch) Add(name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.submitted {
		return ErrSubmitting
	}
	if len(b.files) >= MaxFiles {
		return ErrBatchFull
	}
	if int64(len(data)) > MaxFileSize {
		return fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, name, len(data))
	}

	mediaType := detectMediaType(data)
	if !allowedMediaTypes[mediaType] {
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, name, mediaType)
	}

	b.files = append(b.files, models.UploadFile{
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(data)),
		Data:      data,
		Preview:   dataURI(mediaType, data),
	})

	return nil
}

// Remove drops the pending file at the given position along with its preview.
// It is a no-op once submission has started or when the index is out of range.
func (b *Batch) Remove(index int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.submitted || index < 0 || index >= len(b.files) {
		return
	}
	b.files = append(b.files[:index], b.files[index+1:]...)
}

// Files returns a copy of the pending list.
func (b *Batch) Files() []models.UploadFile {
	b.mu.Lock()
	defer b.mu.Unlock()

	files := make([]models.UploadFile, len(b.files))
	copy(files, b.files)
	return files
}

// Len returns the number of pending files.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.files)
}

// JobID returns the job id assigned by the service, once submitted.
func (b *Batch) JobID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jobID
}

// Submit packages every pending file into a single multipart batch and
// performs exactly one call to the job service. On transport failure the
// batch rolls back to its pre-submission state so the user can retry without
// re-selecting files.
func (b *Batch) Submit(ctx context.Context, client *api.Client, photosPerItem int) (string, error) {
	b.mu.Lock()
	if b.submitted {
		b.mu.Unlock()
		return "", ErrSubmitting
	}
	if len(b.files) == 0 {
		b.mu.Unlock()
		return "", ErrBatchEmpty
	}
	b.submitted = true
	files := make([]models.UploadFile, len(b.files))
	copy(files, b.files)
	b.mu.Unlock()

	slog.Info("Submitting upload batch", "files", len(files), "photos_per_item", photosPerItem)

	jobID, err := client.SubmitBatch(ctx, files, photosPerItem)
	if err != nil {
		b.mu.Lock()
		b.submitted = false
		b.mu.Unlock()
		return "", err
	}

	b.mu.Lock()
	b.jobID = jobID
	b.mu.Unlock()

	slog.Info("Batch accepted", "job_id", jobID)
	return jobID, nil
}

// Reset discards all pending files and previews and returns the batch to its
// initial state. Called after the job reaches a terminal state.
func (b *Batch) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = nil
	b.submitted = false
	b.jobID = ""
}

func detectMediaType(data []byte) string {
	// DetectContentType does not know HEIC; check the ftyp brand directly.
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		switch string(data[8:12]) {
		case "heic", "heix", "hevc", "heim", "heis":
			return "image/heic"
		case "mif1", "msf1":
			return "image/heif"
		}
	}
	return http.DetectContentType(data)
}

func dataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
