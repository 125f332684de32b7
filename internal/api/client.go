package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/relist-app/relist/internal/models"
)

// Client talks to the relist service (batch ingestion and draft APIs).
// Authentication is session-cookie based: the cookie is attached to every
// request and never refreshed by this client.
type Client struct {
	BaseURL       string
	SessionCookie string
	HTTPClient    *http.Client
}

// NewClient creates a new service client.
func NewClient(baseURL, sessionCookie string) *Client {
	return &Client{
		BaseURL:       baseURL,
		SessionCookie: sessionCookie,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.SessionCookie != "" {
		req.Header.Set("Cookie", c.SessionCookie)
	}
	return req, nil
}

// SubmitBatch uploads all files as one multipart batch and returns the
// job id assigned by the service.
func (c *Client) SubmitBatch(ctx context.Context, files []models.UploadFile, photosPerItem int) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("no files to submit")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return "", fmt.Errorf("failed to write file data: %w", err)
		}
	}
	if err := writer.WriteField("photos_per_item", strconv.Itoa(photosPerItem)); err != nil {
		return "", fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, "POST", "/api/listings/batch", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("batch submission returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode batch response: %w", err)
	}
	if response.JobID == "" {
		return "", fmt.Errorf("batch accepted but no job id returned")
	}

	return response.JobID, nil
}

// GetJob fetches the current status of an analysis job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	path := "/api/jobs/" + url.PathEscape(jobID)
	req, err := c.newRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("job status returned status %d: %s", resp.StatusCode, string(body))
	}

	var job models.Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("failed to decode job status: %w", err)
	}
	if job.ID == "" {
		job.ID = jobID
	}

	return &job, nil
}

// ListDrafts fetches the full draft collection, optionally server-filtered
// by status. The returned slice preserves server order.
func (c *Client) ListDrafts(ctx context.Context, status models.DraftStatus) ([]models.Draft, error) {
	path := "/api/drafts"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	req, err := c.newRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch drafts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("draft list returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Drafts []models.Draft `json:"drafts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode draft list: %w", err)
	}

	return response.Drafts, nil
}

// PublishResult is the success payload of a publish call.
type PublishResult struct {
	Message    string `json:"message,omitempty"`
	ListingURL string `json:"listing_url,omitempty"`
}

// PublishDraft publishes one draft to the marketplace. Failures are returned
// as a *PublishError carrying a classified kind.
func (c *Client) PublishDraft(ctx context.Context, draftID string) (*PublishResult, error) {
	path := "/api/drafts/" + url.PathEscape(draftID) + "/publish"
	req, err := c.newRequest(ctx, "POST", path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to publish draft: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parsePublishError(resp.StatusCode, body)
	}

	var result PublishResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode publish response: %w", err)
	}

	return &result, nil
}

// DeleteDraft removes one draft server-side.
func (c *Client) DeleteDraft(ctx context.Context, draftID string) error {
	path := "/api/drafts/" + url.PathEscape(draftID)
	req, err := c.newRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("draft delete returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
