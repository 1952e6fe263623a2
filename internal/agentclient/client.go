// Package agentclient is the ingestor's HTTP client for the scraping
// agent's job submission surface, used by the scheduler tasks to
// dispatch listing/product scrapes and poll their outcome.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// Client calls the scraping agent's /scrape surface.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a Client addressing baseURL with bearer token.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// SubmitRequest is the body for POST /scrape.
type SubmitRequest struct {
	WebpageURL string         `json:"webpage_url"`
	Priority   model.Priority `json:"priority"`
	TypePage   model.TypePage `json:"type_page"`
}

// SubmitResponse is the 200 body for POST /scrape.
type SubmitResponse struct {
	JobID string `json:"job_id"`
}

// Submit posts a new scrape job and returns its job_id.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal submit request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scrape", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build submit request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("submit scrape: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("submit scrape for %s: status %d: %s", req.WebpageURL, resp.StatusCode, raw)
	}

	var out SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	return out.JobID, nil
}

// StatusResponse is the body for GET /scrape/{job_id}/status/.
type StatusResponse struct {
	JobID        string          `json:"job_id"`
	WebpageURL   string          `json:"webpage_url"`
	Priority     model.Priority  `json:"priority"`
	TypePage     model.TypePage  `json:"type_page"`
	Status       model.JobStatus `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

// Status fetches a job's current status.
func (c *Client) Status(ctx context.Context, jobID string) (*StatusResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/scrape/"+jobID+"/status/", nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch status for job %s: %w", jobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch status for job %s: status %d: %s", jobID, resp.StatusCode, raw)
	}

	var out StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &out, nil
}

// ResultResponse is the body for GET /scrape/{job_id}/result/.
type ResultResponse struct {
	JobID        string          `json:"job_id"`
	Result       json.RawMessage `json:"result"`
	Status       model.JobStatus `json:"status"`
	CompletedAt  time.Time       `json:"completed_at"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

// Result fetches a job's terminal result. Returns a nil response and
// nil error if the job has not reached a terminal state yet (404).
func (c *Client) Result(ctx context.Context, jobID string) (*ResultResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/scrape/"+jobID+"/result/", nil)
	if err != nil {
		return nil, fmt.Errorf("build result request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch result for job %s: %w", jobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch result for job %s: status %d: %s", jobID, resp.StatusCode, raw)
	}

	var out ResultResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode result response: %w", err)
	}
	return &out, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
