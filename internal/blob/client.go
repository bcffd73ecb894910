// Package blob implements a minimal HTTP client for a token-authenticated
// blob object store with Vercel-Blob-like semantics: documents are addressed
// by pathname, listed through the store root, fetched through their public
// URL, and replaced wholesale (there are no partial writes).
//
// The client is transport only. Degrading missing or unreadable documents to
// an empty collection is the job of the store layer on top (see
// internal/store).
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public endpoint of the hosted blob store. Tests and
// self-hosted deployments override it via BLOB_API_URL.
const DefaultBaseURL = "https://blob.vercel-storage.com"

// Info describes one stored document as reported by the list endpoint.
type Info struct {
	URL        string    `json:"url"`
	Pathname   string    `json:"pathname"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Client talks to a single blob store using a read-write token. It is safe
// for concurrent use.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient returns a Client for baseURL (DefaultBaseURL when empty)
// authenticated with token. The underlying http.Client uses a 15s timeout;
// per-call contexts can shorten it further.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// listResponse is the JSON envelope of the list endpoint.
type listResponse struct {
	Blobs []Info `json:"blobs"`
}

// List returns every document in the store.
func (c *Client) List(ctx context.Context) ([]Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob: list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blob: list: unexpected status %d", resp.StatusCode)
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("blob: list: decode: %w", err)
	}
	return lr.Blobs, nil
}

// Find returns the document named pathname, or ok=false when it does not
// exist. It is a convenience wrapper over List.
func (c *Client) Find(ctx context.Context, pathname string) (Info, bool, error) {
	blobs, err := c.List(ctx)
	if err != nil {
		return Info{}, false, err
	}
	for _, b := range blobs {
		if b.Pathname == pathname {
			return b, true, nil
		}
	}
	return Info{}, false, nil
}

// Fetch downloads the content of a document through its public URL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blob: fetch: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Put uploads body as the document named pathname, replacing any previous
// content under that exact name (no random suffix is appended).
func (c *Client) Put(ctx context.Context, pathname string, body []byte, contentType string) (Info, error) {
	u := c.baseURL + "/" + url.PathEscape(pathname) + "?addRandomSuffix=0"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return Info{}, err
	}
	c.authorize(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Access", "public")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("blob: put %s: %w", pathname, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Info{}, fmt.Errorf("blob: put %s: unexpected status %d", pathname, resp.StatusCode)
	}

	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		// Some stores answer with an empty body; fall back to what we know.
		info = Info{URL: u, Pathname: pathname, Size: int64(len(body))}
	}
	return info, nil
}

// Delete removes the documents behind the given public URLs.
func (c *Client) Delete(ctx context.Context, urls ...string) error {
	if len(urls) == 0 {
		return nil
	}
	payload, err := json.Marshal(map[string][]string{"urls": urls})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/delete", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("blob: delete: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("blob: delete: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// authorize attaches the bearer token to an outgoing request.
func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
}
