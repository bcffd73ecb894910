// Package client provides a small Go client for the watchlist HTTP API plus
// a state controller that mirrors the browser-side behavior: load once, hold
// the collection in memory, derive a filtered view, and patch local state
// only after the server confirms a mutation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/filmlog/go-watchlist-backend/internal/domain"
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

// API is an HTTP client for the movie endpoints. The zero value is not
// usable; construct with NewAPI.
type API struct {
	baseURL string
	httpc   *http.Client
}

// NewAPI returns an API client rooted at baseURL (e.g. "http://localhost:8080").
// A trailing slash is stripped. When httpc is nil a client with a 15 second
// timeout is used.
func NewAPI(baseURL string, httpc *http.Client) *API {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), httpc: httpc}
}

type createRequest struct {
	Title  string `json:"title"`
	Year   int    `json:"year"`
	Status string `json:"status"`
}

type createResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type updateRequest struct {
	Status string `json:"status"`
}

type updateResponse struct {
	Message string       `json:"message"`
	Movie   domain.Movie `json:"movie"`
}

// List fetches the full collection, newest first.
func (a *API) List(ctx context.Context) ([]domain.Movie, error) {
	var movies []domain.Movie
	if err := a.do(ctx, http.MethodGet, "/movies", nil, &movies); err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []domain.Movie{}
	}
	return movies, nil
}

// Create adds a movie and returns the new record's identifier.
func (a *API) Create(ctx context.Context, title string, year int, status string) (int64, error) {
	var out createResponse
	in := createRequest{Title: title, Year: year, Status: status}
	if err := a.do(ctx, http.MethodPost, "/movies", in, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// UpdateStatus changes a movie's watched status and returns the updated record.
func (a *API) UpdateStatus(ctx context.Context, id int64, status string) (domain.Movie, error) {
	var out updateResponse
	path := "/movies/" + strconv.FormatInt(id, 10)
	if err := a.do(ctx, http.MethodPut, path, updateRequest{Status: status}, &out); err != nil {
		return domain.Movie{}, err
	}
	return out.Movie, nil
}

// Delete removes a movie by identifier.
func (a *API) Delete(ctx context.Context, id int64) error {
	path := "/movies/" + strconv.FormatInt(id, 10)
	return a.do(ctx, http.MethodDelete, path, nil, nil)
}

// Export downloads the raw collection document as served by the export route.
func (a *API) Export(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/movies/export", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

// do issues a JSON request and decodes a 2xx response body into out (when
// non-nil). Non-2xx responses become *APIError.
func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var envelope struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)); err == nil {
		if json.Unmarshal(b, &envelope) == nil {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Error
		}
	}
	return apiErr
}
