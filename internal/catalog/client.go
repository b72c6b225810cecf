// Package catalog looks up books in the remote volumes catalog and maps them
// to the record model.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/mcalhoun/shelfie/internal/platform/errors"
	"github.com/mcalhoun/shelfie/internal/record"
)

// DefaultEndpoint is the public volumes search endpoint.
const DefaultEndpoint = "https://www.googleapis.com/books/v1/volumes"

const defaultMaxResults = 20

// ErrEmptyQuery indicates a blank search query.
var ErrEmptyQuery = apperrors.New(apperrors.CodeUnknown, "search query is required")

// Client searches the volumes catalog over HTTP.
type Client struct {
	endpoint   string
	maxResults int
	client     *http.Client
}

// NewClient creates a catalog client for the given endpoint. An empty
// endpoint uses DefaultEndpoint; a nil http client uses http.DefaultClient.
func NewClient(endpoint string, client *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		endpoint:   endpoint,
		maxResults: defaultMaxResults,
		client:     client,
	}
}

type volumesResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title      string   `json:"title"`
			Authors    []string `json:"authors"`
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Search queries the catalog and returns matching books. Items without a
// title are dropped; the catalog occasionally returns bare stubs.
func (c *Client) Search(ctx context.Context, query string) ([]record.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse catalog endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(c.maxResults))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRemoteFailure, "catalog search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.CodeRemoteFailure, fmt.Sprintf("catalog search returned %s", resp.Status))
	}

	var payload volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRemoteFailure, "decode catalog response", err)
	}

	books := make([]record.Book, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID == "" || item.VolumeInfo.Title == "" {
			continue
		}
		books = append(books, record.Book{
			ID:        item.ID,
			Title:     item.VolumeInfo.Title,
			Authors:   item.VolumeInfo.Authors,
			Thumbnail: item.VolumeInfo.ImageLinks.Thumbnail,
		})
	}
	return books, nil
}
