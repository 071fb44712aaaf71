package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GoogleBooksClient fetches book metadata from the Google Books API.
type GoogleBooksClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

// NewGoogleBooksClient creates a new Google Books API client with rate limiting.
func NewGoogleBooksClient() *GoogleBooksClient {
	return &GoogleBooksClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://www.googleapis.com/books/v1",
		rateLimiter: newRateLimiter(time.Second),
	}
}

// Name implements Provider.
func (c *GoogleBooksClient) Name() string {
	return "googlebooks"
}

// LookupISBN looks up a book by its ISBN and returns metadata.
func (c *GoogleBooksClient) LookupISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = NormalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	c.rateLimiter.wait()

	url := fmt.Sprintf("%s/volumes?q=isbn:%s", c.baseURL, isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "BookBoss/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch volume data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result googleVolumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return nil, ErrNotFound
	}

	return c.convertToMetadata(&result.Items[0].VolumeInfo, isbn), nil
}

func (c *GoogleBooksClient) convertToMetadata(info *googleVolumeInfo, isbn string) *BookMetadata {
	metadata := &BookMetadata{
		Title:           info.Title,
		Author:          strings.Join(info.Authors, ", "),
		ISBN:            isbn,
		Publisher:       info.Publisher,
		PublicationDate: info.PublishedDate,
		Description:     info.Description,
		PageCount:       info.PageCount,
	}

	if len(info.Categories) > 0 {
		metadata.Categories = info.Categories
		if len(metadata.Categories) > 10 {
			metadata.Categories = metadata.Categories[:10]
		}
	}

	// Google serves cover links over http; upgrade to https.
	if info.ImageLinks.Thumbnail != "" {
		metadata.CoverURL = strings.Replace(info.ImageLinks.Thumbnail, "http://", "https://", 1)
	}

	return metadata
}

// Google Books API response types (internal)

type googleVolumesResponse struct {
	TotalItems int            `json:"totalItems"`
	Items      []googleVolume `json:"items"`
}

type googleVolume struct {
	VolumeInfo googleVolumeInfo `json:"volumeInfo"`
}

type googleVolumeInfo struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"publishedDate"`
	Description   string   `json:"description"`
	PageCount     int      `json:"pageCount"`
	Categories    []string `json:"categories"`
	ImageLinks    struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}
