package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultRecommendationLimit = 6

// Client talks to the catalog/search collaborator. Responses are cached
// briefly: the catalog re-ranks rarely and the dashboard hits the same
// endpoints on every render.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *gocache.Cache
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, timeout, cacheTTL time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// AllBooks returns the full catalog listing.
func (c *Client) AllBooks(ctx context.Context) ([]BookRef, error) {
	return c.fetchRefs(ctx, "books", "/api/books", nil)
}

// Search runs a semantic search against the catalog.
func (c *Client) Search(ctx context.Context, query string) ([]BookRef, error) {
	if query == "" {
		return nil, nil
	}
	params := url.Values{"q": {query}}
	return c.fetchRefs(ctx, "search:"+query, "/api/search", params)
}

// Recommendations returns books similar to the given catalog book.
func (c *Client) Recommendations(ctx context.Context, bookID string, limit int) ([]BookRef, error) {
	if bookID == "" {
		return nil, fmt.Errorf("book id is required")
	}
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	params := url.Values{
		"book_id": {bookID},
		"limit":   {strconv.Itoa(limit)},
	}
	key := fmt.Sprintf("recommend:%s:%d", bookID, limit)
	return c.fetchRefs(ctx, key, "/api/recommend", params)
}

// Themes returns the distinct themes across the catalog.
func (c *Client) Themes(ctx context.Context) ([]string, error) {
	if cached, found := c.cache.Get("themes"); found {
		return cached.([]string), nil
	}

	var themes []string
	if err := c.getJSON(ctx, "/api/themes", nil, &themes); err != nil {
		return nil, err
	}

	c.cache.SetDefault("themes", themes)
	return themes, nil
}

func (c *Client) fetchRefs(ctx context.Context, cacheKey, path string, params url.Values) ([]BookRef, error) {
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]BookRef), nil
	}

	var refs []BookRef
	if err := c.getJSON(ctx, path, params, &refs); err != nil {
		return nil, err
	}

	c.cache.SetDefault(cacheKey, refs)
	return refs, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The collaborator reports failures as {"error": "..."}
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("catalog %s: %s (status %d)", path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("catalog %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
