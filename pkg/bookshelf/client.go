package bookshelf

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

// DefaultLibraryName is the library synced when no name is configured.
const DefaultLibraryName = "audiobooks"

const requestTimeout = 20 * time.Second

// Client talks to an Audiobookshelf-compatible media-library service. It
// performs no retries; retry policy belongs to the caller.
type Client struct {
	baseURL     string
	token       string
	libraryName string
	httpClient  *http.Client
	log         logger.Logger

	// Resolved library id, cached for the lifetime of the client.
	libraryID string
}

// Library is a named grouping of items upstream.
type Library struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
}

// Series is an upstream series within a library.
type Series struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is a raw upstream inventory record. Field availability varies between
// upstream versions, which is why normalization lives in this package.
type Item struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Name      string       `json:"name"`
	MediaType string       `json:"mediaType"`
	Type      string       `json:"type"`
	RelPath   string       `json:"relPath"`
	Authors   []ItemAuthor `json:"authors"`
	Media     ItemMedia    `json:"media"`
}

type ItemAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ItemMedia struct {
	Metadata ItemMetadata `json:"metadata"`
}

type ItemMetadata struct {
	Title        string `json:"title"`
	AuthorName   string `json:"authorName"`
	NarratorName string `json:"narratorName"`
}

type ClientOptions struct {
	LibraryName string
}

func New(baseURL, token string, opts ClientOptions) *Client {
	libraryName := opts.LibraryName
	if libraryName == "" {
		libraryName = DefaultLibraryName
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		libraryName: libraryName,
		httpClient:  &http.Client{Timeout: requestTimeout},
		log:         logger.New(),
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	url := c.baseURL + path
	c.log.Debug("bookshelf request", logger.Data{"url": url})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &AuthError{URL: url}
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Resource: url}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{URL: url, Err: err}
	}

	return nil
}

// ResolveLibraryID returns the id of the library with the given name, matched
// case-insensitively. The id is cached on the client once resolved.
func (c *Client) ResolveLibraryID(ctx context.Context, name string) (string, error) {
	if c.libraryID != "" {
		return c.libraryID, nil
	}

	var result struct {
		Libraries []Library `json:"libraries"`
	}
	if err := c.get(ctx, "/api/libraries", &result); err != nil {
		return "", err
	}

	for _, lib := range result.Libraries {
		if strings.EqualFold(lib.Name, name) {
			c.libraryID = lib.ID
			return c.libraryID, nil
		}
	}

	return "", &NotFoundError{Resource: "library " + name}
}

// ListItems returns all book and audiobook items from the configured library.
// Items without a media kind are included since some upstream versions omit
// the field.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	libraryID, err := c.ResolveLibraryID(ctx, c.libraryName)
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []Item `json:"results"`
	}
	if err := c.get(ctx, "/api/libraries/"+libraryID+"/items", &result); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(result.Results))
	for _, item := range result.Results {
		mediaType := item.MediaType
		if mediaType == "" {
			mediaType = item.Type
		}
		switch mediaType {
		case "book", "audiobook", "":
			items = append(items, item)
		}
	}

	c.log.Info("fetched bookshelf items", logger.Data{"count": len(items), "library_id": libraryID})
	return items, nil
}

// RetrieveItem fetches a single item by id.
func (c *Client) RetrieveItem(ctx context.Context, id string) (*Item, error) {
	item := &Item{}
	if err := c.get(ctx, "/api/items/"+id, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListSeries returns the series of the configured library. Upstream versions
// disagree on the envelope key, so both known shapes are accepted.
func (c *Client) ListSeries(ctx context.Context) ([]Series, error) {
	libraryID, err := c.ResolveLibraryID(ctx, c.libraryName)
	if err != nil {
		return nil, err
	}

	var result struct {
		Series  []Series `json:"series"`
		Results []Series `json:"results"`
	}
	if err := c.get(ctx, "/api/libraries/"+libraryID+"/series", &result); err != nil {
		return nil, err
	}

	if len(result.Series) > 0 {
		return result.Series, nil
	}
	return result.Results, nil
}

// CoverURL returns the deterministic cover endpoint for an item, without
// making a network call. Items with no id have no cover.
func (c *Client) CoverURL(item Item) *string {
	if item.ID == "" {
		return nil
	}
	url := c.baseURL + "/api/items/" + item.ID + "/cover"
	return &url
}
