package openlibrary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

const (
	defaultBaseURL   = "https://openlibrary.org"
	defaultCoversURL = "https://covers.openlibrary.org"
)

// Client talks to the OpenLibrary search and works APIs. It supplies author
// candidates for the frontend's "add author" flow and bibliographies for
// monitored authors.
type Client struct {
	baseURL   string
	coversURL string

	httpClient *http.Client
	log        logger.Logger
}

type ClientOptions struct {
	// BaseURL overrides the OpenLibrary API endpoint, mainly for tests.
	BaseURL string
}

func New(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		coversURL:  defaultCoversURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.New(),
	}
}

// AuthorSearchResult is a single candidate from the author search endpoint.
type AuthorSearchResult struct {
	Name          string  `json:"name"`
	OpenLibraryID string  `json:"ol_id"`
	ImageURL      string  `json:"image_url"`
	TopWork       *string `json:"top_work"`
}

// Work is a single entry of an author's bibliography.
type Work struct {
	Title            string  `json:"title"`
	OpenLibraryID    *string `json:"ol_id"`
	FirstPublishYear *int    `json:"first_publish_year"`
	CoverURL         *string `json:"cover_url"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	c.log.Debug("openlibrary request", logger.Data{"url": u})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "openlibrary request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("openlibrary: unexpected status code %d: %s", resp.StatusCode, u)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "openlibrary response read failed")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "openlibrary response decode failed")
	}

	return nil
}

// SearchAuthors searches OpenLibrary authors by name. Results without a
// resolvable OLID are dropped.
func (c *Client) SearchAuthors(ctx context.Context, q string, limit int) ([]AuthorSearchResult, error) {
	query := url.Values{}
	query.Set("q", q)
	query.Set("limit", strconv.Itoa(limit))

	var result struct {
		Docs []struct {
			Key     string  `json:"key"`
			Name    string  `json:"name"`
			Title   string  `json:"title"`
			TopWork *string `json:"top_work"`
		} `json:"docs"`
	}
	if err := c.get(ctx, "/search/authors.json", query, &result); err != nil {
		return nil, err
	}

	results := []AuthorSearchResult{}
	for _, doc := range result.Docs {
		olID := olIDFromKey(doc.Key)
		if olID == "" {
			continue
		}
		name := doc.Name
		if name == "" {
			name = doc.Title
		}
		if name == "" {
			name = "Unknown"
		}
		results = append(results, AuthorSearchResult{
			Name:          name,
			OpenLibraryID: olID,
			ImageURL:      c.AuthorImageURL(olID),
			TopWork:       doc.TopWork,
		})
	}

	return results, nil
}

// FetchAuthorWorks returns an author's works, with publish years normalized to
// a 4-digit int whichever of the upstream's year/date fields is present.
func (c *Client) FetchAuthorWorks(ctx context.Context, olID string, limit int) ([]Work, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var result struct {
		Entries []workEntry `json:"entries"`
		Works   []workEntry `json:"works"`
	}
	if err := c.get(ctx, "/authors/"+olID+"/works.json", query, &result); err != nil {
		return nil, err
	}

	entries := result.Entries
	if len(entries) == 0 {
		entries = result.Works
	}

	works := make([]Work, 0, len(entries))
	for _, entry := range entries {
		title := entry.Title
		if title == "" {
			title = "Untitled"
		}

		var workOLID *string
		if id := olIDFromKey(entry.Key); id != "" {
			workOLID = &id
		}

		var coverID *int
		if len(entry.Covers) > 0 {
			coverID = &entry.Covers[0]
		}

		year := normalizeYear(entry.FirstPublishYear)
		if year == nil {
			year = normalizeYear(entry.FirstPublishDate)
		}

		works = append(works, Work{
			Title:            title,
			OpenLibraryID:    workOLID,
			FirstPublishYear: year,
			CoverURL:         c.bookCoverURL(coverID, workOLID),
		})
	}

	return works, nil
}

type workEntry struct {
	Key              string          `json:"key"`
	Title            string          `json:"title"`
	FirstPublishYear json.RawMessage `json:"first_publish_year"`
	FirstPublishDate json.RawMessage `json:"first_publish_date"`
	Covers           []int           `json:"covers"`
}

// AuthorImageURL returns the medium-size portrait URL for an author OLID.
func (c *Client) AuthorImageURL(olID string) string {
	return fmt.Sprintf("%s/a/olid/%s-M.jpg", c.coversURL, olID)
}

func (c *Client) bookCoverURL(coverID *int, workOLID *string) *string {
	if coverID != nil {
		u := fmt.Sprintf("%s/b/id/%d-M.jpg", c.coversURL, *coverID)
		return &u
	}
	if workOLID != nil {
		u := fmt.Sprintf("%s/b/olid/%s-M.jpg", c.coversURL, *workOLID)
		return &u
	}
	return nil
}

func olIDFromKey(key string) string {
	if key == "" {
		return ""
	}
	parts := strings.Split(key, "/")
	return parts[len(parts)-1]
}

// normalizeYear coerces OpenLibrary's publish fields, which may be an int or a
// date string, into a 4-digit year.
func normalizeYear(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if len(s) < 4 {
		return nil
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return nil
	}
	return &year
}
