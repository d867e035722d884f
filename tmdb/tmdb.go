// Package tmdb is a thin read-only client for The Movie Database API.
// List endpoints pass upstream result objects through verbatim so the
// frontend sees exactly what TMDB returns.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Page caps for the multi-page discover endpoints. TMDB serves 20 results
// per page.
const (
	DefaultDiscoverPages = 5
	MaxDiscoverPages     = 50
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithBaseURL points the client at a different API root. Used by
// tests to target a local fake server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

type listPage struct {
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Results    []json.RawMessage `json:"results"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb: unexpected status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) list(ctx context.Context, path string, query url.Values) ([]json.RawMessage, error) {
	var page listPage
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// listPages fetches pages 1..maxPages of a paginated endpoint and
// concatenates the results. Stops early once the upstream's total_pages is
// exhausted.
func (c *Client) listPages(ctx context.Context, path string, maxPages int) ([]json.RawMessage, error) {
	if maxPages < 1 {
		maxPages = 1
	}
	if maxPages > MaxDiscoverPages {
		maxPages = MaxDiscoverPages
	}

	var results []json.RawMessage
	for p := 1; p <= maxPages; p++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(p))
		var page listPage
		if err := c.get(ctx, path, query, &page); err != nil {
			return nil, err
		}
		results = append(results, page.Results...)
		if page.TotalPages != 0 && p >= page.TotalPages {
			break
		}
	}
	return results, nil
}

func (c *Client) TrendingMovies(ctx context.Context) ([]json.RawMessage, error) {
	return c.list(ctx, "/trending/movie/week", nil)
}

func (c *Client) TrendingTV(ctx context.Context) ([]json.RawMessage, error) {
	return c.list(ctx, "/trending/tv/week", nil)
}

func (c *Client) DiscoverMovies(ctx context.Context, pages int) ([]json.RawMessage, error) {
	return c.listPages(ctx, "/discover/movie", pages)
}

func (c *Client) DiscoverTV(ctx context.Context, pages int) ([]json.RawMessage, error) {
	return c.listPages(ctx, "/discover/tv", pages)
}

func (c *Client) SearchMovies(ctx context.Context, queryText string) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set("query", queryText)
	return c.list(ctx, "/search/movie", query)
}

func (c *Client) SearchTV(ctx context.Context, queryText string) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set("query", queryText)
	return c.list(ctx, "/search/tv", query)
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// MovieDetail is the detail payload for a movie, with credits appended.
type MovieDetail struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	Tagline      string  `json:"tagline"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Runtime      int     `json:"runtime"`
	VoteAverage  float64 `json:"vote_average"`
	Genres       []Genre `json:"genres"`
	Credits      Credits `json:"credits"`
}

// Director returns the first crew member credited as Director, or "".
func (d *MovieDetail) Director() string {
	for _, member := range d.Credits.Crew {
		if member.Job == "Director" {
			return member.Name
		}
	}
	return ""
}

// TVDetail is the detail payload for a tv show, with credits appended.
type TVDetail struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Overview        string  `json:"overview"`
	Tagline         string  `json:"tagline"`
	PosterPath      string  `json:"poster_path"`
	BackdropPath    string  `json:"backdrop_path"`
	FirstAirDate    string  `json:"first_air_date"`
	NumberOfSeasons int     `json:"number_of_seasons"`
	VoteAverage     float64 `json:"vote_average"`
	Genres          []Genre `json:"genres"`
	CreatedBy       []struct {
		Name string `json:"name"`
	} `json:"created_by"`
	Credits Credits `json:"credits"`
}

// Creators returns the names from the created_by list.
func (d *TVDetail) Creators() []string {
	names := make([]string, 0, len(d.CreatedBy))
	for _, c := range d.CreatedBy {
		names = append(names, c.Name)
	}
	return names
}

func (c *Client) MovieDetails(ctx context.Context, id int) (*MovieDetail, error) {
	query := url.Values{}
	query.Set("append_to_response", "credits")
	var detail MovieDetail
	if err := c.get(ctx, "/movie/"+strconv.Itoa(id), query, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) TVDetails(ctx context.Context, id int) (*TVDetail, error) {
	query := url.Values{}
	query.Set("append_to_response", "credits")
	var detail TVDetail
	if err := c.get(ctx, "/tv/"+strconv.Itoa(id), query, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}
