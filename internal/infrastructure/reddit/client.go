package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ddscanner/internal/config"
	"ddscanner/internal/domain"
	"ddscanner/internal/ports"
)

const (
	defaultAuthURL = "https://www.reddit.com"
	defaultAPIURL  = "https://oauth.reddit.com"
	pageSize       = 100
)

// Client pulls subreddit listings and comment threads through the OAuth
// API using application-only credentials.
type Client struct {
	clientID     string
	clientSecret string
	userAgent    string
	topWindow    string
	authURL      string
	apiURL       string
	httpClient   *http.Client
	logger       *slog.Logger

	token       string
	tokenExpiry time.Time
}

var (
	_ ports.PostSource    = (*Client)(nil)
	_ ports.CommentSource = (*Client)(nil)
)

// NewClient builds a feed client from configuration.
func NewClient(cfg config.RedditConfig, topWindow string, logger *slog.Logger) *Client {
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		userAgent:    cfg.UserAgent,
		topWindow:    topWindow,
		authURL:      defaultAuthURL,
		apiURL:       defaultAPIURL,
		httpClient:   &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		logger:       logger,
	}
}

// listingPaths maps the fixed set of valid orderings to API paths.
var listingPaths = map[string]string{
	"new":    "new",
	"hot":    "hot",
	"top":    "top",
	"rising": "rising",
}

// Listing walks the paginated listing for one (subreddit, ordering) pair
// and returns up to limit posts in feed order. An unrecognized ordering is
// a configuration error, not a per-post one.
func (c *Client) Listing(ctx context.Context, subreddit, ordering string, limit int) ([]domain.Post, error) {
	path, ok := listingPaths[ordering]
	if !ok {
		return nil, fmt.Errorf("unknown ordering %q", ordering)
	}

	posts := make([]domain.Post, 0, limit)
	after := ""
	for len(posts) < limit {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(min(pageSize, limit-len(posts))))
		params.Set("raw_json", "1")
		if after != "" {
			params.Set("after", after)
		}
		if ordering == "top" && c.topWindow != "" {
			params.Set("t", c.topWindow)
		}

		endpoint := fmt.Sprintf("%s/r/%s/%s?%s", c.apiURL, url.PathEscape(subreddit), path, params.Encode())

		var page listingEnvelope
		if err := c.getJSON(ctx, endpoint, &page); err != nil {
			return nil, fmt.Errorf("listing r/%s (%s): %w", subreddit, ordering, err)
		}

		for _, child := range page.Data.Children {
			if child.Kind != "t3" {
				continue
			}
			posts = append(posts, child.Data.toPost())
		}

		after = page.Data.After
		if after == "" || len(page.Data.Children) == 0 {
			break
		}
	}

	return posts, nil
}

// Comments returns top-level comment bodies for a post, in thread order.
func (c *Client) Comments(ctx context.Context, postID string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/comments/%s?raw_json=1&depth=1", c.apiURL, url.PathEscape(postID))

	var thread []commentEnvelope
	if err := c.getJSON(ctx, endpoint, &thread); err != nil {
		return nil, fmt.Errorf("comments for %s: %w", postID, err)
	}

	// The first listing is the post itself; comments sit in the second.
	if len(thread) < 2 {
		return nil, nil
	}

	var bodies []string
	for _, child := range thread[1].Data.Children {
		if child.Kind != "t1" || child.Data.Body == "" {
			continue
		}
		bodies = append(bodies, child.Data.Body)
	}
	return bodies, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reddit returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authURL+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no token")
	}

	c.token = payload.AccessToken
	ttl := time.Duration(payload.ExpiresIn) * time.Second
	// Renew a minute early, but never let the margin push a short-lived
	// token's expiry into the past.
	if ttl > 2*time.Minute {
		ttl -= time.Minute
	}
	c.tokenExpiry = time.Now().Add(ttl)
	return c.token, nil
}

type listingEnvelope struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string   `json:"kind"`
			Data wirePost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type commentEnvelope struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				Body string `json:"body"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// wirePost is the feed's native shape; it is converted to domain.Post at
// this boundary so nothing downstream depends on the feed representation.
type wirePost struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Selftext      string  `json:"selftext"`
	Author        string  `json:"author"`
	Subreddit     string  `json:"subreddit"`
	LinkFlairText *string `json:"link_flair_text"`
	CreatedUTC    float64 `json:"created_utc"`
	Score         int     `json:"score"`
	UpvoteRatio   float64 `json:"upvote_ratio"`
	URL           string  `json:"url"`
	Stickied      bool    `json:"stickied"`
}

func (w wirePost) toPost() domain.Post {
	p := domain.Post{
		ID:          w.ID,
		Title:       w.Title,
		Body:        w.Selftext,
		Author:      w.Author,
		Subreddit:   w.Subreddit,
		CreatedAt:   time.Unix(int64(w.CreatedUTC), 0).UTC(),
		Upvotes:     w.Score,
		UpvoteRatio: w.UpvoteRatio,
		URL:         w.URL,
		Stickied:    w.Stickied,
	}
	if w.LinkFlairText != nil {
		p.Flair = *w.LinkFlairText
		p.HasFlair = true
	}
	return p
}
