// Package graphapi is a thin client for the Facebook Graph API calls the
// sync subsystem depends on: page metrics and posts, Instagram account
// metrics and media. It maps requests and responses only; retry, pacing,
// and budget decisions belong to the sync layer.
package graphapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the Graph API endpoint used when none is configured.
// Tests point the client at an httptest server instead.
const DefaultBaseURL = "https://graph.facebook.com/v19.0"

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates a Graph API client. baseURL may be empty to use the
// production endpoint.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}
}

// apiError is the Graph API's error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// get performs one Graph API request and decodes the JSON response into out.
// Non-2xx responses are returned as errors carrying the upstream code and
// message.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("graph api request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("graph api %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("graph api %s: %s (code %d)", path, apiErr.Error.Message, apiErr.Error.Code)
		}
		return fmt.Errorf("graph api %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("graph api %s: decode response: %w", path, err)
	}
	return nil
}

// insightsEnvelope is the shape of the nested insights field.
type insightsEnvelope struct {
	Data []struct {
		Name   string `json:"name"`
		Values []struct {
			Value int `json:"value"`
		} `json:"values"`
	} `json:"data"`
}

// sum adds up the daily values reported for the named metric.
func (e insightsEnvelope) sum(name string) int {
	total := 0
	for _, d := range e.Data {
		if d.Name != name {
			continue
		}
		for _, v := range d.Values {
			total += v.Value
		}
	}
	return total
}

// PageMetrics are the headline counters for a Facebook page.
type PageMetrics struct {
	FollowersCount  int `json:"followers_count"`
	Impressions     int `json:"impressions"`
	EngagedUsers    int `json:"engaged_users"`
	PostEngagements int `json:"post_engagements"`
}

// GetPageMetrics fetches a page's follower count and windowed insight
// counters in a single Graph API call.
func (c *Client) GetPageMetrics(ctx context.Context, pageID, token string, since, until time.Time) (*PageMetrics, error) {
	fields := fmt.Sprintf(
		"followers_count,insights.metric(page_impressions,page_engaged_users,page_post_engagements).period(day).since(%d).until(%d)",
		since.Unix(), until.Unix(),
	)
	params := url.Values{}
	params.Set("fields", fields)
	params.Set("access_token", token)

	var body struct {
		FollowersCount int              `json:"followers_count"`
		Insights       insightsEnvelope `json:"insights"`
	}
	if err := c.get(ctx, "/"+pageID, params, &body); err != nil {
		return nil, err
	}

	return &PageMetrics{
		FollowersCount:  body.FollowersCount,
		Impressions:     body.Insights.sum("page_impressions"),
		EngagedUsers:    body.Insights.sum("page_engaged_users"),
		PostEngagements: body.Insights.sum("page_post_engagements"),
	}, nil
}

// PagePost is one entry from a page's post feed. CreatedTime is kept as the
// upstream ISO-8601 string (Graph API uses a +0000 offset that is not
// RFC 3339).
type PagePost struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	CreatedTime string `json:"created_time"`
}

// GetPagePosts fetches up to limit recent posts for a page.
func (c *Client) GetPagePosts(ctx context.Context, pageID, token string, limit int) ([]PagePost, error) {
	params := url.Values{}
	params.Set("fields", "id,message,created_time")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("access_token", token)

	var body struct {
		Data []PagePost `json:"data"`
	}
	if err := c.get(ctx, "/"+pageID+"/posts", params, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// InstagramMetrics are the headline counters for an Instagram business
// account.
type InstagramMetrics struct {
	FollowersCount int `json:"followers_count"`
	MediaCount     int `json:"media_count"`
	Impressions    int `json:"impressions"`
	Reach          int `json:"reach"`
	Interactions   int `json:"interactions"`
}

// GetInstagramMetrics fetches an account's follower/media counts and
// windowed insight counters in a single Graph API call.
func (c *Client) GetInstagramMetrics(ctx context.Context, accountID, token string, since, until time.Time) (*InstagramMetrics, error) {
	fields := fmt.Sprintf(
		"followers_count,media_count,insights.metric(impressions,reach,total_interactions).period(day).since(%d).until(%d)",
		since.Unix(), until.Unix(),
	)
	params := url.Values{}
	params.Set("fields", fields)
	params.Set("access_token", token)

	var body struct {
		FollowersCount int              `json:"followers_count"`
		MediaCount     int              `json:"media_count"`
		Insights       insightsEnvelope `json:"insights"`
	}
	if err := c.get(ctx, "/"+accountID, params, &body); err != nil {
		return nil, err
	}

	return &InstagramMetrics{
		FollowersCount: body.FollowersCount,
		MediaCount:     body.MediaCount,
		Impressions:    body.Insights.sum("impressions"),
		Reach:          body.Insights.sum("reach"),
		Interactions:   body.Insights.sum("total_interactions"),
	}, nil
}

// InstagramMedia is one entry from an account's media feed.
type InstagramMedia struct {
	ID        string `json:"id"`
	Caption   string `json:"caption"`
	MediaType string `json:"media_type"`
	Timestamp string `json:"timestamp"`
}

// GetInstagramMedia fetches up to limit recent media items for an account.
func (c *Client) GetInstagramMedia(ctx context.Context, accountID, token string, limit int) ([]InstagramMedia, error) {
	params := url.Values{}
	params.Set("fields", "id,caption,media_type,timestamp")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("access_token", token)

	var body struct {
		Data []InstagramMedia `json:"data"`
	}
	if err := c.get(ctx, "/"+accountID+"/media", params, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}
