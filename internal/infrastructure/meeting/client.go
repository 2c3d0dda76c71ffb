// Package meeting wraps the external video-conferencing API used to
// schedule discussion meetings for an approval.
package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Access tokens live 60 minutes; re-use one until it has aged past this
// threshold instead of running a refresh timer.
const tokenMaxAge = 55 * time.Minute

type Config struct {
	BaseURL      string
	TokenURL     string
	AccountID    string
	ClientID     string
	ClientSecret string
	HostEmail    string
}

type Client struct {
	cfg  Config
	http *http.Client

	mu      sync.Mutex
	token   string
	tokenAt time.Time
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) IsConfigured() bool {
	return c.cfg.BaseURL != "" && c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// ScheduledMeeting is the provider-side result of a create/update call.
type ScheduledMeeting struct {
	ProviderID string
	Topic      string
	StartAt    time.Time
	Duration   int
	JoinURL    string
}

type Request struct {
	Topic    string
	StartAt  time.Time
	Duration int // minutes
}

func (c *Client) Create(ctx context.Context, req Request) (*ScheduledMeeting, error) {
	var out meetingPayload
	body := meetingBody{
		Topic:     req.Topic,
		Type:      2, // scheduled
		StartTime: req.StartAt.UTC().Format(time.RFC3339),
		Duration:  req.Duration,
	}
	err := c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(c.cfg.HostEmail)+"/meetings", body, &out)
	if err != nil {
		return nil, err
	}
	return out.toScheduled(req), nil
}

func (c *Client) Update(ctx context.Context, providerID string, req Request) (*ScheduledMeeting, error) {
	body := meetingBody{
		Topic:     req.Topic,
		Type:      2,
		StartTime: req.StartAt.UTC().Format(time.RFC3339),
		Duration:  req.Duration,
	}
	if err := c.do(ctx, http.MethodPatch, "/meetings/"+url.PathEscape(providerID), body, nil); err != nil {
		return nil, err
	}
	// PATCH returns no body; re-fetch for the join url
	var out meetingPayload
	if err := c.do(ctx, http.MethodGet, "/meetings/"+url.PathEscape(providerID), nil, &out); err != nil {
		return nil, err
	}
	return out.toScheduled(req), nil
}

func (c *Client) Delete(ctx context.Context, providerID string) error {
	return c.do(ctx, http.MethodDelete, "/meetings/"+url.PathEscape(providerID), nil, nil)
}

type meetingBody struct {
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
}

type meetingPayload struct {
	ID       json.Number `json:"id"`
	Topic    string      `json:"topic"`
	JoinURL  string      `json:"join_url"`
	Duration int         `json:"duration"`
}

func (p meetingPayload) toScheduled(req Request) *ScheduledMeeting {
	return &ScheduledMeeting{
		ProviderID: p.ID.String(),
		Topic:      req.Topic,
		StartAt:    req.StartAt,
		Duration:   req.Duration,
		JoinURL:    p.JoinURL,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	tok, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("meeting api: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// accessToken returns the cached server-to-server OAuth token, refreshing
// only when the stored one is older than tokenMaxAge.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Since(c.tokenAt) < tokenMaxAge {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", c.cfg.AccountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("meeting api: token refresh: status %d", resp.StatusCode)
	}
	var tr struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("meeting api: token refresh: empty token")
	}
	c.token = tr.AccessToken
	c.tokenAt = time.Now()
	return c.token, nil
}
