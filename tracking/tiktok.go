package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const tiktokAPIBase = "https://business-api.tiktok.com/open_api/v1.3"

// TikTokConfig configures the Events API destination.
type TikTokConfig struct {
	PixelID       string `toml:"pixel_id"`
	AccessToken   string `toml:"access_token"`
	TestEventCode string `toml:"test_event_code"`

	// BaseURL overrides the Events API endpoint; used by tests.
	BaseURL string `toml:"-"`
}

// TikTokClient sends events to the TikTok Events API.
type TikTokClient struct {
	cfg    TikTokConfig
	client *http.Client
	log    zerolog.Logger
}

// NewTikTokClient returns a client for cfg.
func NewTikTokClient(cfg TikTokConfig, log zerolog.Logger) *TikTokClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = tiktokAPIBase
	}
	return &TikTokClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Configured reports whether both pixel ID and access token are present.
func (c *TikTokClient) Configured() bool {
	return c.cfg.PixelID != "" && c.cfg.AccessToken != ""
}

// Send posts one event to /event/track/.
func (c *TikTokClient) Send(ctx context.Context, ev Event) error {
	user := make(map[string]string)
	if h := hashField(ev.User.Email); h != "" {
		user["email"] = h
	}
	if p := normalizePhone(ev.User.Phone); p != "" {
		user["phone"] = hashField(p)
	}
	if h := hashField(ev.User.ExternalID); h != "" {
		user["external_id"] = h
	}
	if ev.ClientIP != "" {
		user["ip"] = ev.ClientIP
	}
	if ev.ClientUA != "" {
		user["user_agent"] = ev.ClientUA
	}

	properties := map[string]interface{}{
		"currency": normalizeCurrency(ev.Custom.Currency),
	}
	if ev.Custom.Value != 0 {
		properties["value"] = ev.Custom.Value
	}
	if len(ev.Custom.ContentIDs) > 0 {
		contents := make([]map[string]string, 0, len(ev.Custom.ContentIDs))
		for _, id := range ev.Custom.ContentIDs {
			contents = append(contents, map[string]string{"content_id": id})
		}
		properties["contents"] = contents
	}
	if ev.Custom.ContentType != "" {
		properties["content_type"] = ev.Custom.ContentType
	}

	payload := map[string]interface{}{
		"event_source":    "web",
		"event_source_id": c.cfg.PixelID,
		"data": []map[string]interface{}{
			{
				"event":      ev.Name,
				"event_time": time.Now().Unix(),
				"event_id":   ev.ID,
				"user":       user,
				"properties": properties,
				"page": map[string]string{
					"url": ev.SourceURL,
				},
			},
		},
	}
	if c.cfg.TestEventCode != "" {
		payload["test_event_code"] = c.cfg.TestEventCode
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/event/track/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Access-Token", c.cfg.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("events api status %s: %s", resp.Status, detail)
	}
	c.log.Debug().Str("event", ev.Name).Str("event_id", ev.ID).Msg("tiktok event sent")
	return nil
}
